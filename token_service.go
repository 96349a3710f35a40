package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService issues and validates signed session tokens. The subject is
// the account email; validation failures always surface as typed errors.
type TokenService interface {
	Generate(identity Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
	SubjectOf(tokenString string) (string, error)
	ExpirationOf(tokenString string) (time.Time, error)
	IsExpired(tokenString string) bool
	ValidateForSubject(tokenString, subject string) bool
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenService creates a new TokenService instance. tokenExpiration is
// the validity in seconds; signingKey is the raw UTF-8 bytes of the
// configured secret.
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, audience jwt.ClaimStrings, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
		logger:          logger,
	}
}

// Generate creates a session token for a verified identity, carrying its
// authorities as a comma-joined claim.
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.Email(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Second)),
		},
		Authorities: JoinAuthorities(identity.Authorities()),
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	return ts.parse(tokenString, parserOptions...)
}

// SubjectOf extracts the subject claim. The signature is still verified,
// but an expired token keeps its subject readable.
func (ts *TokenServiceImpl) SubjectOf(tokenString string) (string, error) {
	claims, err := ts.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", err
	}
	return claims.Subject(), nil
}

// ExpirationOf extracts the expiration claim.
func (ts *TokenServiceImpl) ExpirationOf(tokenString string) (time.Time, error) {
	claims, err := ts.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return time.Time{}, err
	}
	return claims.Expires(), nil
}

// IsExpired is true iff the token's expiration is in the past. Unparseable
// tokens count as expired.
func (ts *TokenServiceImpl) IsExpired(tokenString string) bool {
	exp, err := ts.ExpirationOf(tokenString)
	if err != nil {
		return true
	}
	return exp.Before(time.Now())
}

// ValidateForSubject is true iff the token verifies, is not expired, and
// its subject matches the expected subject.
func (ts *TokenServiceImpl) ValidateForSubject(tokenString, subject string) bool {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return false
	}
	return claims.Subject() == subject
}

func (ts *TokenServiceImpl) parse(tokenString string, parserOptions ...jwt.ParserOption) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService could not decode or validate claims")
	return nil, errors.Wrap(ErrUnableToMapClaims, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
		WithTextCode(ErrTokenMalformed.TextCode)
}
