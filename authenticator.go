package accounts

import (
	"context"
	"reflect"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// AuthResult is the minimal identity returned on a successful login
type AuthResult struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

type Auther struct {
	provider     IdentityProvider
	signingKey   []byte
	expiration   int
	issuer       string
	audience     []string
	logger       Logger
	tokenService TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		signingKey:   []byte(opts.GetSigningKey()),
		expiration:   opts.GetTokenExpiration(),
		audience:     opts.GetAudience(),
		issuer:       opts.GetIssuer(),
		logger:       defLogger{},
		tokenService: tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	// Update the TokenService logger as well
	s.tokenService = NewTokenService(
		s.signingKey,
		s.expiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the email/password pair and issues a session token.
// A missing account is indistinguishable from a bad password here; both
// return ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.Debug("Login identity lookup miss")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login verify identity error", "error", err)
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return nil, err
	}

	return &AuthResult{
		UserID: identity.ID(),
		Name:   identity.Name(),
		Email:  identity.Email(),
		Token:  token,
	}, nil
}

// SessionFromToken validates a raw token and converts its claims into a
// session value.
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

var _ Authenticator = (*Auther)(nil)

// ClaimStrings re-exports the jwt alias so callers configuring audiences
// don't import the jwt module directly.
type ClaimStrings = jwt.ClaimStrings
