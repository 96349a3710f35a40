package accounts

import (
	"time"
)

var _ Session = &SessionObject{}

// SessionObject is the session view of a validated token
type SessionObject struct {
	Email          string     `json:"email,omitempty"`
	Authorities    []string   `json:"authorities,omitempty"`
	Audience       []string   `json:"audience,omitempty"`
	Issuer         string     `json:"issuer,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetAuthorities() []string {
	return s.Authorities
}

func (s *SessionObject) GetAudience() []string {
	return s.Audience
}

func (s *SessionObject) GetIssuer() string {
	return s.Issuer
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

// HasAuthority checks if the session carries a specific authority
func (s *SessionObject) HasAuthority(authority string) bool {
	for _, a := range s.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToMapClaims
	}

	session := &SessionObject{
		Email:       claims.Subject(),
		Authorities: claims.AuthorityList(),
	}

	if jc, ok := claims.(*JWTClaims); ok {
		session.Issuer = jc.RegisteredClaims.Issuer
		session.Audience = jc.RegisteredClaims.Audience

		if jc.RegisteredClaims.IssuedAt != nil {
			iat := jc.RegisteredClaims.IssuedAt.Time
			session.IssuedAt = &iat
		}
		if jc.RegisteredClaims.ExpiresAt != nil {
			exp := jc.RegisteredClaims.ExpiresAt.Time
			session.ExpirationDate = &exp
		}
	}

	return session, nil
}
