package accounts

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured session token claims
type AuthClaims interface {
	Subject() string
	AuthorityList() []string
	HasAuthority(authority string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. The account's
// authorities travel as a single comma-joined claim.
type JWTClaims struct {
	jwt.RegisteredClaims
	Authorities string `json:"authorities,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim, the account email
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// AuthorityList splits the authorities claim back into role strings
func (c *JWTClaims) AuthorityList() []string {
	if c.Authorities == "" {
		return nil
	}

	parts := strings.Split(c.Authorities, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasAuthority checks if the token carries a specific authority
func (c *JWTClaims) HasAuthority(authority string) bool {
	for _, a := range c.AuthorityList() {
		if a == authority {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// JoinAuthorities serializes authority strings into the claim format.
func JoinAuthorities(authorities []string) string {
	return strings.Join(authorities, ",")
}
