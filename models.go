package accounts

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role, carried as an authority claim in session tokens
type UserRole = string

const (
	// RoleUser is a regular account
	RoleUser UserRole = "user"
	// RoleAdmin is an administrative account
	RoleAdmin UserRole = "admin"
)

// User is the credential record: identity, hashed password, profile data
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	CPF           string     `bun:"cpf,unique" json:"cpf,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Addresses     []*Address `bun:"rel:has-many,join:id=user_id" json:"addresses,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AuthorityList returns the role strings carried into session token claims.
func (u *User) AuthorityList() []string {
	if u.Role == "" {
		return []string{RoleUser}
	}
	return []string{u.Role}
}

// Address is a street address owned by a user
type Address struct {
	bun.BaseModel `bun:"table:addresses,alias:addr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Street        string     `bun:"street,notnull" json:"street,omitempty"`
	Number        string     `bun:"number,notnull" json:"number,omitempty"`
	Complement    string     `bun:"complement" json:"complement,omitempty"`
	State         string     `bun:"state,notnull" json:"state,omitempty"`
	City          string     `bun:"city,notnull" json:"city,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

var cpfDigitsExp = regexp.MustCompile(`^\d{11}$`)

// NormalizeCPF strips formatting punctuation from a CPF, e.g.
// "123.456.789-09" becomes "12345678909".
func NormalizeCPF(cpf string) string {
	cpf = strings.TrimSpace(cpf)
	cpf = strings.ReplaceAll(cpf, ".", "")
	cpf = strings.ReplaceAll(cpf, "-", "")
	return cpf
}

// ValidCPF reports whether the value normalizes to eleven digits.
func ValidCPF(cpf string) bool {
	return cpfDigitsExp.MatchString(NormalizeCPF(cpf))
}
