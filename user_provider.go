package accounts

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
)

// placeholderHash feeds the compare that runs on a lookup miss, so a
// miss costs the same as a mismatch and response timing does not
// reveal whether the email exists.
var placeholderHash = sync.OnceValue(RandomPasswordHash)

// UserStore is the slice of the Users repository the provider needs
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// UserProvider resolves identities from the Users repository and verifies
// credentials with bcrypt. It never retains the plaintext password.
type UserProvider struct {
	store  UserStore
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserStore) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user, compare the password, and return the
// identity. Lookup misses and hash mismatches are logged separately but
// both return ErrInvalidCredentials.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			_ = ComparePasswordAndHash(password, placeholderHash())
			u.logger.Debug("identity not found during verification")
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		u.logger.Debug("password mismatch during verification")
		return nil, ErrInvalidCredentials
	}

	return identityFromUser(user), nil
}

// FindIdentityByEmail resolves an identity without verifying credentials.
func (u *UserProvider) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}

	return identityFromUser(user), nil
}

type authIdentity struct {
	id          string
	name        string
	email       string
	authorities []string
}

func identityFromUser(user *User) authIdentity {
	return authIdentity{
		id:          user.ID.String(),
		name:        user.Name,
		email:       user.Email,
		authorities: user.AuthorityList(),
	}
}

func (a authIdentity) ID() string            { return a.id }
func (a authIdentity) Name() string          { return a.name }
func (a authIdentity) Email() string         { return a.email }
func (a authIdentity) Authorities() []string { return a.authorities }
