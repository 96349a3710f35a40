package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ResetUserStore is the slice of the Users repository the flow needs
type ResetUserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// PasswordResetFlow drives a reset attempt through
// requested -> token-issued -> token-validated -> password-changed,
// failing into the expired or rejected stages. Tokens are stateless: no
// record backs them and ChangePassword accepts the same token again while
// its window is open.
type PasswordResetFlow struct {
	store    ResetUserStore
	codec    *ResetTokenCodec
	notifier Notifier
	logger   Logger
}

// NewPasswordResetFlow creates a flow with the default codec and a
// fallback notifier that logs the destination, not the token.
func NewPasswordResetFlow(store ResetUserStore) *PasswordResetFlow {
	return &PasswordResetFlow{
		store:    store,
		codec:    NewResetTokenCodec(),
		notifier: NewLogNotifier(defLogger{}),
		logger:   defLogger{},
	}
}

// WithCodec overrides the token codec.
func (f *PasswordResetFlow) WithCodec(codec *ResetTokenCodec) *PasswordResetFlow {
	if codec != nil {
		f.codec = codec
	}
	return f
}

// WithNotifier sets the delivery collaborator for issued tokens.
func (f *PasswordResetFlow) WithNotifier(notifier Notifier) *PasswordResetFlow {
	if notifier != nil {
		f.notifier = notifier
	}
	return f
}

// WithLogger overrides the logger used by the flow.
func (f *PasswordResetFlow) WithLogger(logger Logger) *PasswordResetFlow {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// Codec exposes the codec, mostly so callers can share its clock in tests.
func (f *PasswordResetFlow) Codec() *ResetTokenCodec {
	return f.codec
}

// RequestReset looks up the account, encodes a reset token, and hands it
// to the notifier. Unknown emails surface as not-found on this path.
func (f *PasswordResetFlow) RequestReset(ctx context.Context, email string) (string, error) {
	select {
	case <-ctx.Done():
		return "", goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during reset request")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	attempt := newResetAttempt()

	user, err := f.store.GetByEmail(ctx, email)
	if err != nil {
		_ = attempt.advance(ResetStageRejected)
		if goerrors.IsNotFound(err) {
			return "", ErrUserNotFound
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := f.codec.Encode(user.Email)
	if err != nil {
		_ = attempt.advance(ResetStageRejected)
		return "", err
	}

	if err := attempt.advance(ResetStageTokenIssued); err != nil {
		return "", err
	}

	if err := f.notifier.SendResetToken(ctx, user.Email, token); err != nil {
		f.logger.Warn("reset token delivery failed", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver reset token")
	}

	f.logger.Info("reset token issued", "email", user.Email)

	return token, nil
}

// ValidateToken decodes the token and checks its window. It has no side
// effects and may be repeated; a fixed clock yields a fixed verdict.
func (f *PasswordResetFlow) ValidateToken(token string) error {
	data, err := f.codec.Decode(token)
	if err != nil {
		return err
	}

	if f.codec.Expired(data) {
		return ErrTokenExpired
	}

	return nil
}

// ChangePassword decodes the token, enforces the window, and overwrites
// the account's password hash. There is no consumption marker: a second
// call with the same unexpired token succeeds again.
func (f *PasswordResetFlow) ChangePassword(ctx context.Context, token, newPassword string) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password change")
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	attempt := newResetAttempt()
	if err := attempt.advance(ResetStageTokenIssued); err != nil {
		return err
	}

	data, err := f.codec.Decode(token)
	if err != nil {
		_ = attempt.advance(ResetStageRejected)
		return err
	}

	if f.codec.Expired(data) {
		_ = attempt.advance(ResetStageExpired)
		return ErrTokenExpired
	}

	if err := attempt.advance(ResetStageTokenValidated); err != nil {
		return err
	}

	user, err := f.store.GetByEmail(ctx, data.Email)
	if err != nil {
		_ = attempt.advance(ResetStageRejected)
		if goerrors.IsNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password change")
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		_ = attempt.advance(ResetStageRejected)
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
	}

	if err := f.store.ResetPassword(ctx, user.ID, passwordHash); err != nil {
		_ = attempt.advance(ResetStageRejected)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
	}

	if err := attempt.advance(ResetStagePasswordChanged); err != nil {
		return err
	}

	f.logger.Info("password changed via reset token", "email", user.Email)

	return nil
}
