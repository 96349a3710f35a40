package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UpdateUserMessage struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	CPF   string    `json:"cpf"`
	Phone string    `json:"phone_number"`
	// OnResponse receives the updated record, minus its password hash
	OnResponse func(*User) `json:"-"`
}

func (e UpdateUserMessage) Type() string { return "user.update" }

// Validate will run validation rules. Fields left empty keep their
// persisted values.
func (e UpdateUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Length(1, 200)),
		validation.Field(&e.Email, validation.Length(6, 100), is.Email),
		validation.Field(&e.CPF, validation.By(validateCPF)),
		validation.Field(&e.Phone, validation.By(validatePhone)),
	)
}

type UpdateUserHandler struct {
	repo RepositoryManager
}

func NewUpdateUserHandler(repo RepositoryManager) *UpdateUserHandler {
	return &UpdateUserHandler{repo: repo}
}

func (h *UpdateUserHandler) Execute(ctx context.Context, event UpdateUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateUserHandler) execute(ctx context.Context, event UpdateUserMessage) error {
	if event.ID == uuid.Nil {
		return goerrors.New("user update requires an id", goerrors.CategoryBadInput)
	}

	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid update payload")
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByID(ctx, event.ID.String())
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for update")
		}

		if event.Name != "" {
			user.Name = event.Name
		}
		if event.Email != "" {
			user.Email = normalizeEmail(event.Email)
		}
		if event.CPF != "" {
			user.CPF = NormalizeCPF(event.CPF)
		}
		if event.Phone != "" {
			user.Phone = event.Phone
		}

		now := time.Now()
		user.UpdatedAt = &now

		if user, err = h.repo.Users().UpdateTx(ctx, tx, user, repository.UpdateByID(event.ID.String())); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not update user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user update transaction failed")
	}

	if event.OnResponse != nil {
		user.PasswordHash = ""
		event.OnResponse(user)
	}

	return nil
}

type DeleteUserMessage struct {
	ID uuid.UUID `json:"id"`
}

func (e DeleteUserMessage) Type() string { return "user.delete" }

type DeleteUserHandler struct {
	repo RepositoryManager
}

func NewDeleteUserHandler(repo RepositoryManager) *DeleteUserHandler {
	return &DeleteUserHandler{repo: repo}
}

func (h *DeleteUserHandler) Execute(ctx context.Context, event DeleteUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user delete",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteUserHandler) execute(ctx context.Context, event DeleteUserMessage) error {
	if event.ID == uuid.Nil {
		return goerrors.New("user delete requires an id", goerrors.CategoryBadInput)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := h.repo.Users().ExistsByID(ctx, event.ID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check user existence")
		}
		if !exists {
			return ErrUserNotFound
		}

		return h.repo.Users().DeleteUserTx(ctx, tx, event.ID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user delete transaction failed")
	}

	return nil
}
