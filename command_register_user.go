package accounts

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// phoneRegion is the default region used to parse national phone numbers
var phoneRegion = "BR"

type RegisterUserMessage struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	CPF       string `json:"cpf"`
	Phone     string `json:"phone_number"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	UseHashid bool   `json:"-"`
	// OnResponse receives the created record, minus its password hash
	OnResponse func(*User) `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate will run validation rules
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.CPF, validation.Required, validation.By(validateCPF)),
		validation.Field(&e.Phone, validation.By(validatePhone)),
		validation.Field(&e.Password, validation.Required, validation.Length(6, 100)),
	)
}

func validateCPF(value any) error {
	cpf, _ := value.(string)
	if cpf == "" {
		return nil
	}
	if !ValidCPF(cpf) {
		return goerrors.New("must be a valid CPF", goerrors.CategoryValidation)
	}
	return nil
}

func validatePhone(value any) error {
	phone, _ := value.(string)
	if phone == "" {
		return nil
	}

	num, err := phonenumbers.Parse(phone, phoneRegion)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "must be a parseable phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return goerrors.New("must be a valid phone number", goerrors.CategoryValidation)
	}

	return nil
}

type RegisterUserHandler struct {
	repo RepositoryManager
}

func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	if err := event.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := h.repo.Users().ExistsByEmail(ctx, event.Email)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
		}
		if taken {
			return ErrEmailTaken
		}

		taken, err = h.repo.Users().ExistsByCPF(ctx, event.CPF)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check cpf uniqueness")
		}
		if taken {
			return ErrCPFTaken
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
		}

		user.PasswordHash = hash
		user.Name = event.Name
		user.Email = normalizeEmail(event.Email)
		user.CPF = NormalizeCPF(event.CPF)
		user.Phone = event.Phone
		user.Role = event.Role
		if user.Role == "" {
			user.Role = RoleUser
		}
		if event.UseHashid {
			if id, err := hashid.NewUUID(user.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	if event.OnResponse != nil {
		user.PasswordHash = ""
		event.OnResponse(user)
	}

	return nil
}
