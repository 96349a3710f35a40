package accounts

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountsControllerRoutes holds the route templates the controller
// registers its handlers on
type AccountsControllerRoutes struct {
	Users         string
	UserByID      string
	Login         string
	ResetRequest  string
	ResetValidate string
	ResetChange   string
	UserAddresses string
	AddressByID   string
}

// DefaultAccountsRoutes are the default route templates
func DefaultAccountsRoutes() AccountsControllerRoutes {
	return AccountsControllerRoutes{
		Users:         "/users",
		UserByID:      "/users/:id",
		Login:         "/users/login",
		ResetRequest:  "/users/password-reset",
		ResetValidate: "/users/password-reset/validate",
		ResetChange:   "/users/password-reset/change",
		UserAddresses: "/users/:id/addresses",
		AddressByID:   "/users/:id/addresses/:addressId",
	}
}

// AccountsController exposes the account management surface as JSON
// endpoints: registration, login, profile and address CRUD, password
// reset. Status codes are derived from the error taxonomy.
type AccountsController struct {
	Routes AccountsControllerRoutes
	Repo   RepositoryManager
	Auther Authenticator
	Flow   *PasswordResetFlow
	Logger Logger
	Debug  bool

	register *RegisterUserHandler
	update   *UpdateUserHandler
	delete   *DeleteUserHandler
}

// AccountsControllerOption configures the controller
type AccountsControllerOption func(*AccountsController)

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) AccountsControllerOption {
	return func(c *AccountsController) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithControllerDebug toggles payload debug printing.
func WithControllerDebug(debug bool) AccountsControllerOption {
	return func(c *AccountsController) {
		c.Debug = debug
	}
}

// NewAccountsController creates a controller wired to the repositories,
// the authenticator, and the password reset flow.
func NewAccountsController(repo RepositoryManager, auther Authenticator, flow *PasswordResetFlow, opts ...AccountsControllerOption) *AccountsController {
	controller := &AccountsController{
		Routes:   DefaultAccountsRoutes(),
		Repo:     repo,
		Auther:   auther,
		Flow:     flow,
		Logger:   defLogger{},
		register: NewRegisterUserHandler(repo),
		update:   NewUpdateUserHandler(repo),
		delete:   NewDeleteUserHandler(repo),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(controller)
		}
	}

	return controller
}

// RegisterAccountRoutes mounts the controller's handlers on the router.
func RegisterAccountRoutes[T any](app router.Router[T], controller *AccountsController) {
	app.Post(controller.Routes.Users, controller.UserCreate).SetName("users.create")
	app.Get(controller.Routes.Users, controller.UserList).SetName("users.list")
	app.Get(controller.Routes.UserByID, controller.UserShow).SetName("users.show")
	app.Put(controller.Routes.UserByID, controller.UserUpdate).SetName("users.update")
	app.Delete(controller.Routes.UserByID, controller.UserDelete).SetName("users.delete")

	app.Post(controller.Routes.Login, controller.LoginPost).SetName("users.login")

	app.Post(controller.Routes.ResetRequest, controller.PasswordResetRequest).SetName("pwd-reset.request")
	app.Post(controller.Routes.ResetValidate, controller.PasswordResetValidate).SetName("pwd-reset.validate")
	app.Post(controller.Routes.ResetChange, controller.PasswordResetChange).SetName("pwd-reset.change")

	app.Get(controller.Routes.UserAddresses, controller.AddressList).SetName("addresses.list")
	app.Post(controller.Routes.UserAddresses, controller.AddressCreate).SetName("addresses.create")
	app.Put(controller.Routes.AddressByID, controller.AddressUpdate).SetName("addresses.update")
	app.Delete(controller.Routes.AddressByID, controller.AddressDelete).SetName("addresses.delete")
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (c *AccountsController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse login payload"))
	}

	if err := payload.Validate(); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload"))
	}

	result, err := c.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *AccountsController) UserCreate(ctx router.Context) error {
	payload := new(RegisterUserMessage)

	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse registration payload"))
	}

	if c.Debug {
		c.Logger.Debug("registration payload", "payload", print.MaybePrettyJSON(payload))
	}

	var created *User
	payload.OnResponse = func(u *User) {
		created = u
	}

	if err := c.register.Execute(ctx.Context(), *payload); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, created)
}

func (c *AccountsController) UserList(ctx router.Context) error {
	records, err := c.Repo.Users().ListWithAddresses(ctx.Context())
	if err != nil {
		return c.handleError(ctx, err)
	}

	for _, record := range records {
		record.PasswordHash = ""
	}

	return ctx.JSON(http.StatusOK, records)
}

func (c *AccountsController) UserShow(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id"))
	}

	record, err := c.Repo.Users().GetWithAddresses(ctx.Context(), id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return c.handleError(ctx, ErrUserNotFound)
		}
		return c.handleError(ctx, err)
	}

	record.PasswordHash = ""

	return ctx.JSON(http.StatusOK, record)
}

func (c *AccountsController) UserUpdate(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id"))
	}

	payload := new(UpdateUserMessage)
	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse update payload"))
	}
	payload.ID = id

	var updated *User
	payload.OnResponse = func(u *User) {
		updated = u
	}

	if err := c.update.Execute(ctx.Context(), *payload); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, updated)
}

func (c *AccountsController) UserDelete(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id"))
	}

	if err := c.delete.Execute(ctx.Context(), DeleteUserMessage{ID: id}); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ResetRequestPayload asks for a reset token to be delivered
type ResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (c *AccountsController) PasswordResetRequest(ctx router.Context) error {
	payload := new(ResetRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse reset payload"))
	}

	if err := payload.Validate(); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid reset payload"))
	}

	// The token travels through the Notifier, never the response body.
	if _, err := c.Flow.RequestReset(ctx.Context(), payload.Email); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{"status": "sent"})
}

// ResetTokenPayload carries a reset token for validation or consumption
type ResetTokenPayload struct {
	Token    string `form:"token" json:"token"`
	Password string `form:"password" json:"password"`
}

func (c *AccountsController) PasswordResetValidate(ctx router.Context) error {
	payload := new(ResetTokenPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse token payload"))
	}

	if err := c.Flow.ValidateToken(payload.Token); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{"valid": true})
}

func (c *AccountsController) PasswordResetChange(ctx router.Context) error {
	payload := new(ResetTokenPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse token payload"))
	}

	if payload.Password == "" {
		return c.handleError(ctx, goerrors.New("password is required", goerrors.CategoryValidation))
	}

	if err := c.Flow.ChangePassword(ctx.Context(), payload.Token, payload.Password); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{"status": "changed"})
}

// AddressPayload is the address create/update payload
type AddressPayload struct {
	Street     string `form:"street" json:"street"`
	Number     string `form:"number" json:"number"`
	Complement string `form:"complement" json:"complement"`
	State      string `form:"state" json:"state"`
	City       string `form:"city" json:"city"`
}

// Validate will run validation rules
func (r AddressPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Street, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Number, validation.Required, validation.Length(1, 20)),
		validation.Field(&r.State, validation.Required, validation.Length(2, 50)),
		validation.Field(&r.City, validation.Required, validation.Length(1, 100)),
	)
}

func (c *AccountsController) AddressList(ctx router.Context) error {
	userID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id"))
	}

	records, err := c.Repo.Addresses().ListByUser(ctx.Context(), userID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, records)
}

func (c *AccountsController) AddressCreate(ctx router.Context) error {
	userID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id"))
	}

	payload := new(AddressPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse address payload"))
	}

	if err := payload.Validate(); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid address payload"))
	}

	record := &Address{
		UserID:     userID,
		Street:     payload.Street,
		Number:     payload.Number,
		Complement: payload.Complement,
		State:      payload.State,
		City:       payload.City,
	}

	err = c.Repo.RunInTx(ctx.Context(), nil, func(txCtx context.Context, tx bun.Tx) error {
		exists, err := c.Repo.Users().ExistsByID(txCtx, userID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check user existence")
		}
		if !exists {
			return ErrUserNotFound
		}

		record, err = c.Repo.Addresses().CreateTx(txCtx, tx, record)
		return err
	})

	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, record)
}

func (c *AccountsController) AddressUpdate(ctx router.Context) error {
	addressID, err := uuid.Parse(ctx.Param("addressId"))
	if err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid address id"))
	}

	payload := new(AddressPayload)
	if err := ctx.Bind(payload); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse address payload"))
	}

	if err := payload.Validate(); err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid address payload"))
	}

	var record *Address
	err = c.Repo.RunInTx(ctx.Context(), nil, func(txCtx context.Context, tx bun.Tx) error {
		record, err = c.Repo.Addresses().GetByID(txCtx, addressID.String())
		if err != nil {
			if goerrors.IsNotFound(err) {
				return goerrors.New("address not found", goerrors.CategoryNotFound).
					WithCode(goerrors.CodeNotFound)
			}
			return err
		}

		record.Street = payload.Street
		record.Number = payload.Number
		record.Complement = payload.Complement
		record.State = payload.State
		record.City = payload.City

		record, err = c.Repo.Addresses().UpdateTx(txCtx, tx, record, repository.UpdateByID(addressID.String()))
		return err
	})

	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

func (c *AccountsController) AddressDelete(ctx router.Context) error {
	addressID, err := uuid.Parse(ctx.Param("addressId"))
	if err != nil {
		return c.handleError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid address id"))
	}

	err = c.Repo.RunInTx(ctx.Context(), nil, func(txCtx context.Context, tx bun.Tx) error {
		return c.Repo.Addresses().DeleteAddressTx(txCtx, tx, addressID)
	})

	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *AccountsController) handleError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = StatusFromCategory(richErr.Category)
	}

	c.Logger.Error(
		"request error",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return ctx.JSON(status, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

// StatusFromCategory maps error categories to HTTP status codes.
func StatusFromCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return http.StatusUnauthorized
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
