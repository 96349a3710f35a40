package accounts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routerContext lets stubContext embed router.Context without the embedded
// field name colliding with the Context() method defined below.
type routerContext = router.Context

// stubContext implements the handful of router.Context methods the JSON
// handlers touch; anything else panics through the embedded nil interface.
type stubContext struct {
	routerContext
	payload any
	params  map[string]string
	status  int
	body    any
}

func newStubContext(payload any, params map[string]string) *stubContext {
	return &stubContext{payload: payload, params: params}
}

func (s *stubContext) Bind(v any) error {
	if s.payload == nil {
		return nil
	}
	raw, err := json.Marshal(s.payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (s *stubContext) Context() context.Context {
	return context.Background()
}

func (s *stubContext) Param(key string, defaultValue ...string) string {
	if val, ok := s.params[key]; ok {
		return val
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (s *stubContext) JSON(code int, val any) error {
	s.status = code
	s.body = val
	return nil
}

func (s *stubContext) NoContent(code int) error {
	s.status = code
	return nil
}

func (s *stubContext) errorBody(t *testing.T) map[string]any {
	t.Helper()
	body, ok := s.body.(map[string]any)
	require.True(t, ok, "expected an error body, got %T", s.body)
	return body
}

func newTestController(t *testing.T) (*accounts.AccountsController, accounts.RepositoryManager) {
	t.Helper()

	repo := setupTestRepos(t)
	provider := accounts.NewUserProvider(repo.Users()).WithLogger(noopLogger{})
	auther := accounts.NewAuthenticator(provider, newMockConfig()).WithLogger(noopLogger{})
	flow := accounts.NewPasswordResetFlow(repo.Users()).
		WithLogger(noopLogger{}).
		WithNotifier(accounts.NotifierFunc(nil))

	controller := accounts.NewAccountsController(repo, auther, flow,
		accounts.WithControllerLogger(noopLogger{}),
	)

	return controller, repo
}

func TestAccountsController_UserCreate(t *testing.T) {
	controller, _ := newTestController(t)

	payload := map[string]any{
		"name":     "Test User",
		"email":    "user@example.com",
		"cpf":      "123.456.789-09",
		"password": "password123",
	}

	t.Run("creates a user", func(t *testing.T) {
		ctx := newStubContext(payload, nil)

		require.NoError(t, controller.UserCreate(ctx))

		assert.Equal(t, http.StatusCreated, ctx.status)
		created, ok := ctx.body.(*accounts.User)
		require.True(t, ok)
		assert.Equal(t, "user@example.com", created.Email)
		assert.Empty(t, created.PasswordHash)
	})

	t.Run("duplicate email maps to conflict", func(t *testing.T) {
		ctx := newStubContext(payload, nil)

		require.NoError(t, controller.UserCreate(ctx))

		assert.Equal(t, http.StatusConflict, ctx.status)
		assert.Equal(t, accounts.TextCodeEmailTaken, ctx.errorBody(t)["text_code"])
	})

	t.Run("invalid payload maps to bad request", func(t *testing.T) {
		ctx := newStubContext(map[string]any{"name": "No Email"}, nil)

		require.NoError(t, controller.UserCreate(ctx))

		assert.Equal(t, http.StatusBadRequest, ctx.status)
	})
}

func TestAccountsController_LoginPost(t *testing.T) {
	controller, repo := newTestController(t)

	registerTestUser(t, repo, accounts.RegisterUserMessage{
		Name:     "Login User",
		Email:    "login@example.com",
		CPF:      "123.456.789-09",
		Password: "password123",
	})

	t.Run("valid credentials return a token", func(t *testing.T) {
		ctx := newStubContext(map[string]any{
			"email":    "login@example.com",
			"password": "password123",
		}, nil)

		require.NoError(t, controller.LoginPost(ctx))

		assert.Equal(t, http.StatusOK, ctx.status)
		result, ok := ctx.body.(*accounts.AuthResult)
		require.True(t, ok)
		assert.Equal(t, "login@example.com", result.Email)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		ctx := newStubContext(map[string]any{
			"email":    "login@example.com",
			"password": "wrong-password",
		}, nil)

		require.NoError(t, controller.LoginPost(ctx))

		assert.Equal(t, http.StatusUnauthorized, ctx.status)
	})

	t.Run("unknown account is also unauthorized", func(t *testing.T) {
		ctx := newStubContext(map[string]any{
			"email":    "ghost@example.com",
			"password": "password123",
		}, nil)

		require.NoError(t, controller.LoginPost(ctx))

		assert.Equal(t, http.StatusUnauthorized, ctx.status)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		ctx := newStubContext(map[string]any{"email": "login@example.com"}, nil)

		require.NoError(t, controller.LoginPost(ctx))

		assert.Equal(t, http.StatusBadRequest, ctx.status)
	})
}

func TestAccountsController_UserShow(t *testing.T) {
	controller, repo := newTestController(t)

	created := registerTestUser(t, repo, accounts.RegisterUserMessage{
		Name:     "Show User",
		Email:    "show@example.com",
		CPF:      "123.456.789-09",
		Password: "password123",
	})

	t.Run("returns the user without its hash", func(t *testing.T) {
		ctx := newStubContext(nil, map[string]string{"id": created.ID.String()})

		require.NoError(t, controller.UserShow(ctx))

		assert.Equal(t, http.StatusOK, ctx.status)
		user, ok := ctx.body.(*accounts.User)
		require.True(t, ok)
		assert.Equal(t, "show@example.com", user.Email)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("bad uuid is a bad request", func(t *testing.T) {
		ctx := newStubContext(nil, map[string]string{"id": "not-a-uuid"})

		require.NoError(t, controller.UserShow(ctx))

		assert.Equal(t, http.StatusBadRequest, ctx.status)
	})

	t.Run("missing user is not found", func(t *testing.T) {
		ctx := newStubContext(nil, map[string]string{"id": "e7b8a9c0-0000-4000-8000-000000000000"})

		require.NoError(t, controller.UserShow(ctx))

		assert.Equal(t, http.StatusNotFound, ctx.status)
	})
}

func TestAccountsController_PasswordReset(t *testing.T) {
	controller, repo := newTestController(t)

	registerTestUser(t, repo, accounts.RegisterUserMessage{
		Name:     "Reset User",
		Email:    "reset@example.com",
		CPF:      "123.456.789-09",
		Password: "password123",
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		ctx := newStubContext(map[string]any{"email": "ghost@example.com"}, nil)

		require.NoError(t, controller.PasswordResetRequest(ctx))

		assert.Equal(t, http.StatusNotFound, ctx.status)
	})

	t.Run("request does not leak the token", func(t *testing.T) {
		ctx := newStubContext(map[string]any{"email": "reset@example.com"}, nil)

		require.NoError(t, controller.PasswordResetRequest(ctx))

		assert.Equal(t, http.StatusOK, ctx.status)
		body, ok := ctx.body.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "sent", body["status"])
		assert.NotContains(t, body, "token")
	})

	t.Run("malformed token fails validation", func(t *testing.T) {
		ctx := newStubContext(map[string]any{"token": "!!garbage!!"}, nil)

		require.NoError(t, controller.PasswordResetValidate(ctx))

		assert.Equal(t, http.StatusBadRequest, ctx.status)
		assert.Equal(t, accounts.TextCodeTokenMalformed, ctx.errorBody(t)["text_code"])
	})

	t.Run("change with a valid token rotates the password", func(t *testing.T) {
		token, err := controller.Flow.RequestReset(context.Background(), "reset@example.com")
		require.NoError(t, err)

		ctx := newStubContext(map[string]any{
			"token":    token,
			"password": "rotated-password",
		}, nil)

		require.NoError(t, controller.PasswordResetChange(ctx))
		assert.Equal(t, http.StatusOK, ctx.status)

		login := newStubContext(map[string]any{
			"email":    "reset@example.com",
			"password": "rotated-password",
		}, nil)
		require.NoError(t, controller.LoginPost(login))
		assert.Equal(t, http.StatusOK, login.status)
	})
}

func TestAccountsController_Addresses(t *testing.T) {
	controller, repo := newTestController(t)

	owner := registerTestUser(t, repo, accounts.RegisterUserMessage{
		Name:     "Address Owner",
		Email:    "owner@example.com",
		CPF:      "123.456.789-09",
		Password: "password123",
	})

	addressPayload := map[string]any{
		"street": "Rua Um",
		"number": "42",
		"state":  "SP",
		"city":   "Sao Paulo",
	}

	t.Run("creates an address for an existing user", func(t *testing.T) {
		ctx := newStubContext(addressPayload, map[string]string{"id": owner.ID.String()})

		require.NoError(t, controller.AddressCreate(ctx))

		assert.Equal(t, http.StatusCreated, ctx.status)
		record, ok := ctx.body.(*accounts.Address)
		require.True(t, ok)
		assert.Equal(t, owner.ID, record.UserID)
		assert.Equal(t, "Rua Um", record.Street)
	})

	t.Run("missing owner is not found", func(t *testing.T) {
		ctx := newStubContext(addressPayload, map[string]string{"id": "e7b8a9c0-0000-4000-8000-000000000000"})

		require.NoError(t, controller.AddressCreate(ctx))

		assert.Equal(t, http.StatusNotFound, ctx.status)
	})

	t.Run("incomplete payload fails validation", func(t *testing.T) {
		ctx := newStubContext(map[string]any{"street": "Rua Um"}, map[string]string{"id": owner.ID.String()})

		require.NoError(t, controller.AddressCreate(ctx))

		assert.Equal(t, http.StatusBadRequest, ctx.status)
	})

	t.Run("lists the owner addresses", func(t *testing.T) {
		ctx := newStubContext(nil, map[string]string{"id": owner.ID.String()})

		require.NoError(t, controller.AddressList(ctx))

		assert.Equal(t, http.StatusOK, ctx.status)
		records, ok := ctx.body.([]*accounts.Address)
		require.True(t, ok)
		assert.Len(t, records, 1)
	})
}

func TestStatusFromCategory(t *testing.T) {
	tests := []struct {
		category goerrors.Category
		status   int
	}{
		{goerrors.CategoryAuth, http.StatusUnauthorized},
		{goerrors.CategoryAuthz, http.StatusUnauthorized},
		{goerrors.CategoryNotFound, http.StatusNotFound},
		{goerrors.CategoryConflict, http.StatusConflict},
		{goerrors.CategoryValidation, http.StatusBadRequest},
		{goerrors.CategoryBadInput, http.StatusBadRequest},
		{goerrors.CategoryInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, accounts.StatusFromCategory(tt.category))
	}
}
