package accounts_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-accounts"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// repositoryNotFound builds the not-found error shape the repositories
// produce, so store fakes behave like the real thing.
func repositoryNotFound(identifier string) error {
	return repository.NewRecordNotFound().WithMetadata(map[string]any{
		"identifier": identifier,
	})
}

// TestIdentity is a plain Identity implementation for tests
type TestIdentity struct {
	id          string
	name        string
	email       string
	authorities []string
}

func (t TestIdentity) ID() string            { return t.id }
func (t TestIdentity) Name() string          { return t.name }
func (t TestIdentity) Email() string         { return t.email }
func (t TestIdentity) Authorities() []string { return t.authorities }

// MockLogger implements accounts.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// noopLogger swallows everything, for tests that don't assert on logging
type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Warn(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}

// captureLogger records every log line so tests can assert on what did,
// and did not, reach the logs
type captureLogger struct {
	lines []string
}

func (l *captureLogger) record(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintln(append([]any{format}, args...)...))
}

func (l *captureLogger) Debug(format string, args ...any) { l.record(format, args...) }
func (l *captureLogger) Info(format string, args ...any)  { l.record(format, args...) }
func (l *captureLogger) Warn(format string, args ...any)  { l.record(format, args...) }
func (l *captureLogger) Error(format string, args ...any) { l.record(format, args...) }

func (l *captureLogger) output() string {
	return strings.Join(l.lines, "")
}

// MockIdentityProvider implements accounts.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (accounts.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(accounts.Identity), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByEmail(ctx context.Context, email string) (accounts.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(accounts.Identity), args.Error(1)
}

// mockConfig implements accounts.Config
type mockConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	audience        []string
}

func newMockConfig() mockConfig {
	return mockConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 3600,
		issuer:          "test-issuer",
		audience:        []string{"test-audience"},
	}
}

func (c mockConfig) GetSigningKey() string   { return c.signingKey }
func (c mockConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c mockConfig) GetIssuer() string       { return c.issuer }
func (c mockConfig) GetAudience() []string   { return c.audience }

// memoryUserStore backs the provider and the reset flow with a map
type memoryUserStore struct {
	usersByEmail map[string]*accounts.User
	resetCalls   []resetCall
	getErr       error
	resetErr     error
}

type resetCall struct {
	id   uuid.UUID
	hash string
}

func newMemoryUserStore(users ...*accounts.User) *memoryUserStore {
	s := &memoryUserStore{usersByEmail: map[string]*accounts.User{}}
	for _, u := range users {
		s.usersByEmail[u.Email] = u
	}
	return s
}

func (s *memoryUserStore) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, repositoryNotFound(email)
	}
	return user, nil
}

func (s *memoryUserStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if s.resetErr != nil {
		return s.resetErr
	}
	s.resetCalls = append(s.resetCalls, resetCall{id: id, hash: passwordHash})
	for _, u := range s.usersByEmail {
		if u.ID == id {
			u.PasswordHash = passwordHash
		}
	}
	return nil
}
