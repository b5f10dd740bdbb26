package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/WailSalutem-Health-Care/membership-service/internal/account"
	"github.com/google/uuid"
)

// MockSessionProvider is an in-memory identity provider for tests.
// It makes no HTTP calls to Keycloak.
type MockSessionProvider struct {
	mu       sync.RWMutex
	users    map[string]mockAccount // email -> account
	sessions map[string]string      // refresh token -> user id
}

type mockAccount struct {
	id       string
	input    account.SignUpInput
	password string
}

func NewMockSessionProvider() *MockSessionProvider {
	return &MockSessionProvider{
		users:    make(map[string]mockAccount),
		sessions: make(map[string]string),
	}
}

func (m *MockSessionProvider) SignUp(ctx context.Context, input account.SignUpInput) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(input.Email)
	for e, u := range m.users {
		if e == email || u.input.Username == input.Username {
			return "", account.ErrAccountExists
		}
	}

	id := uuid.New().String()
	m.users[email] = mockAccount{id: id, input: input, password: input.Password}
	return id, nil
}

func (m *MockSessionProvider) SignIn(ctx context.Context, email, password string) (*account.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok || u.password != password {
		return nil, account.ErrInvalidCredentials
	}

	refresh := uuid.New().String()
	m.sessions[refresh] = u.id
	return &account.Session{
		AccessToken:  "access-" + u.id,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(5 * time.Minute),
	}, nil
}

func (m *MockSessionProvider) SignOut(ctx context.Context, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, refreshToken)
	return nil
}

// UserCount returns the number of registered accounts
func (m *MockSessionProvider) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// ActiveSessions returns the number of sessions not yet signed out
func (m *MockSessionProvider) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

var _ account.SessionProvider = (*MockSessionProvider)(nil)
