package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKeycloak serves the subset of the realm and admin endpoints the provider calls
type fakeKeycloak struct {
	mu           sync.Mutex
	createStatus int
	assignStatus int
	adminTokens  int
	created      []keycloakUser
	deleted      []string
	logouts      []string
}

func (f *fakeKeycloak) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/realms/membership/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "client_credentials":
			f.mu.Lock()
			f.adminTokens++
			f.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "admin-token", "token_type": "Bearer", "expires_in": 300})
		case "password":
			if r.Form.Get("username") != "jane@example.com" || r.Form.Get("password") != "Secret1!" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "user-access", "refresh_token": "user-refresh", "token_type": "Bearer", "expires_in": 300,
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	mux.HandleFunc("/realms/membership/protocol/openid-connect/logout", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		f.mu.Lock()
		f.logouts = append(f.logouts, r.Form.Get("refresh_token"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/admin/realms/membership/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		var u keycloakUser
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&u))
		f.mu.Lock()
		f.created = append(f.created, u)
		f.mu.Unlock()
		if f.createStatus != 0 {
			w.WriteHeader(f.createStatus)
			return
		}
		w.Header().Set("Location", "http://"+r.Host+"/admin/realms/membership/users/kc-user-1")
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/admin/realms/membership/roles/USER", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(keycloakRole{ID: "role-1", Name: "USER"})
	})

	mux.HandleFunc("/admin/realms/membership/users/kc-user-1/role-mappings/realm", func(w http.ResponseWriter, r *http.Request) {
		if f.assignStatus != 0 {
			w.WriteHeader(f.assignStatus)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/admin/realms/membership/users/kc-user-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		f.mu.Lock()
		f.deleted = append(f.deleted, "kc-user-1")
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func newTestProvider(t *testing.T, fake *fakeKeycloak) *KeycloakProvider {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	p, err := NewKeycloakProvider(KeycloakConfig{
		BaseURL:           srv.URL + "/",
		Realm:             "membership",
		ClientID:          "membership-web",
		AdminClientID:     "membership-admin",
		AdminClientSecret: "secret",
		DefaultRole:       "USER",
	})
	require.NoError(t, err)
	return p
}

func signUpInput() SignUpInput {
	return SignUpInput{
		Email:    "jane@example.com",
		Password: "Secret1!",
		FullName: "Jane van Doe",
		Nickname: "jane",
		Username: "janedoe",
	}
}

func TestNewKeycloakProvider_MissingConfig(t *testing.T) {
	_, err := NewKeycloakProvider(KeycloakConfig{BaseURL: "http://kc"})
	assert.Error(t, err)
}

func TestKeycloakProvider_SignUp(t *testing.T) {
	fake := &fakeKeycloak{}
	p := newTestProvider(t, fake)

	userID, err := p.SignUp(context.Background(), signUpInput())

	require.NoError(t, err)
	assert.Equal(t, "kc-user-1", userID)
	require.Len(t, fake.created, 1)
	u := fake.created[0]
	assert.Equal(t, "Jane", u.FirstName)
	assert.Equal(t, "van Doe", u.LastName)
	assert.Equal(t, []string{"jane"}, u.Attributes["nickname"])
	assert.True(t, u.Enabled)
	require.Len(t, u.Credentials, 1)
	assert.Equal(t, "password", u.Credentials[0].Type)
	assert.Empty(t, fake.deleted)
}

func TestKeycloakProvider_SignUp_ReusesAdminToken(t *testing.T) {
	fake := &fakeKeycloak{}
	p := newTestProvider(t, fake)

	_, err := p.SignUp(context.Background(), signUpInput())
	require.NoError(t, err)
	_, err = p.SignUp(context.Background(), signUpInput())
	require.NoError(t, err)

	assert.Equal(t, 1, fake.adminTokens)
}

func TestKeycloakProvider_SignUp_Conflict(t *testing.T) {
	fake := &fakeKeycloak{createStatus: http.StatusConflict}
	p := newTestProvider(t, fake)

	_, err := p.SignUp(context.Background(), signUpInput())

	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestKeycloakProvider_SignUp_RoleFailureRollsBack(t *testing.T) {
	fake := &fakeKeycloak{assignStatus: http.StatusInternalServerError}
	p := newTestProvider(t, fake)

	_, err := p.SignUp(context.Background(), signUpInput())

	assert.ErrorIs(t, err, ErrKeycloakRequest)
	assert.Equal(t, []string{"kc-user-1"}, fake.deleted)
}

func TestKeycloakProvider_SignIn(t *testing.T) {
	p := newTestProvider(t, &fakeKeycloak{})

	session, err := p.SignIn(context.Background(), "jane@example.com", "Secret1!")

	require.NoError(t, err)
	assert.Equal(t, "user-access", session.AccessToken)
	assert.Equal(t, "user-refresh", session.RefreshToken)
	assert.Equal(t, "Bearer", session.TokenType)
	assert.False(t, session.ExpiresAt.IsZero())
}

func TestKeycloakProvider_SignIn_InvalidCredentials(t *testing.T) {
	p := newTestProvider(t, &fakeKeycloak{})

	_, err := p.SignIn(context.Background(), "jane@example.com", "wrong")

	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestKeycloakProvider_SignIn_Unreachable(t *testing.T) {
	p, err := NewKeycloakProvider(KeycloakConfig{BaseURL: "http://127.0.0.1:1", Realm: "membership", ClientID: "web"})
	require.NoError(t, err)

	_, err = p.SignIn(context.Background(), "jane@example.com", "Secret1!")

	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestKeycloakProvider_SignOut(t *testing.T) {
	fake := &fakeKeycloak{}
	p := newTestProvider(t, fake)

	require.NoError(t, p.SignOut(context.Background(), "user-refresh"))
	assert.Equal(t, []string{"user-refresh"}, fake.logouts)
}

func TestSplitFullName(t *testing.T) {
	first, last := splitFullName("  Ada   Lovelace King ")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Lovelace King", last)

	first, last = splitFullName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Empty(t, last)
}
