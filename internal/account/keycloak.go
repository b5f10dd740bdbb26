package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/membership-service/internal/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	ErrKeycloakRequest = errors.New("keycloak request failed")
	ErrRoleNotFound    = errors.New("role not found")
	ErrInvalidResponse = errors.New("invalid response from keycloak")
)

// KeycloakConfig holds the realm and client settings
type KeycloakConfig struct {
	BaseURL           string `env:"KEYCLOAK_BASE_URL" envDefault:"http://localhost:8080"`
	Realm             string `env:"KEYCLOAK_REALM" envDefault:"membership"`
	ClientID          string `env:"KEYCLOAK_CLIENT_ID" envDefault:"membership-web"`
	ClientSecret      string `env:"KEYCLOAK_CLIENT_SECRET"`
	AdminClientID     string `env:"KEYCLOAK_ADMIN_CLIENT_ID"`
	AdminClientSecret string `env:"KEYCLOAK_ADMIN_CLIENT_SECRET"`
	DefaultRole       string `env:"KEYCLOAK_DEFAULT_ROLE" envDefault:"USER"`
}

// KeycloakProvider implements SessionProvider against a Keycloak realm.
// Sign-up uses the admin API, sign-in the resource-owner password grant.
type KeycloakProvider struct {
	cfg         KeycloakConfig
	baseURL     string
	httpClient  *http.Client
	adminTokens oauth2.TokenSource
	login       *oauth2.Config
}

type keycloakUser struct {
	ID            string               `json:"id,omitempty"`
	Username      string               `json:"username"`
	Email         string               `json:"email"`
	FirstName     string               `json:"firstName,omitempty"`
	LastName      string               `json:"lastName,omitempty"`
	Enabled       bool                 `json:"enabled"`
	EmailVerified bool                 `json:"emailVerified"`
	Attributes    map[string][]string  `json:"attributes,omitempty"`
	Credentials   []keycloakCredential `json:"credentials,omitempty"`
}

type keycloakCredential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type keycloakRole struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewKeycloakProvider creates a provider; the admin client credentials are required for sign-up
func NewKeycloakProvider(cfg KeycloakConfig) (*KeycloakProvider, error) {
	if cfg.BaseURL == "" || cfg.Realm == "" || cfg.ClientID == "" {
		return nil, errors.New("missing required Keycloak configuration")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", baseURL, cfg.Realm)
	httpClient := &http.Client{Timeout: 30 * time.Second}

	p := &KeycloakProvider{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: httpClient,
		login: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"openid", "profile", "email"},
		},
	}

	if cfg.AdminClientID != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.AdminClientID,
			ClientSecret: cfg.AdminClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		p.adminTokens = oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx))
	}

	return p, nil
}

// SignUp creates an enabled user with its password and profile attributes,
// then grants the realm's default role. The user is removed if the grant fails.
func (k *KeycloakProvider) SignUp(ctx context.Context, input SignUpInput) (string, error) {
	first, last := splitFullName(input.FullName)
	user := keycloakUser{
		Username:  input.Username,
		Email:     input.Email,
		FirstName: first,
		LastName:  last,
		Enabled:   true,
		Attributes: map[string][]string{
			"full_name": {input.FullName},
			"nickname":  {input.Nickname},
			"username":  {input.Username},
		},
		Credentials: []keycloakCredential{{Type: "password", Value: input.Password}},
	}

	userID, err := k.createUser(ctx, user)
	if err != nil {
		return "", err
	}

	if k.cfg.DefaultRole == "" {
		return userID, nil
	}
	role, err := k.getRole(ctx, k.cfg.DefaultRole)
	if err == nil {
		err = k.assignRole(ctx, userID, *role)
	}
	if err != nil {
		logger.WithContext(ctx).WithError(err).Error("Failed to grant default role, rolling back user")
		if delErr := k.deleteUser(ctx, userID); delErr != nil {
			logger.WithContext(ctx).WithError(delErr).Error("Failed to roll back user")
		}
		return "", err
	}
	return userID, nil
}

// SignIn exchanges email and password for tokens
func (k *KeycloakProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, k.httpClient)
	tok, err := k.login.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil &&
			(rErr.Response.StatusCode == http.StatusUnauthorized || rErr.Response.StatusCode == http.StatusBadRequest) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	return &Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		ExpiresAt:    tok.Expiry,
	}, nil
}

// SignOut ends the session bound to refreshToken
func (k *KeycloakProvider) SignOut(ctx context.Context, refreshToken string) error {
	logoutURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/logout", k.baseURL, k.cfg.Realm)

	data := url.Values{}
	data.Set("client_id", k.cfg.ClientID)
	if k.cfg.ClientSecret != "" {
		data.Set("client_secret", k.cfg.ClientSecret)
	}
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, logoutURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create logout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return k.requestError(resp, "logout")
	}
	return nil
}

func (k *KeycloakProvider) createUser(ctx context.Context, user keycloakUser) (string, error) {
	createURL := fmt.Sprintf("%s/admin/realms/%s/users", k.baseURL, k.cfg.Realm)

	resp, err := k.adminRequest(ctx, http.MethodPost, createURL, user)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return "", ErrAccountExists
	}
	if resp.StatusCode != http.StatusCreated {
		return "", k.requestError(resp, "create user")
	}

	// Location: .../users/{userId}
	location := resp.Header.Get("Location")
	idx := strings.LastIndex(location, "/")
	if idx < 0 || idx == len(location)-1 {
		return "", ErrInvalidResponse
	}
	userID := location[idx+1:]

	logger.WithContext(ctx).WithField("keycloak_user_id", userID).Info("Created user in Keycloak")
	return userID, nil
}

func (k *KeycloakProvider) getRole(ctx context.Context, roleName string) (*keycloakRole, error) {
	roleURL := fmt.Sprintf("%s/admin/realms/%s/roles/%s", k.baseURL, k.cfg.Realm, url.PathEscape(roleName))

	resp, err := k.adminRequest(ctx, http.MethodGet, roleURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRoleNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, k.requestError(resp, "get role")
	}

	var role keycloakRole
	if err := json.NewDecoder(resp.Body).Decode(&role); err != nil {
		return nil, fmt.Errorf("failed to decode role: %w", err)
	}
	return &role, nil
}

func (k *KeycloakProvider) assignRole(ctx context.Context, userID string, role keycloakRole) error {
	assignURL := fmt.Sprintf("%s/admin/realms/%s/users/%s/role-mappings/realm", k.baseURL, k.cfg.Realm, userID)

	resp, err := k.adminRequest(ctx, http.MethodPost, assignURL, []keycloakRole{role})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return k.requestError(resp, "assign role")
	}
	return nil
}

func (k *KeycloakProvider) deleteUser(ctx context.Context, userID string) error {
	deleteURL := fmt.Sprintf("%s/admin/realms/%s/users/%s", k.baseURL, k.cfg.Realm, userID)

	resp, err := k.adminRequest(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return k.requestError(resp, "delete user")
	}
	return nil
}

// adminRequest sends an authenticated admin API request with an optional JSON body
func (k *KeycloakProvider) adminRequest(ctx context.Context, method, target string, body interface{}) (*http.Response, error) {
	if k.adminTokens == nil {
		return nil, errors.New("keycloak admin client is not configured")
	}
	token, err := k.adminTokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: admin token: %w", ErrProviderUnavailable, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	token.SetAuthHeader(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return resp, nil
}

func (k *KeycloakProvider) requestError(resp *http.Response, operation string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	logger.New().WithFields(map[string]interface{}{
		"operation": operation,
		"status":    resp.StatusCode,
		"body":      string(body),
	}).Warn("Keycloak request failed")
	return fmt.Errorf("%w: %s: status %d", ErrKeycloakRequest, operation, resp.StatusCode)
}

func splitFullName(fullName string) (string, string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
