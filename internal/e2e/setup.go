//go:build integration

package e2e

import (
	"crypto/rsa"
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/WailSalutem-Health-Care/membership-service/internal/account"
	"github.com/WailSalutem-Health-Care/membership-service/internal/auth"
	httpserver "github.com/WailSalutem-Health-Care/membership-service/internal/http"
	"github.com/WailSalutem-Health-Care/membership-service/internal/organization"
	"github.com/WailSalutem-Health-Care/membership-service/internal/profile"
	"github.com/WailSalutem-Health-Care/membership-service/internal/testutil"
)

// TestServer is the full HTTP stack on a real PostgreSQL store
type TestServer struct {
	Server        *httptest.Server
	DB            *sql.DB
	MockPublisher *testutil.MockPublisher
	Accounts      *testutil.MockSessionProvider
	PrivateKey    *rsa.PrivateKey
}

// SetupE2ETest wires the router with a containerized database, the in-memory
// publisher and identity provider, and a verifier for locally signed tokens.
func SetupE2ETest(t *testing.T) *TestServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	publisher := testutil.NewMockPublisher()
	accounts := testutil.NewMockSessionProvider()

	perms, err := auth.LoadPermissions("../../permissions.yml")
	if err != nil {
		t.Fatalf("Failed to load permissions: %v", err)
	}
	verifier, privateKey := testutil.CreateTestVerifier(t)

	orgService := organization.NewService(organization.NewPostgresStore(db), organization.WithPublisher(publisher))
	router := httpserver.SetupRouter(httpserver.Dependencies{
		Organizations:  orgService,
		Accounts:       account.NewService(accounts),
		Profiles:       profile.NewService(orgService),
		Verifier:       verifier,
		Permissions:    perms,
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:        server,
		DB:            db,
		MockPublisher: publisher,
		Accounts:      accounts,
		PrivateKey:    privateKey,
	}
}

// UserClient returns a client authenticated as userID with the USER role
func (ts *TestServer) UserClient(t *testing.T, userID string) *testutil.HTTPTestClient {
	t.Helper()
	return testutil.NewHTTPTestClient(ts.Server.URL, testutil.GenerateUserToken(t, ts.PrivateKey, userID))
}

// SupportClient returns a client with the read-only SUPPORT role
func (ts *TestServer) SupportClient(t *testing.T) *testutil.HTTPTestClient {
	t.Helper()
	return testutil.NewHTTPTestClient(ts.Server.URL, testutil.GenerateSupportToken(t, ts.PrivateKey))
}
