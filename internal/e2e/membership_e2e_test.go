//go:build integration

package e2e

import (
	"net/http"
	"testing"

	"github.com/WailSalutem-Health-Care/membership-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/membership-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orgResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Organization struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"organization"`
	Member struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	} `json:"member"`
}

type myOrganizationResponse struct {
	HasOrganization bool `json:"has_organization"`
	Membership      *struct {
		Role         string `json:"role"`
		Organization struct {
			ID string `json:"id"`
		} `json:"organization"`
	} `json:"membership"`
}

// TestE2E_MembershipFlow covers create, preview, join, lookup and the error paths over HTTP
func TestE2E_MembershipFlow(t *testing.T) {
	ts := SetupE2ETest(t)
	alice := ts.UserClient(t, "alice")
	bob := alice.WithToken(testutil.GenerateUserToken(t, ts.PrivateKey, "bob"))

	// Nobody has an organization yet
	var mine myOrganizationResponse
	resp := alice.GET(t, "/me/organization")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &mine)
	assert.False(t, mine.HasOrganization)

	// Alice creates an organization and becomes its admin
	resp = alice.POST(t, "/organizations", map[string]string{
		"id":          "acme-corp",
		"name":        "  Acme Corp  ",
		"description": "Widgets",
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var created orgResponse
	testutil.DecodeJSON(t, resp, &created)
	assert.Equal(t, "Acme Corp", created.Organization.Name)
	assert.Equal(t, "admin", created.Member.Role)
	assert.Equal(t, "Successfully created Acme Corp!", created.Message)
	ts.MockPublisher.AssertEventCount(t, messaging.EventOrganizationCreated, 1)
	published := ts.MockPublisher.GetLastEventByKey(messaging.EventOrganizationCreated)
	require.NotNil(t, published)
	event, ok := published.EventData.(messaging.OrganizationCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "alice", event.Data.CreatedBy)

	// Creating it again conflicts and leaves the stored organization alone
	resp = bob.POST(t, "/organizations", map[string]string{"id": "acme-corp", "name": "Acme Again"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, testutil.ReadBody(t, resp), "Organization ID already exists")

	var name, createdBy string
	require.NoError(t, ts.DB.QueryRow(
		"SELECT name, created_by FROM organizations WHERE id = $1", "acme-corp",
	).Scan(&name, &createdBy))
	assert.Equal(t, "Acme Corp", name)
	assert.Equal(t, "alice", createdBy)
	var memberCount int
	require.NoError(t, ts.DB.QueryRow(
		"SELECT COUNT(*) FROM organization_members WHERE organization_id = $1", "acme-corp",
	).Scan(&memberCount))
	assert.Equal(t, 1, memberCount)
	ts.MockPublisher.AssertEventCount(t, messaging.EventOrganizationCreated, 1)

	// Bob previews using free-form input, which is normalized
	resp = bob.GET(t, "/organizations/Acme%20Corp")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	// Bob joins
	resp = bob.POST(t, "/organizations/acme-corp/join", nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var joined orgResponse
	testutil.DecodeJSON(t, resp, &joined)
	assert.Equal(t, "member", joined.Member.Role)
	ts.MockPublisher.AssertEventCount(t, messaging.EventMemberJoined, 1)

	// Joining twice is rejected
	resp = bob.POST(t, "/organizations/acme-corp/join", nil)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	resp.Body.Close()

	// Bob's membership is visible on the read path
	resp = bob.GET(t, "/me/organization")
	testutil.DecodeJSON(t, resp, &mine)
	require.True(t, mine.HasOrganization)
	assert.Equal(t, "acme-corp", mine.Membership.Organization.ID)
	assert.Equal(t, "member", mine.Membership.Role)

	// Members are listed for members only
	resp = alice.GET(t, "/organizations/acme-corp/members?limit=1")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()
	resp = ts.UserClient(t, "carol").GET(t, "/organizations/acme-corp/members")
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func TestE2E_ErrorPaths(t *testing.T) {
	ts := SetupE2ETest(t)
	alice := ts.UserClient(t, "alice")

	resp := alice.POST(t, "/organizations/missing-org/join", nil)
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	resp.Body.Close()

	resp = alice.POST(t, "/organizations", map[string]string{"id": "ab", "name": "Too Short"})
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	resp = alice.POSTRaw(t, "/organizations", "{not json")
	testutil.AssertStatusCode(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	resp = alice.Anonymous().GET(t, "/me/organization")
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	resp.Body.Close()

	resp = ts.SupportClient(t).POST(t, "/organizations", map[string]string{"id": "support-org", "name": "Support"})
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	resp.Body.Close()
}

func TestE2E_AccountFlow(t *testing.T) {
	ts := SetupE2ETest(t)
	anon := testutil.NewHTTPTestClient(ts.Server.URL, "")

	resp := anon.POST(t, "/auth/signup", map[string]interface{}{
		"full_name":        "Jane Doe",
		"nickname":         "jane",
		"username":         "janedoe",
		"email":            "jane@example.com",
		"password":         "Secret1!",
		"confirm_password": "Secret1!",
		"accept_terms":     true,
	})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	resp.Body.Close()
	assert.Equal(t, 1, ts.Accounts.UserCount())

	resp = anon.POST(t, "/auth/login", map[string]string{"email": "jane@example.com", "password": "wrong"})
	testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	resp.Body.Close()

	var session struct {
		Session struct {
			RefreshToken string `json:"refresh_token"`
		} `json:"session"`
	}
	resp = anon.POST(t, "/auth/login", map[string]string{"email": "jane@example.com", "password": "Secret1!"})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &session)
	assert.Equal(t, 1, ts.Accounts.ActiveSessions())

	resp = anon.POST(t, "/auth/logout", map[string]string{"refresh_token": session.Session.RefreshToken})
	testutil.AssertStatusCode(t, resp, http.StatusNoContent)
	resp.Body.Close()
	assert.Equal(t, 0, ts.Accounts.ActiveSessions())
}
