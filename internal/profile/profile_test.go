package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WailSalutem-Health-Care/membership-service/internal/auth"
	"github.com/WailSalutem-Health-Care/membership-service/internal/organization"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	membership *organization.Membership
	calls      []string
}

func (s *stubLookup) GetUserMembership(ctx context.Context, userID string) *organization.Membership {
	s.calls = append(s.calls, userID)
	return s.membership
}

func adminMembership() *organization.Membership {
	return &organization.Membership{
		Member:       organization.Member{OrganizationID: "acme-corp", UserID: "u-1", Role: organization.RoleAdmin},
		Organization: organization.Organization{ID: "acme-corp", Name: "Acme Corp"},
	}
}

func TestService_Profile(t *testing.T) {
	authTime := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	p := &auth.Principal{
		UserID:        "u-1",
		Email:         "jane@example.com",
		EmailVerified: true,
		AuthTime:      &authTime,
		Claims:        jwt.MapClaims{"created_at": float64(1704067200)},
	}

	t.Run("With organization", func(t *testing.T) {
		lookup := &stubLookup{membership: adminMembership()}

		profile := NewService(lookup).Profile(context.Background(), p)

		assert.Equal(t, []string{"u-1"}, lookup.calls)
		assert.Equal(t, "Administrator", profile.RoleLabel)
		assert.Equal(t, AccountStatus{Email: "Verified", Account: "Active", Organization: "Member"}, profile.AccountStatus)
		require.NotNil(t, profile.User.CreatedAt)
		assert.Equal(t, 2024, profile.User.CreatedAt.Year())
		assert.Equal(t, &authTime, profile.User.LastSignInAt)
	})

	t.Run("Without organization", func(t *testing.T) {
		unverified := *p
		unverified.EmailVerified = false
		unverified.Claims = nil

		profile := NewService(&stubLookup{}).Profile(context.Background(), &unverified)

		assert.Nil(t, profile.Membership)
		assert.Empty(t, profile.RoleLabel)
		assert.Nil(t, profile.User.CreatedAt)
		assert.Equal(t, AccountStatus{Email: "Pending", Account: "Active", Organization: "No Organization"}, profile.AccountStatus)
	})
}

func TestService_Dashboard(t *testing.T) {
	t.Run("Member", func(t *testing.T) {
		member := adminMembership()
		member.Role = organization.RoleMember

		d := NewService(&stubLookup{membership: member}).Dashboard(context.Background(), &auth.Principal{UserID: "u-1", Email: "jane.doe@example.com"})

		assert.Equal(t, "jane.doe", d.DisplayName)
		assert.Equal(t, "@jane.doe", d.Handle)
		assert.Equal(t, "JA", d.Initials)
		require.NotNil(t, d.Organization)
		assert.Equal(t, OrganizationSummary{ID: "acme-corp", Name: "Acme Corp", RoleLabel: "Member"}, *d.Organization)
		assert.Empty(t, d.Message)
	})

	t.Run("No organization", func(t *testing.T) {
		d := NewService(&stubLookup{}).Dashboard(context.Background(), &auth.Principal{UserID: "u-2", Email: "x@example.com"})

		assert.Equal(t, "X", d.Initials)
		assert.Nil(t, d.Organization)
		assert.Equal(t, onboardingMessage, d.Message)
	})

	t.Run("No email", func(t *testing.T) {
		d := NewService(&stubLookup{}).Dashboard(context.Background(), &auth.Principal{UserID: "u-3"})

		assert.Equal(t, "User", d.DisplayName)
		assert.Equal(t, "U", d.Initials)
	})
}

func TestHandler(t *testing.T) {
	h := NewHandler(NewService(&stubLookup{membership: adminMembership()}))

	t.Run("Dashboard", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me/dashboard", nil)
		req = req.WithContext(auth.ContextWithPrincipal(req.Context(), &auth.Principal{UserID: "u-1", Email: "jane@example.com"}))
		w := httptest.NewRecorder()

		h.GetDashboard(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var d Dashboard
		require.NoError(t, json.NewDecoder(w.Body).Decode(&d))
		assert.Equal(t, "Acme Corp", d.Organization.Name)
	})

	t.Run("Profile unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()

		h.GetProfile(w, httptest.NewRequest(http.MethodGet, "/me/profile", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
