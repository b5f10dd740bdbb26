package profile

import (
	"context"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/membership-service/internal/auth"
	"github.com/WailSalutem-Health-Care/membership-service/internal/organization"
)

const onboardingMessage = "Your account is ready! Join an existing organization or create a new one to get started."

// MembershipLookup resolves the caller's organization; nil means none
type MembershipLookup interface {
	GetUserMembership(ctx context.Context, userID string) *organization.Membership
}

type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Username      string     `json:"username,omitempty"`
	FullName      string     `json:"full_name,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	LastSignInAt  *time.Time `json:"last_sign_in_at,omitempty"`
}

type AccountStatus struct {
	Email        string `json:"email"`
	Account      string `json:"account"`
	Organization string `json:"organization"`
}

type Profile struct {
	User          User                     `json:"user"`
	Membership    *organization.Membership `json:"membership,omitempty"`
	RoleLabel     string                   `json:"role_label,omitempty"`
	AccountStatus AccountStatus            `json:"account_status"`
}

type OrganizationSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RoleLabel string `json:"role_label"`
}

type Dashboard struct {
	DisplayName  string               `json:"display_name"`
	Handle       string               `json:"handle"`
	Initials     string               `json:"initials"`
	Organization *OrganizationSummary `json:"organization,omitempty"`
	Message      string               `json:"message,omitempty"`
}

type Service struct {
	memberships MembershipLookup
}

func NewService(memberships MembershipLookup) *Service {
	return &Service{memberships: memberships}
}

// Profile builds the account page for the authenticated principal
func (s *Service) Profile(ctx context.Context, p *auth.Principal) *Profile {
	membership := s.memberships.GetUserMembership(ctx, p.UserID)

	profile := &Profile{
		User: User{
			ID:            p.UserID,
			Email:         p.Email,
			Username:      p.Username,
			FullName:      p.FullName,
			EmailVerified: p.EmailVerified,
			CreatedAt:     claimTime(p, "created_at"),
			LastSignInAt:  p.AuthTime,
		},
		Membership: membership,
		AccountStatus: AccountStatus{
			Email:        "Pending",
			Account:      "Active",
			Organization: "No Organization",
		},
	}
	if p.EmailVerified {
		profile.AccountStatus.Email = "Verified"
	}
	if membership != nil {
		profile.RoleLabel = membership.Role.Label()
		profile.AccountStatus.Organization = "Member"
	}
	return profile
}

// Dashboard builds the landing view; users without an organization get the onboarding message
func (s *Service) Dashboard(ctx context.Context, p *auth.Principal) *Dashboard {
	local := localPart(p.Email)

	d := &Dashboard{
		DisplayName: "User",
		Handle:      "@username",
		Initials:    "U",
	}
	if local != "" {
		d.DisplayName = local
		d.Handle = "@" + local
		d.Initials = initials(local)
	}

	membership := s.memberships.GetUserMembership(ctx, p.UserID)
	if membership == nil {
		d.Message = onboardingMessage
		return d
	}
	d.Organization = &OrganizationSummary{
		ID:        membership.Organization.ID,
		Name:      membership.Organization.Name,
		RoleLabel: membership.Role.Label(),
	}
	return d
}

func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func initials(local string) string {
	runes := []rune(local)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

// claimTime reads an optional unix-seconds claim
func claimTime(p *auth.Principal, name string) *time.Time {
	if p.Claims == nil {
		return nil
	}
	v, ok := p.Claims[name].(float64)
	if !ok || v <= 0 {
		return nil
	}
	t := time.Unix(int64(v), 0).UTC()
	return &t
}
