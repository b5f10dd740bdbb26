package organization

import (
	"time"

	"github.com/WailSalutem-Health-Care/membership-service/internal/pagination"
)

// Role is the role a user holds inside an organization
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Label returns the human-facing name of the role
func (r Role) Label() string {
	if r == RoleAdmin {
		return "Administrator"
	}
	return "Member"
}

// Organization is a named group of users identified by a human-chosen slug
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member links a user to an organization with a role
type Member struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           Role      `json:"role"`
	JoinedAt       time.Time `json:"joined_at"`
}

// Membership is a member row joined with its organization
type Membership struct {
	Member
	Organization Organization `json:"organization"`
}

// CreateOrganizationRequest represents the request to create a new organization
type CreateOrganizationRequest struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// OrganizationPreview is what a prospective member sees before joining
type OrganizationPreview struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Result is returned by the join and create flows
type Result struct {
	Organization Organization `json:"organization"`
	Member       Member       `json:"member"`
}

// Message is the confirmation shown to the user after a successful flow
func (r *Result) Message(verb string) string {
	return "Successfully " + verb + " " + r.Organization.Name + "!"
}

// NormalizeResponse is returned by the id normalization helper endpoint
type NormalizeResponse struct {
	ID    string `json:"id"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func previewOf(org *Organization) *OrganizationPreview {
	return &OrganizationPreview{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
	}
}

// MemberListResponse is one page of an organization's members
type MemberListResponse struct {
	Success    bool            `json:"success"`
	Members    []Member        `json:"members"`
	Pagination pagination.Meta `json:"pagination"`
}

// NormalizeRequest carries raw user input for the id normalization helper
type NormalizeRequest struct {
	Input string `json:"input"`
}
