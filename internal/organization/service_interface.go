package organization

import (
	"context"

	"github.com/WailSalutem-Health-Care/membership-service/internal/pagination"
)

// ServiceInterface defines the contract for the membership workflows
type ServiceInterface interface {
	JoinOrganization(ctx context.Context, userID, organizationID string) (*Result, error)
	CreateOrganization(ctx context.Context, userID string, req CreateOrganizationRequest) (*Result, error)
	GetUserMembership(ctx context.Context, userID string) *Membership
	PreviewOrganization(ctx context.Context, organizationID string) (*OrganizationPreview, error)
	ListMembers(ctx context.Context, userID, organizationID string, params pagination.Params) (*MemberListResponse, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
