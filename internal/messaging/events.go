package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Event routing keys
const (
	EventOrganizationCreated     = "organization.created"
	EventMemberJoined            = "organization.member_joined"
	EventAdminAssignmentFailed   = "organization.admin_assignment_failed"
	EventAdminAssignmentRepaired = "organization.admin_assignment_repaired"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// OrganizationCreatedEvent is published once the organization and its admin membership exist
type OrganizationCreatedEvent struct {
	BaseEvent
	Data OrganizationCreatedData `json:"data"`
}

type OrganizationCreatedData struct {
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// MemberJoinedEvent is published when a user joins an existing organization
type MemberJoinedEvent struct {
	BaseEvent
	Data MemberJoinedData `json:"data"`
}

type MemberJoinedData struct {
	MemberID       string    `json:"member_id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"` // admin or member
	JoinedAt       time.Time `json:"joined_at"`
}

// AdminAssignmentEvent reports an organization whose creator is missing the admin membership,
// or the repair of one
type AdminAssignmentEvent struct {
	BaseEvent
	Data AdminAssignmentData `json:"data"`
}

type AdminAssignmentData struct {
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
	Reason         string `json:"reason,omitempty"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		ServiceName: "membership-service",
	}
}
