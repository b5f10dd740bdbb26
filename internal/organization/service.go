package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/membership-service/internal/logger"
	"github.com/WailSalutem-Health-Care/membership-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/membership-service/internal/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultStoreTimeout bounds every individual store call
const DefaultStoreTimeout = 5 * time.Second

var tracer = otel.Tracer("github.com/WailSalutem-Health-Care/membership-service/organization")

// MetricsRecorder records workflow outcomes and store latency
type MetricsRecorder interface {
	RecordOrganizationOperation(ctx context.Context, operation, outcome string)
	RecordStoreCall(ctx context.Context, operation string, durationMs float64, failed bool)
}

type noopMetrics struct{}

func (noopMetrics) RecordOrganizationOperation(context.Context, string, string) {}
func (noopMetrics) RecordStoreCall(context.Context, string, float64, bool)      {}

type Service struct {
	store        Store
	publisher    messaging.PublisherInterface
	metrics      MetricsRecorder
	storeTimeout time.Duration
}

// Option configures a Service
type Option func(*Service)

func WithPublisher(p messaging.PublisherInterface) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m MetricsRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		metrics:      noopMetrics{},
		storeTimeout: DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// JoinOrganization adds userID to the organization as a plain member.
// It performs at most one insert and never retries.
func (s *Service) JoinOrganization(ctx context.Context, userID, organizationID string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "organization.JoinOrganization")
	defer span.End()
	span.SetAttributes(attribute.String("organization.id", organizationID))

	result, err := s.join(ctx, userID, organizationID)
	s.finish(ctx, span, "join", err)
	return result, err
}

func (s *Service) join(ctx context.Context, userID, organizationID string) (*Result, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	log := logger.WithContext(ctx).WithField("organization_id", organizationID)

	var org *Organization
	err := s.call(ctx, "find_organization", func(ctx context.Context) (err error) {
		org, err = s.store.FindOrganization(ctx, organizationID)
		return err
	})
	if errors.Is(err, ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.WithError(err).Error("Organization lookup failed")
		return nil, fmt.Errorf("%w: %w", ErrJoinFailed, err)
	}

	// Fast path only: the unique (organization_id, user_id) constraint decides.
	var existing *Member
	err = s.call(ctx, "find_member", func(ctx context.Context) (err error) {
		existing, err = s.store.FindMember(ctx, organizationID, userID)
		return err
	})
	switch {
	case err == nil && existing != nil:
		return nil, ErrAlreadyMember
	case err != nil && !errors.Is(err, ErrNoRows):
		log.WithError(err).Warn("Membership pre-check failed, relying on insert constraint")
	}

	var member *Member
	err = s.call(ctx, "insert_member", func(ctx context.Context) (err error) {
		member, err = s.store.InsertMember(ctx, Member{
			OrganizationID: organizationID,
			UserID:         userID,
			Role:           RoleMember,
		})
		return err
	})
	if err != nil {
		if storeCode(err) == CodeUniqueViolation {
			return nil, ErrAlreadyMember
		}
		log.WithError(err).Error("Join error")
		return nil, fmt.Errorf("%w: %w", ErrJoinFailed, err)
	}

	s.publish(ctx, messaging.EventMemberJoined, messaging.MemberJoinedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventMemberJoined),
		Data: messaging.MemberJoinedData{
			MemberID:       member.ID,
			OrganizationID: member.OrganizationID,
			UserID:         member.UserID,
			Role:           string(member.Role),
			JoinedAt:       member.JoinedAt,
		},
	})

	log.Info("User joined organization")
	return &Result{Organization: *org, Member: *member}, nil
}

// CreateOrganization creates the organization and makes its creator an admin member.
// On stores without transactions the two inserts are separate and a failed admin
// assignment is reported as a PartialFailureError.
func (s *Service) CreateOrganization(ctx context.Context, userID string, req CreateOrganizationRequest) (*Result, error) {
	ctx, span := tracer.Start(ctx, "organization.CreateOrganization")
	defer span.End()
	span.SetAttributes(attribute.String("organization.id", req.ID))

	result, err := s.create(ctx, userID, req)
	s.finish(ctx, span, "create", err)
	return result, err
}

func (s *Service) create(ctx context.Context, userID string, req CreateOrganizationRequest) (*Result, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}
	log := logger.WithContext(ctx).WithField("organization_id", req.ID)

	var existing *Organization
	err := s.call(ctx, "find_organization", func(ctx context.Context) (err error) {
		existing, err = s.store.FindOrganization(ctx, req.ID)
		return err
	})
	switch {
	case err == nil && existing != nil:
		return nil, ErrAlreadyExists
	case err != nil && !errors.Is(err, ErrNoRows):
		log.WithError(err).Warn("Organization id pre-check failed, relying on insert constraint")
	}

	org := Organization{
		ID:        req.ID,
		Name:      strings.TrimSpace(req.Name),
		CreatedBy: userID,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		org.Description = &d
	}
	admin := Member{
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           RoleAdmin,
	}

	if txStore, ok := s.store.(Transactor); ok {
		return s.createInTx(ctx, txStore, org, admin)
	}

	var created *Organization
	err = s.call(ctx, "insert_organization", func(ctx context.Context) (err error) {
		created, err = s.store.InsertOrganization(ctx, org)
		return err
	})
	if err != nil {
		log.WithError(err).Error("Organization creation error")
		return nil, classifyOrganizationInsert(err)
	}

	var member *Member
	err = s.call(ctx, "insert_member", func(ctx context.Context) (err error) {
		member, err = s.store.InsertMember(ctx, admin)
		return err
	})
	if err != nil {
		log.WithError(err).Error("Organization created but admin assignment failed")
		s.publish(ctx, messaging.EventAdminAssignmentFailed, messaging.AdminAssignmentEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventAdminAssignmentFailed),
			Data: messaging.AdminAssignmentData{
				OrganizationID: created.ID,
				UserID:         userID,
				Reason:         err.Error(),
			},
		})
		return nil, &PartialFailureError{OrganizationID: created.ID, Err: err}
	}

	s.publishCreated(ctx, created)
	log.Info("Organization created")
	return &Result{Organization: *created, Member: *member}, nil
}

func (s *Service) createInTx(ctx context.Context, txStore Transactor, org Organization, admin Member) (*Result, error) {
	var created *Organization
	var member *Member

	err := s.call(ctx, "create_organization_tx", func(ctx context.Context) error {
		return txStore.InTx(ctx, func(tx Store) error {
			var err error
			created, err = tx.InsertOrganization(ctx, org)
			if err != nil {
				return classifyOrganizationInsert(err)
			}
			member, err = tx.InsertMember(ctx, admin)
			if err != nil {
				return fmt.Errorf("%w: admin assignment: %w", ErrCreateFailed, err)
			}
			return nil
		})
	})
	if err != nil {
		logger.WithContext(ctx).WithField("organization_id", org.ID).WithError(err).Error("Organization creation error")
		if IsValidation(err) || errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrCreateFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	s.publishCreated(ctx, created)
	return &Result{Organization: *created, Member: *member}, nil
}

func classifyOrganizationInsert(err error) error {
	switch storeCode(err) {
	case CodeUniqueViolation:
		return ErrAlreadyExists
	case CodeCheckViolation:
		return &ValidationError{
			Field:   "id",
			Message: "Invalid organization ID format. Use only lowercase letters, numbers, and hyphens.",
		}
	default:
		return fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
}

// GetUserMembership returns the user's organization membership or nil.
// Lookup failures are logged and reported as "no organization" so views keep rendering.
func (s *Service) GetUserMembership(ctx context.Context, userID string) *Membership {
	if userID == "" {
		return nil
	}

	var membership *Membership
	err := s.call(ctx, "find_membership_by_user", func(ctx context.Context) (err error) {
		membership, err = s.store.FindMembershipByUser(ctx, userID)
		return err
	})
	if errors.Is(err, ErrNoRows) {
		return nil
	}
	if err != nil {
		logger.WithContext(ctx).WithError(err).Warn("Error fetching organization, treating user as having none")
		s.metrics.RecordOrganizationOperation(ctx, "lookup", "transient_lookup_failure")
		return nil
	}
	return membership
}

// PreviewOrganization looks up the public details of an organization before joining
func (s *Service) PreviewOrganization(ctx context.Context, organizationID string) (*OrganizationPreview, error) {
	var org *Organization
	err := s.call(ctx, "find_organization", func(ctx context.Context) (err error) {
		org, err = s.store.FindOrganization(ctx, organizationID)
		return err
	})
	if errors.Is(err, ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search organization: %w", err)
	}
	return previewOf(org), nil
}

// ListMembers returns one page of members; only members of the organization may list it
func (s *Service) ListMembers(ctx context.Context, userID, organizationID string, params pagination.Params) (*MemberListResponse, error) {
	params.Validate()

	err := s.call(ctx, "find_member", func(ctx context.Context) error {
		_, err := s.store.FindMember(ctx, organizationID, userID)
		return err
	})
	if errors.Is(err, ErrNoRows) {
		return nil, ErrNotAMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	var members []Member
	var total int
	err = s.call(ctx, "list_members", func(ctx context.Context) (err error) {
		members, total, err = s.store.ListMembers(ctx, organizationID, params.Limit, params.CalculateOffset())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return &MemberListResponse{
		Success:    true,
		Members:    members,
		Pagination: params.CalculateMeta(total),
	}, nil
}

// call runs one store operation under its own deadline
func (s *Service) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	failed := err != nil && !errors.Is(err, ErrNoRows)
	s.metrics.RecordStoreCall(ctx, operation, float64(time.Since(start).Milliseconds()), failed)
	return err
}

func (s *Service) finish(ctx context.Context, span trace.Span, operation string, err error) {
	outcome := Outcome(err)
	s.metrics.RecordOrganizationOperation(ctx, operation, outcome)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return
	}
	span.SetStatus(codes.Ok, outcome)
}

func (s *Service) publishCreated(ctx context.Context, org *Organization) {
	s.publish(ctx, messaging.EventOrganizationCreated, messaging.OrganizationCreatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventOrganizationCreated),
		Data: messaging.OrganizationCreatedData{
			OrganizationID:   org.ID,
			OrganizationName: org.Name,
			CreatedBy:        org.CreatedBy,
			CreatedAt:        org.CreatedAt,
		},
	})
}

// publish never fails the request
func (s *Service) publish(ctx context.Context, routingKey string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		logger.WithContext(ctx).WithError(err).Warnf("Failed to publish %s event", routingKey)
	}
}

// Outcome names the error class for metrics and span status
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsValidation(err):
		return "invalid_format"
	case IsPartialFailure(err):
		return "partial_failure"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	default:
		return "failed"
	}
}
