package organization

import (
	"context"
	"fmt"

	"github.com/WailSalutem-Health-Care/membership-service/internal/logger"
	"github.com/WailSalutem-Health-Care/membership-service/internal/messaging"
)

// RepairReport summarizes one repair run
type RepairReport struct {
	Found    int      `json:"found"`
	Repaired int      `json:"repaired"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
	DryRun   bool     `json:"dry_run"`
}

// RepairService restores the admin membership of organizations left behind by a partial create
type RepairService struct {
	store     Store
	publisher messaging.PublisherInterface
}

// NewRepairService creates a new repair service; publisher may be nil
func NewRepairService(store Store, publisher messaging.PublisherInterface) *RepairService {
	return &RepairService{store: store, publisher: publisher}
}

// RepairMissingAdmins inserts the creator's admin membership wherever it is missing.
// With dryRun set it only reports what it would do.
func (s *RepairService) RepairMissingAdmins(ctx context.Context, dryRun bool) (*RepairReport, error) {
	log := logger.WithContext(ctx)

	orgs, err := s.store.FindOrganizationsMissingAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find organizations missing an admin: %w", err)
	}

	report := &RepairReport{Found: len(orgs), DryRun: dryRun}
	if len(orgs) == 0 {
		log.Info("No organizations missing an admin membership")
		return report, nil
	}
	log.Infof("Found %d organizations missing an admin membership", len(orgs))

	for _, org := range orgs {
		orgLog := log.WithFields(map[string]interface{}{
			"organization_id": org.ID,
			"created_by":      org.CreatedBy,
		})
		if dryRun {
			orgLog.Info("Would assign creator as admin")
			continue
		}

		_, err := s.store.InsertMember(ctx, Member{
			OrganizationID: org.ID,
			UserID:         org.CreatedBy,
			Role:           RoleAdmin,
		})
		switch {
		case err == nil:
			report.Repaired++
			orgLog.Info("Assigned creator as admin")
			s.publishRepaired(ctx, org)
		case storeCode(err) == CodeUniqueViolation:
			report.Skipped++
			orgLog.Info("Membership appeared concurrently, skipping")
		default:
			report.Failed = append(report.Failed, org.ID)
			orgLog.WithError(err).Error("Failed to assign creator as admin")
		}
	}

	log.Infof("Repaired %d/%d organizations", report.Repaired, report.Found)
	return report, nil
}

func (s *RepairService) publishRepaired(ctx context.Context, org Organization) {
	if s.publisher == nil {
		return
	}
	event := messaging.AdminAssignmentEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventAdminAssignmentRepaired),
		Data: messaging.AdminAssignmentData{
			OrganizationID: org.ID,
			UserID:         org.CreatedBy,
			Reason:         "repair",
		},
	}
	if err := s.publisher.Publish(ctx, messaging.EventAdminAssignmentRepaired, event); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("Failed to publish repair event")
	}
}
