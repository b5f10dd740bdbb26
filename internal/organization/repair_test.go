package organization

import (
	"context"
	"errors"
	"testing"

	"github.com/WailSalutem-Health-Care/membership-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/membership-service/internal/testutil"
)

func seedOrphan(t *testing.T, store *MemoryStore, id, createdBy string) {
	t.Helper()
	if _, err := store.InsertOrganization(context.Background(), Organization{ID: id, Name: id, CreatedBy: createdBy}); err != nil {
		t.Fatalf("Failed to seed organization: %v", err)
	}
}

func TestRepairMissingAdmins(t *testing.T) {
	store := NewMemoryStore()
	seedAcme(t, store)
	seedOrphan(t, store, "orphan-one", userU2)
	publisher := testutil.NewMockPublisher()

	report, err := NewRepairService(store, publisher).RepairMissingAdmins(context.Background(), false)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Found != 1 || report.Repaired != 1 || len(report.Failed) != 0 {
		t.Errorf("Unexpected report: %+v", report)
	}
	m, err := store.FindMember(context.Background(), "orphan-one", userU2)
	if err != nil || m.Role != RoleAdmin {
		t.Errorf("Expected admin membership for creator, got %+v (%v)", m, err)
	}
	publisher.AssertEventCount(t, messaging.EventAdminAssignmentRepaired, 1)
}

func TestRepairMissingAdmins_DryRun(t *testing.T) {
	store := NewMemoryStore()
	seedOrphan(t, store, "orphan-one", userU2)

	report, err := NewRepairService(store, nil).RepairMissingAdmins(context.Background(), true)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !report.DryRun || report.Found != 1 || report.Repaired != 0 {
		t.Errorf("Unexpected report: %+v", report)
	}
	if store.CountMembers("orphan-one", userU2) != 0 {
		t.Error("Dry run must not insert memberships")
	}
}

func TestRepairMissingAdmins_InsertOutcomes(t *testing.T) {
	store := NewMemoryStore()
	seedOrphan(t, store, "orphan-one", userU1)
	seedOrphan(t, store, "orphan-two", userU2)

	mock := &mockStore{
		MemoryStore: store,
		insertMemberFunc: func(ctx context.Context, m Member) (*Member, error) {
			if m.OrganizationID == "orphan-one" {
				return nil, &StoreError{Code: CodeUniqueViolation, Err: errors.New("duplicate key")}
			}
			return nil, &StoreError{Code: CodeOther, Err: errors.New("connection refused")}
		},
	}

	report, err := NewRepairService(mock, nil).RepairMissingAdmins(context.Background(), false)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", report.Skipped)
	}
	if len(report.Failed) != 1 || report.Failed[0] != "orphan-two" {
		t.Errorf("Expected orphan-two to fail, got %v", report.Failed)
	}
}
