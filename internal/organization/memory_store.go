package organization

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for development and testing.
// It enforces the same uniqueness and check constraints as the Postgres schema.
type MemoryStore struct {
	mu            sync.RWMutex
	organizations map[string]*Organization
	members       map[string]*Member // member id -> member
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		organizations: make(map[string]*Organization),
		members:       make(map[string]*Member),
	}
}

func (s *MemoryStore) FindOrganization(ctx context.Context, id string) (*Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.organizations[id]
	if !ok {
		return nil, ErrNoRows
	}
	return copyOrganization(org), nil
}

func (s *MemoryStore) FindMember(ctx context.Context, organizationID, userID string) (*Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members {
		if m.OrganizationID == organizationID && m.UserID == userID {
			copy := *m
			return &copy, nil
		}
	}
	return nil, ErrNoRows
}

// FindMembershipByUser returns the user's earliest membership
func (s *MemoryStore) FindMembershipByUser(ctx context.Context, userID string) (*Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *Member
	for _, m := range s.members {
		if m.UserID != userID {
			continue
		}
		if found == nil || m.JoinedAt.Before(found.JoinedAt) {
			found = m
		}
	}
	if found == nil {
		return nil, ErrNoRows
	}

	org, ok := s.organizations[found.OrganizationID]
	if !ok {
		return nil, ErrNoRows
	}
	return &Membership{Member: *found, Organization: *copyOrganization(org)}, nil
}

func (s *MemoryStore) InsertOrganization(ctx context.Context, org Organization) (*Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateID(org.ID); err != nil {
		return nil, &StoreError{Code: CodeCheckViolation, Constraint: "organizations_id_format", Err: err}
	}
	if org.Name == "" {
		return nil, &StoreError{Code: CodeOther, Constraint: "organizations_name_not_null", Err: errors.New("name is required")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.organizations[org.ID]; exists {
		return nil, &StoreError{Code: CodeUniqueViolation, Constraint: "organizations_pkey", Err: errors.New("duplicate organization id")}
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}

	stored := copyOrganization(&org)
	s.organizations[org.ID] = stored
	return copyOrganization(stored), nil
}

func (s *MemoryStore) InsertMember(ctx context.Context, member Member) (*Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if member.Role != RoleAdmin && member.Role != RoleMember {
		return nil, &StoreError{Code: CodeCheckViolation, Constraint: "organization_members_role_check", Err: errors.New("invalid role")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.organizations[member.OrganizationID]; !ok {
		return nil, &StoreError{Code: CodeOther, Constraint: "organization_members_organization_id_fkey", Err: errors.New("organization does not exist")}
	}
	for _, m := range s.members {
		if m.OrganizationID == member.OrganizationID && m.UserID == member.UserID {
			return nil, &StoreError{Code: CodeUniqueViolation, Constraint: "organization_members_organization_id_user_id_key", Err: errors.New("duplicate membership")}
		}
	}

	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}

	stored := member
	s.members[member.ID] = &stored
	return &member, nil
}

func (s *MemoryStore) ListMembers(ctx context.Context, organizationID string, limit, offset int) ([]Member, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []Member
	for _, m := range s.members {
		if m.OrganizationID == organizationID {
			all = append(all, *m)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].JoinedAt.Before(all[j].JoinedAt)
	})

	total := len(all)
	if offset < 0 || limit < 1 || offset >= total {
		return []Member{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *MemoryStore) FindOrganizationsMissingAdmin(ctx context.Context) ([]Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orgs []Organization
	for _, org := range s.organizations {
		found := false
		for _, m := range s.members {
			if m.OrganizationID == org.ID && m.UserID == org.CreatedBy {
				found = true
				break
			}
		}
		if !found {
			orgs = append(orgs, *copyOrganization(org))
		}
	}
	sort.Slice(orgs, func(i, j int) bool {
		return orgs[i].CreatedAt.Before(orgs[j].CreatedAt)
	})
	return orgs, nil
}

// CountMembers returns how many membership rows exist for the pair
func (s *MemoryStore) CountMembers(organizationID, userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, m := range s.members {
		if m.OrganizationID == organizationID && m.UserID == userID {
			n++
		}
	}
	return n
}

func copyOrganization(org *Organization) *Organization {
	copy := *org
	if org.Description != nil {
		d := *org.Description
		copy.Description = &d
	}
	return &copy
}
