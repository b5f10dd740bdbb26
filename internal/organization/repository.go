package organization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/WailSalutem-Health-Care/membership-service/internal/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// PostgresStore implements Store on the organizations and organization_members tables
type PostgresStore struct {
	db *sql.DB
	q  querier
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

// InTx runs fn inside a single database transaction
func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&PostgresStore{db: s.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindOrganization(ctx context.Context, id string) (*Organization, error) {
	query := `
		SELECT id, name, description, created_by, created_at
		FROM organizations
		WHERE id = $1
	`

	org, err := scanOrganization(s.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query organization: %w", err)
	}
	return org, nil
}

func (s *PostgresStore) FindMember(ctx context.Context, organizationID, userID string) (*Member, error) {
	query := `
		SELECT id, organization_id, user_id, role, joined_at
		FROM organization_members
		WHERE organization_id = $1 AND user_id = $2
	`

	var m Member
	err := s.q.QueryRowContext(ctx, query, organizationID, userID).Scan(
		&m.ID,
		&m.OrganizationID,
		&m.UserID,
		&m.Role,
		&m.JoinedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query membership: %w", err)
	}
	return &m, nil
}

// FindMembershipByUser returns the user's earliest membership joined with its organization
func (s *PostgresStore) FindMembershipByUser(ctx context.Context, userID string) (*Membership, error) {
	query := `
		SELECT m.id, m.organization_id, m.user_id, m.role, m.joined_at,
		       o.id, o.name, o.description, o.created_by, o.created_at
		FROM organization_members m
		JOIN organizations o ON o.id = m.organization_id
		WHERE m.user_id = $1
		ORDER BY m.joined_at ASC
		LIMIT 1
	`

	var ms Membership
	var description sql.NullString
	err := s.q.QueryRowContext(ctx, query, userID).Scan(
		&ms.ID,
		&ms.OrganizationID,
		&ms.UserID,
		&ms.Role,
		&ms.JoinedAt,
		&ms.Organization.ID,
		&ms.Organization.Name,
		&description,
		&ms.Organization.CreatedBy,
		&ms.Organization.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query membership: %w", err)
	}
	if description.Valid {
		ms.Organization.Description = &description.String
	}
	return &ms, nil
}

func (s *PostgresStore) InsertOrganization(ctx context.Context, org Organization) (*Organization, error) {
	query := `
		INSERT INTO organizations (id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, created_by, created_at
	`

	created, err := scanOrganization(s.q.QueryRowContext(ctx, query,
		org.ID,
		org.Name,
		org.Description,
		org.CreatedBy,
	))
	if err != nil {
		return nil, mapInsertError(err)
	}
	return created, nil
}

func (s *PostgresStore) InsertMember(ctx context.Context, member Member) (*Member, error) {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}

	query := `
		INSERT INTO organization_members (id, organization_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, organization_id, user_id, role, joined_at
	`

	var m Member
	err := s.q.QueryRowContext(ctx, query,
		member.ID,
		member.OrganizationID,
		member.UserID,
		string(member.Role),
	).Scan(
		&m.ID,
		&m.OrganizationID,
		&m.UserID,
		&m.Role,
		&m.JoinedAt,
	)
	if err != nil {
		return nil, mapInsertError(err)
	}
	return &m, nil
}

// ListMembers retrieves one page of an organization's members, oldest first
func (s *PostgresStore) ListMembers(ctx context.Context, organizationID string, limit, offset int) ([]Member, int, error) {
	var totalCount int
	countQuery := `SELECT COUNT(*) FROM organization_members WHERE organization_id = $1`
	if err := s.q.QueryRowContext(ctx, countQuery, organizationID).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	query := `
		SELECT id, organization_id, user_id, role, joined_at
		FROM organization_members
		WHERE organization_id = $1
		ORDER BY joined_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.q.QueryContext(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating members: %w", err)
	}

	return members, totalCount, nil
}

// FindOrganizationsMissingAdmin lists organizations whose creator has no membership row
func (s *PostgresStore) FindOrganizationsMissingAdmin(ctx context.Context) ([]Organization, error) {
	query := `
		SELECT o.id, o.name, o.description, o.created_by, o.created_at
		FROM organizations o
		WHERE NOT EXISTS (
			SELECT 1 FROM organization_members m
			WHERE m.organization_id = o.id AND m.user_id = o.created_by
		)
		ORDER BY o.created_at ASC
	`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, *org)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}

	return orgs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrganization(row rowScanner) (*Organization, error) {
	var org Organization
	var description sql.NullString

	if err := row.Scan(
		&org.ID,
		&org.Name,
		&description,
		&org.CreatedBy,
		&org.CreatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		org.Description = &description.String
	}
	return &org, nil
}

// mapInsertError classifies driver errors by SQLSTATE
func mapInsertError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return &StoreError{Code: CodeOther, Err: err}
	}

	switch string(pqErr.Code) {
	case pgerrcode.UniqueViolation:
		return &StoreError{Code: CodeUniqueViolation, Constraint: pqErr.Constraint, Err: err}
	case pgerrcode.CheckViolation:
		return &StoreError{Code: CodeCheckViolation, Constraint: pqErr.Constraint, Err: err}
	default:
		logger.New().WithFields(map[string]interface{}{
			"sqlstate":   string(pqErr.Code),
			"constraint": pqErr.Constraint,
		}).Debug("Unclassified insert failure")
		return &StoreError{Code: CodeOther, Constraint: pqErr.Constraint, Err: err}
	}
}
