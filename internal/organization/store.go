package organization

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoRows is returned by Store lookups that match nothing
var ErrNoRows = errors.New("no rows in result set")

// StoreErrorCode classifies constraint failures reported by the store
type StoreErrorCode string

const (
	CodeUniqueViolation StoreErrorCode = "uniqueness"
	CodeCheckViolation  StoreErrorCode = "check-constraint"
	CodeOther           StoreErrorCode = "other"
)

// StoreError is an insert failure carrying the store's classification
type StoreError struct {
	Code       StoreErrorCode
	Constraint string
	Err        error
}

func (e *StoreError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("store %s violation on %s: %v", e.Code, e.Constraint, e.Err)
	}
	return fmt.Sprintf("store %s error: %v", e.Code, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// storeCode extracts the classification of an insert error, CodeOther when unknown
func storeCode(err error) StoreErrorCode {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	return CodeOther
}

// Store is the table-oriented record store consumed by the membership workflow
type Store interface {
	FindOrganization(ctx context.Context, id string) (*Organization, error)
	FindMember(ctx context.Context, organizationID, userID string) (*Member, error)
	FindMembershipByUser(ctx context.Context, userID string) (*Membership, error)
	InsertOrganization(ctx context.Context, org Organization) (*Organization, error)
	InsertMember(ctx context.Context, member Member) (*Member, error)
	ListMembers(ctx context.Context, organizationID string, limit, offset int) ([]Member, int, error)
	FindOrganizationsMissingAdmin(ctx context.Context) ([]Organization, error)
}

// Transactor is implemented by stores that can run several writes atomically.
// fn receives a Store bound to the transaction; returning an error rolls it back.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// Ensure both stores implement Store
var (
	_ Store      = (*PostgresStore)(nil)
	_ Transactor = (*PostgresStore)(nil)
	_ Store      = (*MemoryStore)(nil)
)
