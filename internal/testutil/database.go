package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/WailSalutem-Health-Care/membership-service/internal/db"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestDB starts a disposable PostgreSQL container, applies the schema
// and returns an open connection. Everything is torn down with the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "membership_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	database, err := db.Connect(ctx, db.Config{
		Host:         host,
		Port:         port.Port(),
		User:         "test",
		Password:     "test",
		Name:         "membership_test",
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.Migrate(ctx, database); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return database
}

// CleanupTestDB empties the membership tables between tests sharing a container
func CleanupTestDB(t *testing.T, database *sql.DB) {
	t.Helper()

	if _, err := database.Exec("TRUNCATE TABLE organization_members, organizations CASCADE"); err != nil {
		t.Logf("Warning: Failed to clean up tables: %v", err)
	}
}

// SeedOrganization inserts an organization row directly, bypassing the service
func SeedOrganization(t *testing.T, database *sql.DB, id, name, createdBy string) {
	t.Helper()

	_, err := database.Exec(
		`INSERT INTO organizations (id, name, created_by) VALUES ($1, $2, $3)`,
		id, name, createdBy,
	)
	if err != nil {
		t.Fatalf("Failed to seed organization %s: %v", id, err)
	}
}
