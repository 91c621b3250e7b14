package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/database"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB connects to the test PostgreSQL database. It uses environment
// variables or falls back to docker-compose defaults, and skips the test
// when no database is reachable so the suite can run without one.
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "agency_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "agency_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "agency_test")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Skipf("Skipping: test database unavailable: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		t.Skipf("Skipping: test database unreachable at %s:%s", host, port)
	}

	require.NoError(t, database.AutoMigrate(db))

	return db
}

// CleanupTestData wipes test data from all tables, children first
func CleanupTestData(t *testing.T, db *gorm.DB) {
	tables := []string{
		"refunds",
		"payments",
		"commissions",
		"invoices",
		"expenses",
		"tasks",
		"booking_items",
		"bookings",
		"documents",
		"activities",
		"quote_items",
		"quotes",
		"contacts",
		"number_sequences",
		"agencies",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error
		if err != nil {
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestAgency creates an agency row for scoping tests
func CreateTestAgency(t *testing.T, db *gorm.DB, name string) *domain.Agency {
	agency := &domain.Agency{
		Name:     name,
		Email:    "post@example.com",
		Country:  "Norway",
		Currency: "NOK",
		IsActive: true,
	}
	require.NoError(t, db.Create(agency).Error)
	return agency
}

// CreateTestContact creates a contact belonging to the given agency
func CreateTestContact(t *testing.T, db *gorm.DB, agencyID uuid.UUID, firstName, lastName string) *domain.Contact {
	contact := &domain.Contact{
		AgencyID:  agencyID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     fmt.Sprintf("%s.%s@example.com", firstName, lastName),
		Phone:     "12345678",
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

// AgencyContext returns a context carrying an authenticated agent for the
// given agency, the way the auth middleware would build it.
func AgencyContext(agencyID uuid.UUID) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      "test-agent",
		DisplayName: "Test Agent",
		Email:       "agent@example.com",
		Roles:       []auth.Role{auth.RoleAgent},
		AgencyID:    agencyID,
	})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
