package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/wanderly/agency-api/internal/repository"
	"github.com/wanderly/agency-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequenceRepository_NextNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	repo := repository.NewNumberSequenceRepository(db)

	agency := testutil.CreateTestAgency(t, db, "Sequence Agency")
	year := time.Now().Year()

	t.Run("first claim creates the sequence", func(t *testing.T) {
		number, err := repo.NextNumber(context.Background(), agency.ID, "quote", "Q")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Q-%d-000001", year), number)
	})

	t.Run("subsequent claims are dense", func(t *testing.T) {
		number, err := repo.NextNumber(context.Background(), agency.ID, "quote", "Q")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Q-%d-000002", year), number)

		number, err = repo.NextNumber(context.Background(), agency.ID, "quote", "Q")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Q-%d-000003", year), number)
	})

	t.Run("kinds are independent", func(t *testing.T) {
		number, err := repo.NextNumber(context.Background(), agency.ID, "invoice", "INV")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-%d-000001", year), number)
	})

	t.Run("agencies are independent", func(t *testing.T) {
		other := testutil.CreateTestAgency(t, db, "Other Sequence Agency")
		number, err := repo.NextNumber(context.Background(), other.ID, "quote", "Q")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("Q-%d-000001", year), number)
	})
}
