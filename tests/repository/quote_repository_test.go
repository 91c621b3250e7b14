package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/domain"
	"github.com/wanderly/agency-api/internal/repository"
	"github.com/wanderly/agency-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupQuoteTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createTestQuote(t *testing.T, db *gorm.DB, agencyID, contactID uuid.UUID, title string, status domain.QuoteStatus) *domain.Quote {
	quote := &domain.Quote{
		AgencyID:  agencyID,
		Title:     title,
		ContactID: contactID,
		AgentID:   "agent-1",
		AgentName: "Test Agent",
		Status:    status,
		Currency:  "NOK",
	}
	require.NoError(t, db.Create(quote).Error)
	return quote
}

func TestQuoteRepository_CreateAndGet(t *testing.T) {
	db := setupQuoteTestDB(t)
	repo := repository.NewQuoteRepository(db)

	agency := testutil.CreateTestAgency(t, db, "Nordlys Reiser")
	contact := testutil.CreateTestContact(t, db, agency.ID, "Kari", "Nordmann")
	ctx := testutil.AgencyContext(agency.ID)

	start := time.Now().AddDate(0, 2, 0)
	quote := &domain.Quote{
		AgencyID:  agency.ID,
		Title:     "Lofoten round trip",
		ContactID: contact.ID,
		AgentID:   "agent-1",
		Status:    domain.QuoteStatusDraft,
		Currency:  "NOK",
		TotalCost: 42000,
		Items: []domain.QuoteItem{
			{Type: domain.ItemTypeFlight, Name: "OSL-EVE return", StartDate: start, Price: 3200, ClientPrice: 4000},
			{Type: domain.ItemTypeHotel, Name: "Svolvær Harbour Hotel", StartDate: start, Price: 9000, ClientPrice: 11000},
		},
	}

	err := repo.Create(ctx, quote)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, quote.ID)

	found, err := repo.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lofoten round trip", found.Title)
	assert.Len(t, found.Items, 2)
	assert.NotNil(t, found.Contact)
	assert.Equal(t, "Kari", found.Contact.FirstName)
}

func TestQuoteRepository_GetByID_ScopedToAgency(t *testing.T) {
	db := setupQuoteTestDB(t)
	repo := repository.NewQuoteRepository(db)

	agency := testutil.CreateTestAgency(t, db, "Agency A")
	other := testutil.CreateTestAgency(t, db, "Agency B")
	contact := testutil.CreateTestContact(t, db, agency.ID, "Ola", "Hansen")

	quote := createTestQuote(t, db, agency.ID, contact.ID, "Scoped quote", domain.QuoteStatusDraft)

	// Visible to its own agency
	found, err := repo.GetByID(testutil.AgencyContext(agency.ID), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.ID, found.ID)

	// Invisible to any other tenant
	_, err = repo.GetByID(testutil.AgencyContext(other.ID), quote.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestQuoteRepository_List(t *testing.T) {
	db := setupQuoteTestDB(t)
	repo := repository.NewQuoteRepository(db)

	agency := testutil.CreateTestAgency(t, db, "List Agency")
	contact := testutil.CreateTestContact(t, db, agency.ID, "Per", "Olsen")
	ctx := testutil.AgencyContext(agency.ID)

	createTestQuote(t, db, agency.ID, contact.ID, "Draft one", domain.QuoteStatusDraft)
	createTestQuote(t, db, agency.ID, contact.ID, "Draft two", domain.QuoteStatusDraft)
	createTestQuote(t, db, agency.ID, contact.ID, "Sent one", domain.QuoteStatusSent)

	t.Run("list all", func(t *testing.T) {
		quotes, total, err := repo.List(ctx, 1, 10, nil, nil, "", repository.DefaultSortConfig())
		assert.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, quotes, 3)
	})

	t.Run("filter by status", func(t *testing.T) {
		status := domain.QuoteStatusSent
		quotes, total, err := repo.List(ctx, 1, 10, &status, nil, "", repository.DefaultSortConfig())
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, quotes, 1)
		assert.Equal(t, "Sent one", quotes[0].Title)
	})

	t.Run("pagination", func(t *testing.T) {
		quotes, total, err := repo.List(ctx, 2, 2, nil, nil, "", repository.DefaultSortConfig())
		assert.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, quotes, 1)
	})
}

func TestQuoteRepository_Search(t *testing.T) {
	db := setupQuoteTestDB(t)
	repo := repository.NewQuoteRepository(db)

	agency := testutil.CreateTestAgency(t, db, "Search Agency")
	contact := testutil.CreateTestContact(t, db, agency.ID, "Nina", "Berg")
	ctx := testutil.AgencyContext(agency.ID)

	createTestQuote(t, db, agency.ID, contact.ID, "Honeymoon in Bali", domain.QuoteStatusDraft)
	createTestQuote(t, db, agency.ID, contact.ID, "Ski trip Hemsedal", domain.QuoteStatusDraft)

	quotes, err := repo.Search(ctx, "bali", 10)
	assert.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "Honeymoon in Bali", quotes[0].Title)
}

func TestQuoteRepository_UpdateItemVersioned(t *testing.T) {
	db := setupQuoteTestDB(t)
	repo := repository.NewQuoteRepository(db)

	agency := testutil.CreateTestAgency(t, db, "Version Agency")
	contact := testutil.CreateTestContact(t, db, agency.ID, "Eva", "Lund")
	ctx := testutil.AgencyContext(agency.ID)

	quote := &domain.Quote{
		AgencyID:  agency.ID,
		Title:     "Versioned quote",
		ContactID: contact.ID,
		AgentID:   "agent-1",
		Status:    domain.QuoteStatusAccepted,
		Currency:  "NOK",
		Items: []domain.QuoteItem{
			{Type: domain.ItemTypeHotel, Name: "Grand Hotel", StartDate: time.Now().AddDate(0, 1, 0), Price: 5000, ClientPrice: 6000},
		},
	}
	require.NoError(t, repo.Create(ctx, quote))

	item := quote.Items[0]
	item.ConfirmationNumber = "CONF-123"
	item.BookingStatus = domain.ItemBooked

	t.Run("write with current version", func(t *testing.T) {
		err := repo.UpdateItemVersioned(ctx, quote.ID, quote.Version, &item)
		require.NoError(t, err)

		reloaded, err := repo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, quote.Version+1, reloaded.Version)
		assert.Equal(t, "CONF-123", reloaded.Items[0].ConfirmationNumber)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		item.ConfirmationNumber = "CONF-456"
		err := repo.UpdateItemVersioned(ctx, quote.ID, quote.Version, &item)
		assert.ErrorIs(t, err, repository.ErrStaleVersion)

		// The losing write must not clobber the row
		reloaded, err := repo.GetByID(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, "CONF-123", reloaded.Items[0].ConfirmationNumber)
	})
}

func TestQuoteRepository_ExpireSent(t *testing.T) {
	db := setupQuoteTestDB(t)
	repo := repository.NewQuoteRepository(db)

	agency := testutil.CreateTestAgency(t, db, "Expiry Agency")
	contact := testutil.CreateTestContact(t, db, agency.ID, "Jon", "Vik")
	ctx := testutil.AgencyContext(agency.ID)

	yesterday := time.Now().AddDate(0, 0, -1)
	nextWeek := time.Now().AddDate(0, 0, 7)

	stale := createTestQuote(t, db, agency.ID, contact.ID, "Stale sent", domain.QuoteStatusSent)
	require.NoError(t, db.Model(stale).Update("valid_until", yesterday).Error)

	fresh := createTestQuote(t, db, agency.ID, contact.ID, "Fresh sent", domain.QuoteStatusSent)
	require.NoError(t, db.Model(fresh).Update("valid_until", nextWeek).Error)

	draft := createTestQuote(t, db, agency.ID, contact.ID, "Old draft", domain.QuoteStatusDraft)
	require.NoError(t, db.Model(draft).Update("valid_until", yesterday).Error)

	expired, err := repo.ExpireSent(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	reloaded, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusExpired, reloaded.Status)

	// Sent-but-valid and draft quotes are untouched
	reloaded, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusSent, reloaded.Status)

	reloaded, err = repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusDraft, reloaded.Status)
}

func TestQuoteRepository_AddPayment(t *testing.T) {
	db := setupQuoteTestDB(t)
	repo := repository.NewQuoteRepository(db)

	agency := testutil.CreateTestAgency(t, db, "Payment Agency")
	contact := testutil.CreateTestContact(t, db, agency.ID, "Mia", "Strand")
	ctx := testutil.AgencyContext(agency.ID)

	quote := createTestQuote(t, db, agency.ID, contact.ID, "Paid trip", domain.QuoteStatusAccepted)
	require.NoError(t, db.Model(quote).Updates(map[string]interface{}{
		"total_cost":        10000,
		"remaining_balance": 10000,
	}).Error)

	require.NoError(t, repo.AddPayment(ctx, quote.ID, 4000))

	reloaded, err := repo.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4000, reloaded.PaidAmount, 0.001)
	assert.InDelta(t, 6000, reloaded.RemainingBalance, 0.001)
}

func TestQuoteRepository_CountByStatus(t *testing.T) {
	db := setupQuoteTestDB(t)
	repo := repository.NewQuoteRepository(db)

	agency := testutil.CreateTestAgency(t, db, "Count Agency")
	contact := testutil.CreateTestContact(t, db, agency.ID, "Leo", "Dahl")
	ctx := testutil.AgencyContext(agency.ID)

	createTestQuote(t, db, agency.ID, contact.ID, "D1", domain.QuoteStatusDraft)
	createTestQuote(t, db, agency.ID, contact.ID, "S1", domain.QuoteStatusSent)
	createTestQuote(t, db, agency.ID, contact.ID, "S2", domain.QuoteStatusSent)
	createTestQuote(t, db, agency.ID, contact.ID, "B1", domain.QuoteStatusBooked)

	count, err := repo.CountByStatus(ctx, domain.QuoteStatusDraft, domain.QuoteStatusSent)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
