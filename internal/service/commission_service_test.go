package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wanderly/agency-api/internal/domain"
)

type fakeCommissionStore struct {
	commissions map[uuid.UUID]*domain.Commission
	listErr     error
	updates     []*domain.Commission
}

func (f *fakeCommissionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Commission, error) {
	c, ok := f.commissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeCommissionStore) ListByQuote(_ context.Context, quoteID uuid.UUID) ([]domain.Commission, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Commission
	for _, c := range f.commissions {
		if c.QuoteID == quoteID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCommissionStore) List(_ context.Context, _, _ int, _ *domain.CommissionStatus, _ string) ([]domain.Commission, int64, error) {
	return nil, 0, nil
}

func (f *fakeCommissionStore) Update(_ context.Context, commission *domain.Commission) error {
	f.updates = append(f.updates, commission)
	f.commissions[commission.ID] = commission
	return nil
}

type fakeActivityStore struct {
	created []*domain.Activity
}

func (f *fakeActivityStore) Create(_ context.Context, activity *domain.Activity) error {
	f.created = append(f.created, activity)
	return nil
}

func newCommission(quoteID uuid.UUID, status domain.CommissionStatus) *domain.Commission {
	return &domain.Commission{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		QuoteID:   quoteID,
		AgentID:   "agent-1",
		Amount:    500,
		Rate:      10,
		Status:    status,
	}
}

func TestApplyClawback_StatusFilter(t *testing.T) {
	quoteID := uuid.New()

	// One commission per status; only pending, paid, and released represent
	// money that was or will be paid out, so only those transition.
	byStatus := map[domain.CommissionStatus]*domain.Commission{}
	store := &fakeCommissionStore{commissions: map[uuid.UUID]*domain.Commission{}}
	for _, status := range []domain.CommissionStatus{
		domain.CommissionPending,
		domain.CommissionApproved,
		domain.CommissionPaid,
		domain.CommissionReleased,
		domain.CommissionDisputed,
		domain.CommissionClawedBack,
	} {
		c := newCommission(quoteID, status)
		byStatus[status] = c
		store.commissions[c.ID] = c
	}

	svc := &CommissionService{
		commissionRepo: store,
		activityRepo:   &fakeActivityStore{},
		logger:         zap.NewNop(),
	}
	svc.ApplyClawback(context.Background(), quoteID, 150)

	statusOf := func(status domain.CommissionStatus) domain.CommissionStatus {
		return store.commissions[byStatus[status].ID].Status
	}
	assert.Equal(t, domain.CommissionClawedBack, statusOf(domain.CommissionPending))
	assert.Equal(t, domain.CommissionClawedBack, statusOf(domain.CommissionPaid))
	assert.Equal(t, domain.CommissionClawedBack, statusOf(domain.CommissionReleased))

	// Regression guard: approved and disputed rows stay untouched
	assert.Equal(t, domain.CommissionApproved, statusOf(domain.CommissionApproved))
	assert.Equal(t, domain.CommissionDisputed, statusOf(domain.CommissionDisputed))

	assert.Len(t, store.updates, 3)
	for _, updated := range store.updates {
		assert.NotNil(t, updated.ClawedBackAt)
	}
}

func TestApplyClawback_SwallowsFetchFailure(t *testing.T) {
	store := &fakeCommissionStore{
		commissions: map[uuid.UUID]*domain.Commission{},
		listErr:     gorm.ErrInvalidDB,
	}
	svc := &CommissionService{
		commissionRepo: store,
		activityRepo:   &fakeActivityStore{},
		logger:         zap.NewNop(),
	}

	// Must not panic or write anything; the refund is already committed
	svc.ApplyClawback(context.Background(), uuid.New(), 100)
	assert.Empty(t, store.updates)
}

func TestApplyClawback_IgnoresOtherQuotes(t *testing.T) {
	quoteID := uuid.New()
	otherQuote := uuid.New()

	mine := newCommission(quoteID, domain.CommissionPaid)
	other := newCommission(otherQuote, domain.CommissionPaid)
	store := &fakeCommissionStore{commissions: map[uuid.UUID]*domain.Commission{
		mine.ID:  mine,
		other.ID: other,
	}}

	svc := &CommissionService{
		commissionRepo: store,
		activityRepo:   &fakeActivityStore{},
		logger:         zap.NewNop(),
	}
	svc.ApplyClawback(context.Background(), quoteID, 50)

	assert.Equal(t, domain.CommissionClawedBack, store.commissions[mine.ID].Status)
	assert.Equal(t, domain.CommissionPaid, store.commissions[other.ID].Status)
}

func TestCommissionTransitions(t *testing.T) {
	quoteID := uuid.New()

	tests := []struct {
		name    string
		from    domain.CommissionStatus
		action  string
		wantErr error
		want    domain.CommissionStatus
	}{
		{"approve pending", domain.CommissionPending, "approve", nil, domain.CommissionApproved},
		{"approve paid fails", domain.CommissionPaid, "approve", ErrInvalidStatusTransition, domain.CommissionPaid},
		{"pay approved", domain.CommissionApproved, "pay", nil, domain.CommissionPaid},
		{"pay pending fails", domain.CommissionPending, "pay", ErrInvalidStatusTransition, domain.CommissionPending},
		{"dispute paid", domain.CommissionPaid, "dispute", nil, domain.CommissionDisputed},
		{"dispute clawed back fails", domain.CommissionClawedBack, "dispute", ErrInvalidStatusTransition, domain.CommissionClawedBack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCommission(quoteID, tt.from)
			store := &fakeCommissionStore{commissions: map[uuid.UUID]*domain.Commission{c.ID: c}}
			svc := &CommissionService{
				commissionRepo: store,
				activityRepo:   &fakeActivityStore{},
				logger:         zap.NewNop(),
			}

			var err error
			switch tt.action {
			case "approve":
				_, err = svc.Approve(context.Background(), c.ID, "")
			case "pay":
				_, err = svc.MarkPaid(context.Background(), c.ID, "")
			case "dispute":
				_, err = svc.Dispute(context.Background(), c.ID, "")
			}

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, c.Status)
		})
	}
}
