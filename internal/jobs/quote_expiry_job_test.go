package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeQuoteExpirer struct {
	calls   int
	lastNow time.Time
	expired int64
	err     error
}

func (f *fakeQuoteExpirer) ExpireSent(ctx context.Context, now time.Time) (int64, error) {
	f.calls++
	f.lastNow = now
	return f.expired, f.err
}

func TestQuoteExpiryJob_Run(t *testing.T) {
	expirer := &fakeQuoteExpirer{expired: 3}
	job := NewQuoteExpiryJob(expirer, zap.NewNop(), time.Minute)

	job.Run()

	assert.Equal(t, 1, expirer.calls)
	assert.Equal(t, time.UTC, expirer.lastNow.Location())
}

func TestQuoteExpiryJob_RunSwallowsError(t *testing.T) {
	expirer := &fakeQuoteExpirer{err: errors.New("connection refused")}
	job := NewQuoteExpiryJob(expirer, zap.NewNop(), time.Minute)

	// Must not panic; the next cron tick retries.
	job.Run()

	assert.Equal(t, 1, expirer.calls)
}

func TestScheduler_AddJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	err := s.AddJob("sweep", "0 0 6 * * *", func() {})
	require.NoError(t, err)

	// Duplicate names are rejected
	err = s.AddJob("sweep", "0 0 7 * * *", func() {})
	assert.Error(t, err)

	assert.Equal(t, []string{"sweep"}, s.JobNames())

	require.NoError(t, s.RemoveJob("sweep"))
	assert.Empty(t, s.JobNames())
	assert.Error(t, s.RemoveJob("sweep"))
}

func TestScheduler_AddJobInvalidExpression(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	err := s.AddJob("bad", "not a cron expr", func() {})
	assert.Error(t, err)
}
