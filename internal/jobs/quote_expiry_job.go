package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// QuoteExpiryJobName is the name of the quote expiry job
const QuoteExpiryJobName = "quote_expiry"

// QuoteExpirer flips sent quotes whose validity date has passed to expired.
// Satisfied by the quote repository; kept as an interface so the job does
// not import the repository package.
type QuoteExpirer interface {
	ExpireSent(ctx context.Context, now time.Time) (int64, error)
}

// QuoteExpiryJob periodically expires sent quotes that were never accepted
// or rejected before their validity date.
type QuoteExpiryJob struct {
	quotes  QuoteExpirer
	logger  *zap.Logger
	timeout time.Duration
}

// NewQuoteExpiryJob creates a new quote expiry job. The timeout bounds a
// single sweep.
func NewQuoteExpiryJob(quotes QuoteExpirer, logger *zap.Logger, timeout time.Duration) *QuoteExpiryJob {
	return &QuoteExpiryJob{
		quotes:  quotes,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one expiry sweep. Called by the scheduler.
func (j *QuoteExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	expired, err := j.quotes.ExpireSent(ctx, start.UTC())
	if err != nil {
		j.logger.Error("quote expiry sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if expired > 0 {
		j.logger.Info("quote expiry sweep completed",
			zap.Int64("expired", expired),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterQuoteExpiryJob registers the quote expiry job with the scheduler.
// If runStartupSweep is true an immediate sweep runs in the background so
// quotes that expired while the service was down are caught without waiting
// for the next cron tick.
func RegisterQuoteExpiryJob(scheduler *Scheduler, quotes QuoteExpirer, logger *zap.Logger, cronExpr string, timeout time.Duration, runStartupSweep bool) error {
	job := NewQuoteExpiryJob(quotes, logger, timeout)

	if runStartupSweep {
		go job.Run()
	}

	return scheduler.AddJob(QuoteExpiryJobName, cronExpr, job.Run)
}
