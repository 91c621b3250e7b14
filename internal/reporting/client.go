package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/wanderly/agency-api/internal/config"
	"go.uber.org/zap"
)

// Client provides read-only access to the finance ledger warehouse (MS SQL
// Server). The warehouse is owned by the finance team; this service only
// queries it for dashboard figures and never writes.
type Client struct {
	db      *sql.DB
	cfg     *config.ReportingConfig
	logger  *zap.Logger
	enabled bool
}

// NewClient creates a warehouse client. Returns a disabled client (not an
// error) when reporting is turned off, so callers can keep a single code
// path.
func NewClient(cfg *config.ReportingConfig, logger *zap.Logger) (*Client, error) {
	if !cfg.Enabled {
		logger.Info("Reporting warehouse disabled")
		return &Client{cfg: cfg, logger: logger, enabled: false}, nil
	}

	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		return nil, fmt.Errorf("reporting warehouse enabled but credentials are incomplete")
	}

	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build warehouse connection string: %w", err)
	}

	var db *sql.DB
	maxRetries := 3
	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err = sql.Open("sqlserver", connStr)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = db.PingContext(ctx)
			cancel()
			if err == nil {
				break
			}
			db.Close()
		}

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * 2 * time.Second
			logger.Warn("Warehouse connection failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to reporting warehouse after %d attempts: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	logger.Info("Reporting warehouse connected",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return &Client{db: db, cfg: cfg, logger: logger, enabled: true}, nil
}

// buildConnectionString assembles a sqlserver URL from the host:port/database
// form the vault stores
func buildConnectionString(cfg *config.ReportingConfig) (string, error) {
	parts := strings.SplitN(cfg.URL, "/", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("reporting URL must be host:port/database, got %q", cfg.URL)
	}

	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   parts[0],
	}
	q := url.Values{}
	q.Set("database", parts[1])
	q.Set("encrypt", "true")
	q.Set("app name", "wanderly-agency-api")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// IsEnabled reports whether warehouse queries are available
func (c *Client) IsEnabled() bool {
	return c.enabled && c.db != nil
}

// Close closes the warehouse connection
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// HealthCheck pings the warehouse and returns pool statistics
func (c *Client) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	if !c.IsEnabled() {
		return map[string]interface{}{"status": "disabled"}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("warehouse ping failed: %w", err)
	}

	stats := c.db.Stats()
	return map[string]interface{}{
		"status":           "healthy",
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
	}, nil
}

// RecognizedRevenue returns the finance ledger's recognized revenue for an
// agency over the given period. The ledger lags bookings by a day, so
// figures can differ from the operational totals.
func (c *Client) RecognizedRevenue(ctx context.Context, agencyID uuid.UUID, from, to time.Time) (float64, error) {
	if !c.IsEnabled() {
		return 0, fmt.Errorf("reporting warehouse not enabled")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeoutDuration())
	defer cancel()

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger.revenue_entries
		WHERE agency_id = @p1
		  AND entry_date >= @p2
		  AND entry_date < @p3
		  AND entry_type = 'recognized'`

	var total float64
	if err := c.db.QueryRowContext(ctx, query, agencyID.String(), from, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("revenue query failed: %w", err)
	}

	return total, nil
}

// OutstandingReceivables returns the ledger's unpaid receivables balance for
// an agency
func (c *Client) OutstandingReceivables(ctx context.Context, agencyID uuid.UUID) (float64, error) {
	if !c.IsEnabled() {
		return 0, fmt.Errorf("reporting warehouse not enabled")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeoutDuration())
	defer cancel()

	query := `
		SELECT COALESCE(SUM(balance), 0)
		FROM ledger.receivables
		WHERE agency_id = @p1 AND status = 'open'`

	var total float64
	if err := c.db.QueryRowContext(ctx, query, agencyID.String()).Scan(&total); err != nil {
		return 0, fmt.Errorf("receivables query failed: %w", err)
	}

	return total, nil
}
