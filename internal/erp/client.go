// Package erp provides read-only connectivity to the MS SQL Server mirror of
// the invoicing ERP. The bakery issues electronic invoices through the ERP;
// this package is used to confirm invoice statuses and pull billed totals
// for reporting.
package erp

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/horno-sanmarino/bakery-api/internal/config"
	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// Default retry configuration for connection attempts
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0

	// Default health check timeout
	defaultHealthCheckTimeout = 5 * time.Second
)

// invoiceTable is the mirror view of issued electronic invoices
const invoiceTable = "dbo.sm_invoice_mirror"

// Client provides read-only access to the ERP mirror.
// It manages connection pooling and provides methods for executing queries.
type Client struct {
	db           *sql.DB
	config       *config.ERPMirrorConfig
	logger       *zap.Logger
	queryTimeout time.Duration
}

// HealthStatus represents the health check result for the mirror connection
type HealthStatus struct {
	Status     string        `json:"status"`
	Latency    time.Duration `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	MaxOpen    int           `json:"max_open_connections"`
	Open       int           `json:"open_connections"`
	InUse      int           `json:"in_use"`
	Idle       int           `json:"idle"`
	WaitCount  int64         `json:"wait_count"`
	WaitTimeMs int64         `json:"wait_time_ms"`
}

// InvoiceRecord is one issued invoice as seen by the mirror
type InvoiceRecord struct {
	Reference string
	Status    string
	IssuedAt  time.Time
}

// BilledTotal is the ERP-side billed amount for one sales responsible
type BilledTotal struct {
	Responsible string
	Total       decimal.Decimal
}

// NewClient creates a new ERP mirror client with the given configuration.
// Returns nil if the mirror is not enabled or not configured.
// The client establishes a connection pool with retry logic for transient failures.
func NewClient(cfg *config.ERPMirrorConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("ERP mirror connection disabled")
		return nil, nil
	}

	// Validate required configuration
	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("ERP mirror enabled but missing credentials, skipping connection",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	logger.Info("Initializing ERP mirror connection",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.ConnMaxLifetime),
		zap.Int("query_timeout_seconds", cfg.QueryTimeout),
	)

	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	// Attempt connection with retry logic
	var db *sql.DB
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		logger.Info("Attempting ERP mirror connection",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", defaultMaxRetries),
		)

		db, err = sql.Open("sqlserver", connStr)
		if err != nil {
			logger.Warn("Failed to open ERP mirror connection",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		// Configure connection pool
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		// Test connection with ping
		ctx, cancel := context.WithTimeout(context.Background(), defaultHealthCheckTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.Warn("ERP mirror ping failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			_ = db.Close()
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		logger.Info("ERP mirror connection established successfully",
			zap.Int("attempts_taken", attempt),
		)

		return &Client{
			db:           db,
			config:       cfg,
			logger:       logger,
			queryTimeout: cfg.QueryTimeoutDuration(),
		}, nil
	}

	return nil, fmt.Errorf("failed to connect to ERP mirror after %d attempts: %w", defaultMaxRetries, err)
}

// buildConnectionString constructs a SQL Server connection string from the config.
// URL format expected: host:port/database or host:port (uses default database)
func buildConnectionString(cfg *config.ERPMirrorConfig) (string, error) {
	urlParts := strings.SplitN(cfg.URL, "/", 2)
	hostPort := urlParts[0]
	database := ""
	if len(urlParts) > 1 {
		database = urlParts[1]
	}

	hostParts := strings.SplitN(hostPort, ":", 2)
	host := hostParts[0]
	port := "1433" // Default SQL Server port
	if len(hostParts) > 1 {
		port = hostParts[1]
	}

	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}

	return u.String(), nil
}

// Close gracefully closes the mirror connection.
// Should be called during application shutdown.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	c.logger.Info("Closing ERP mirror connection")

	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close ERP mirror connection", zap.Error(err))
		return fmt.Errorf("failed to close ERP mirror connection: %w", err)
	}

	return nil
}

// IsEnabled returns true if the client is initialized and ready for queries.
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}

// HealthCheck performs a health check on the mirror connection.
// Returns detailed status including connection pool statistics.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if c == nil || c.db == nil {
		return &HealthStatus{
			Status: "disabled",
		}
	}

	start := time.Now()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
	}

	err := c.db.PingContext(ctx)
	latency := time.Since(start)

	stats := c.db.Stats()
	status := &HealthStatus{
		Latency:    latency,
		MaxOpen:    stats.MaxOpenConnections,
		Open:       stats.OpenConnections,
		InUse:      stats.InUse,
		Idle:       stats.Idle,
		WaitCount:  stats.WaitCount,
		WaitTimeMs: stats.WaitDuration.Milliseconds(),
	}

	if err != nil {
		c.logger.Warn("ERP mirror health check failed",
			zap.Error(err),
			zap.Duration("latency", latency),
		)
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else {
		status.Status = "healthy"
	}

	return status
}

// GetInvoiceStatuses looks up the issued invoices matching the given order
// references. References without a mirror row are simply absent from the
// result, meaning the ERP has not issued them yet.
func (c *Client) GetInvoiceStatuses(ctx context.Context, references []string) (map[string]InvoiceRecord, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("erp mirror client not initialized")
	}
	if len(references) == 0 {
		return map[string]InvoiceRecord{}, nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	placeholders := make([]string, len(references))
	args := make([]interface{}, len(references))
	for i, ref := range references {
		placeholders[i] = fmt.Sprintf("@p%d", i+1)
		args[i] = ref
	}

	query := fmt.Sprintf(
		"SELECT reference, status, issued_at FROM %s WHERE reference IN (%s)",
		invoiceTable, strings.Join(placeholders, ", "),
	)

	start := time.Now()
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		c.logger.Error("ERP mirror invoice query failed",
			zap.Error(err),
			zap.Int("references", len(references)),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, fmt.Errorf("invoice query failed: %w", err)
	}
	defer rows.Close()

	result := make(map[string]InvoiceRecord)
	for rows.Next() {
		var rec InvoiceRecord
		if err := rows.Scan(&rec.Reference, &rec.Status, &rec.IssuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		result[rec.Reference] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}

	c.logger.Debug("ERP mirror invoice query completed",
		zap.Int("requested", len(references)),
		zap.Int("found", len(result)),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// GetBilledTotals sums the ERP-side billed amounts per responsible within
// [from, to). Used to reconcile board sales figures against what was
// actually invoiced.
func (c *Client) GetBilledTotals(ctx context.Context, from, to time.Time) ([]BilledTotal, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("erp mirror client not initialized")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	query := fmt.Sprintf(
		"SELECT responsible, SUM(total) FROM %s WHERE issued_at >= @p1 AND issued_at < @p2 GROUP BY responsible",
		invoiceTable,
	)

	rows, err := c.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("billed totals query failed: %w", err)
	}
	defer rows.Close()

	var totals []BilledTotal
	for rows.Next() {
		var row BilledTotal
		var total string
		if err := rows.Scan(&row.Responsible, &total); err != nil {
			return nil, fmt.Errorf("failed to scan billed total: %w", err)
		}
		row.Total, err = decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("bad billed total %q: %w", total, err)
		}
		totals = append(totals, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating billed totals: %w", err)
	}

	return totals, nil
}
