package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/liquidvex/market-core/internal/config"
)

// Repository provides database operations for the audit store
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new database repository
func NewRepository(cfg config.DatabaseConfig) (*Repository, error) {
	db, err := sqlx.Connect("pgx", normalizeDSN(cfg.ConnectionString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	maxOpen, maxIdle, maxLifetime := poolSettings(cfg)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	db.SetConnMaxIdleTime(10 * time.Minute)

	return &Repository{db: db}, nil
}

// normalizeDSN ensures simple protocol to avoid server-side prepared
// statements
func normalizeDSN(dsn string) string {
	if dsn == "" || strings.Contains(dsn, "prefer_simple_protocol=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "prefer_simple_protocol=true"
}

// poolSettings maps the configured pool limits, falling back to defaults
// for unset fields.
func poolSettings(cfg config.DatabaseConfig) (maxOpen, maxIdle int, maxLifetime time.Duration) {
	maxOpen = cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle = cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	maxLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Minute
	if maxLifetime <= 0 {
		maxLifetime = 5 * time.Minute
	}
	return maxOpen, maxIdle, maxLifetime
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Ping verifies the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context, migrationSQL string) error {
	_, err := r.db.ExecContext(ctx, migrationSQL)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// === Order Audit Operations ===

// InsertOrderAudit records a validation outcome
func (r *Repository) InsertOrderAudit(ctx context.Context, audit *OrderAudit) error {
	query := `
		INSERT INTO order_audits (
			id, coin, side, order_type, size, price, reduce_only, is_valid, reason
		) VALUES (
			:id, :coin, :side, :order_type, :size, :price, :reduce_only, :is_valid, :reason
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, audit); err != nil {
		return fmt.Errorf("failed to insert order audit: %w", err)
	}
	return nil
}

// ListOrderAudits returns the most recent validation outcomes for a coin
func (r *Repository) ListOrderAudits(ctx context.Context, coin string, limit int) ([]OrderAudit, error) {
	query := `
		SELECT id, coin, side, order_type, size, price, reduce_only, is_valid, reason, created_at
		FROM order_audits
		WHERE coin = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var audits []OrderAudit
	if err := r.db.SelectContext(ctx, &audits, query, coin, limit); err != nil {
		return nil, fmt.Errorf("failed to list order audits: %w", err)
	}
	return audits, nil
}

// === Risk Snapshot Operations ===

// InsertRiskSnapshot records a liquidation-risk assessment
func (r *Repository) InsertRiskSnapshot(ctx context.Context, snapshot *RiskSnapshot) error {
	query := `
		INSERT INTO risk_snapshots (
			id, coin, side, tier, distance_percent, estimated_loss, mark_price
		) VALUES (
			:id, :coin, :side, :tier, :distance_percent, :estimated_loss, :mark_price
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, snapshot); err != nil {
		return fmt.Errorf("failed to insert risk snapshot: %w", err)
	}
	return nil
}

// ListRiskSnapshots returns the most recent assessments for a coin
func (r *Repository) ListRiskSnapshots(ctx context.Context, coin string, limit int) ([]RiskSnapshot, error) {
	query := `
		SELECT id, coin, side, tier, distance_percent, estimated_loss, mark_price, created_at
		FROM risk_snapshots
		WHERE coin = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var snapshots []RiskSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query, coin, limit); err != nil {
		return nil, fmt.Errorf("failed to list risk snapshots: %w", err)
	}
	return snapshots, nil
}
