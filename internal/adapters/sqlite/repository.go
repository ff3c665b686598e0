package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"signalBot/internal/domain"
	"signalBot/internal/ports"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.SignalRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
	now    func() time.Time
}

var _ ports.SignalRepository = (*Repository)(nil)

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
	Now    func() time.Time // Clock for created_at; time.Now when nil
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/signals.db" // Default path
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection serialises writers; SQLite allows only one at a time anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger, now: now}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS signals (
		id TEXT PRIMARY KEY,
		pair TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		take_profit_1 REAL NOT NULL,
		take_profit_2 REAL NOT NULL,
		stop_loss REAL NOT NULL,
		strength TEXT NOT NULL,
		analysis TEXT NOT NULL,
		signal_time TIMESTAMP NOT NULL,
		trend_cross INTEGER NOT NULL DEFAULT 0,
		momentum INTEGER NOT NULL DEFAULT 0,
		order_block INTEGER NOT NULL DEFAULT 0,
		fair_value_gap INTEGER NOT NULL DEFAULT 0,
		liquidity_sweep INTEGER NOT NULL DEFAULT 0,
		report TEXT NOT NULL DEFAULT '',
		delivered INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_signals_pair_created_at ON signals (pair, created_at);
	CREATE INDEX IF NOT EXISTS idx_signals_created_at ON signals (created_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Save persists a signal with its rendered report and returns the new record ID.
func (r *Repository) Save(ctx context.Context, sig *domain.Signal, report string, delivered bool) (string, error) {
	if sig == nil {
		return "", fmt.Errorf("cannot save nil signal: %w", ports.ErrInvalidRequest)
	}

	const query = `
	INSERT INTO signals (id, pair, direction, entry_price, take_profit_1, take_profit_2, stop_loss,
	                     strength, analysis, signal_time, trend_cross, momentum, order_block,
	                     fair_value_gap, liquidity_sweep, report, delivered, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id := uuid.NewString()
	ev := sig.Evidence
	_, err := r.db.ExecContext(ctx, query,
		id, sig.Pair, string(sig.Direction), sig.EntryPrice, sig.TakeProfit1, sig.TakeProfit2, sig.StopLoss,
		string(sig.Strength), sig.Analysis, sig.Timestamp.UTC(), ev.TrendCross, ev.Momentum, ev.OrderBlock,
		ev.FairValueGap, ev.LiquiditySweep, report, delivered, r.now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert signal for pair %s: %w: %w", sig.Pair, ports.ErrQueryFailed, err)
	}

	r.logger.Debug(ctx, "Signal saved", map[string]interface{}{"signalID": id, "pair": sig.Pair, "direction": sig.Direction})
	return id, nil
}

const selectColumns = `
	SELECT id, pair, direction, entry_price, take_profit_1, take_profit_2, stop_loss,
	       strength, analysis, signal_time, trend_cross, momentum, order_block,
	       fair_value_gap, liquidity_sweep, report, delivered, created_at
	FROM signals`

// FindRecent retrieves the most recent signals across all pairs, newest first.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]*ports.SignalRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d: %w", limit, ports.ErrInvalidRequest)
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent signals: %w: %w", ports.ErrQueryFailed, err)
	}
	return collect(rows)
}

// FindLatestByPair retrieves the most recent signal for a pair, if any.
func (r *Repository) FindLatestByPair(ctx context.Context, pair string) (*ports.SignalRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE pair = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, pair)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "No signal found for pair", map[string]interface{}{"pair": pair})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query latest signal for pair %s: %w: %w", pair, ports.ErrQueryFailed, err)
	}
	return rec, nil
}

// FindSince retrieves all signals created at or after since, oldest first.
func (r *Repository) FindSince(ctx context.Context, since time.Time) ([]*ports.SignalRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE created_at >= ? ORDER BY created_at ASC, rowid ASC`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query signals since %s: %w: %w", since.Format(time.RFC3339), ports.ErrQueryFailed, err)
	}
	return collect(rows)
}

// CountSince counts signals created at or after since.
func (r *Repository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signals WHERE created_at >= ?`, since.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count signals since %s: %w: %w", since.Format(time.RFC3339), ports.ErrQueryFailed, err)
	}
	return count, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func collect(rows *sql.Rows) ([]*ports.SignalRecord, error) {
	defer rows.Close()

	records := make([]*ports.SignalRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal rows: %w", err)
	}
	return records, nil
}

// scanRecord scans a row into a ports.SignalRecord.
func scanRecord(s scanner) (*ports.SignalRecord, error) {
	sig := &domain.Signal{}
	rec := &ports.SignalRecord{Signal: sig}
	var direction, strength string
	err := s.Scan(
		&rec.ID, &sig.Pair, &direction, &sig.EntryPrice, &sig.TakeProfit1, &sig.TakeProfit2, &sig.StopLoss,
		&strength, &sig.Analysis, &sig.Timestamp, &sig.Evidence.TrendCross, &sig.Evidence.Momentum,
		&sig.Evidence.OrderBlock, &sig.Evidence.FairValueGap, &sig.Evidence.LiquiditySweep,
		&rec.Report, &rec.Delivered, &rec.CreatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	sig.Direction = domain.Direction(direction)
	sig.Strength = domain.Strength(strength)
	sig.Timestamp = sig.Timestamp.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}
