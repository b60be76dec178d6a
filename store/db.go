package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quotescrapper/stock"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	ticker     TEXT NOT NULL,
	fetched_at TEXT NOT NULL,
	payload    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_ticker ON snapshots(ticker, id);
`

// ErrNotFound is returned when a ticker has no stored snapshot.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one stored extraction.
type Snapshot struct {
	ID        int64             `json:"id" yaml:"id"`
	Ticker    string            `json:"ticker" yaml:"ticker"`
	FetchedAt time.Time         `json:"fetchedAt" yaml:"fetchedAt"`
	Data      *stock.TickerData `json:"data" yaml:"data"`
}

// DB keeps ticker snapshots in SQLite.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string, logger *zap.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// each connection would get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{DB: sqlDB, logger: logger}, nil
}

// Save stores data and returns the new snapshot id.
func (db *DB) Save(ctx context.Context, data *stock.TickerData) (int64, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	res, err := db.ExecContext(ctx,
		"INSERT INTO snapshots (ticker, fetched_at, payload) VALUES (?, ?, ?)",
		data.Ticker, data.FetchedAt.UTC().Format(time.RFC3339Nano), string(payload),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot id: %w", err)
	}
	db.logger.Info("saved snapshot", zap.String("ticker", data.Ticker), zap.Int64("id", id))
	return id, nil
}

// Latest returns the most recent snapshot of ticker.
func (db *DB) Latest(ctx context.Context, ticker string) (*Snapshot, error) {
	snapshots, err := db.History(ctx, ticker, 1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
	}
	return &snapshots[0], nil
}

// History returns up to limit snapshots of ticker, newest first.
func (db *DB) History(ctx context.Context, ticker string, limit int) ([]Snapshot, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, ticker, fetched_at, payload FROM snapshots WHERE ticker = ? ORDER BY id DESC LIMIT ?",
		ticker, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var (
			s         Snapshot
			fetchedAt string
			payload   string
		)
		if err := rows.Scan(&s.ID, &s.Ticker, &fetchedAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if s.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
			return nil, fmt.Errorf("bad fetched_at in snapshot %d: %w", s.ID, err)
		}
		s.Data = &stock.TickerData{}
		if err := json.Unmarshal([]byte(payload), s.Data); err != nil {
			return nil, fmt.Errorf("bad payload in snapshot %d: %w", s.ID, err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}
	return snapshots, nil
}
