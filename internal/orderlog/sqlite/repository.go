// Package sqlite provides a SQLite-backed implementation of
// orderlog.Repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the request handlers write while an operator (or a future status
// endpoint) may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pcastano/order-intake/internal/orderlog"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps the Docker (Alpine) build simple.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only:
// each row is an immutable order lifecycle event.
const schema = `
CREATE TABLE IF NOT EXISTS order_events (
    -- Surrogate primary key, auto-incremented by SQLite.
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Business identifier. Not UNIQUE: one row per transition.
    order_id    TEXT NOT NULL,

    -- Transition recorded by this row: CREATED or CANCELLED.
    event       TEXT NOT NULL,

    -- Order status after the transition.
    status      TEXT NOT NULL,

    -- Cancellation reason, empty otherwise.
    reason      TEXT NOT NULL DEFAULT '',

    -- W3C trace_id (32 hex chars) from the active OTel span.
    trace_id    TEXT NOT NULL DEFAULT '',

    -- W3C span_id (16 hex chars).
    span_id     TEXT NOT NULL DEFAULT '',

    -- Wall-clock timestamp (RFC3339 stored as TEXT, SQLite idiom).
    occurred_at TEXT NOT NULL
);

-- The common query: all events for order X in order.
CREATE INDEX IF NOT EXISTS idx_order_events_order_id ON order_events(order_id, occurred_at);

-- The observability query: find the order for trace Y.
CREATE INDEX IF NOT EXISTS idx_order_events_trace_id ON order_events(trace_id);
`

// Repository is the SQLite implementation of orderlog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	repo, err := sqlite.Open("./data/orders.db")
func Open(path string) (*Repository, error) {
	// WAL enables concurrent readers. busy_timeout waits for locks instead
	// of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// "sqlite", not "sqlite3", for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new audit entry. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *orderlog.Entry) error {
	const q = `
		INSERT INTO order_events
			(order_id, event, status, reason, trace_id, span_id, occurred_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.OrderID,
		string(entry.Event),
		entry.Status,
		entry.Reason,
		entry.TraceID,
		entry.SpanID,
		entry.OccurredAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save order event for %q: %w", entry.OrderID, err)
	}
	return nil
}

// History returns every recorded event for an order, oldest first.
func (r *Repository) History(ctx context.Context, orderID string) ([]*orderlog.Entry, error) {
	const q = `
		SELECT order_id, event, status, reason, trace_id, span_id, occurred_at
		FROM   order_events
		WHERE  order_id = ?
		ORDER  BY occurred_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", orderID, err)
	}
	defer rows.Close()

	var entries []*orderlog.Entry
	for rows.Next() {
		var entry orderlog.Entry
		var occurredAt string
		if err := rows.Scan(
			&entry.OrderID,
			&entry.Event,
			&entry.Status,
			&entry.Reason,
			&entry.TraceID,
			&entry.SpanID,
			&occurredAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan order event: %w", err)
		}
		entry.OccurredAt, err = parseRFC3339(occurredAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}
