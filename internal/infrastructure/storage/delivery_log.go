package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"CourseWatcher/internal/domain"
	"CourseWatcher/internal/ports"
)

const deliveredTable = "delivered_items"

const createDeliveredTable = `CREATE TABLE IF NOT EXISTS delivered_items (
    id           BIGSERIAL PRIMARY KEY,
    course_id    TEXT        NOT NULL,
    delivery_key TEXT        NOT NULL UNIQUE,
    section      TEXT        NOT NULL,
    category     TEXT        NOT NULL,
    title        TEXT        NOT NULL DEFAULT '',
    url          TEXT        NOT NULL DEFAULT '',
    notice       TEXT        NOT NULL DEFAULT '',
    delivered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresDeliveryLog records announced items in Postgres.
type PostgresDeliveryLog struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DeliveryLog = (*PostgresDeliveryLog)(nil)

// NewPostgresDeliveryLog wires a sql.DB implementation.
func NewPostgresDeliveryLog(db *sql.DB) *PostgresDeliveryLog {
	return &PostgresDeliveryLog{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// OpenDeliveryLog connects to dsn, verifies the connection and ensures the schema.
func OpenDeliveryLog(ctx context.Context, dsn string) (*PostgresDeliveryLog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log := NewPostgresDeliveryLog(db)
	if err := log.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return log, nil
}

// EnsureSchema creates the delivered_items table when missing.
func (r *PostgresDeliveryLog) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, createDeliveredTable); err != nil {
		return fmt.Errorf("create %s: %w", deliveredTable, err)
	}
	return nil
}

// AlreadyDelivered returns the subset of keys that were delivered for the course.
func (r *PostgresDeliveryLog) AlreadyDelivered(ctx context.Context, courseID string, keys []string) (map[string]bool, error) {
	if r.db == nil || len(keys) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := r.builder.
		Select("delivery_key").
		From(deliveredTable).
		Where(sq.Eq{"course_id": courseID, "delivery_key": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delivered query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query delivered: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan key: %w", err)
		}
		result[key] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// RecordDelivered stores the notification; repeated keys are ignored.
func (r *PostgresDeliveryLog) RecordDelivered(ctx context.Context, n domain.Notification, key string) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert(deliveredTable).
		Columns("course_id", "delivery_key", "section", "category", "title", "url", "notice").
		Values(n.CourseID, key, n.Section, string(n.Category), n.Item.Title, n.Item.URL, n.Item.Notice).
		Suffix("ON CONFLICT (delivery_key) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert delivered: %w", err)
	}

	return nil
}

// Close releases the database handle.
func (r *PostgresDeliveryLog) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
