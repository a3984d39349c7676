package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/openfooty/schedsync/internal/domain/schedule"
	"github.com/openfooty/schedsync/internal/usecase"
)

// PostgresStore keeps each partition of one named store as a single JSONB
// payload row. One run is one transaction: either all four partitions move to
// the new state or none do.
type PostgresStore struct {
	db   *sqlx.DB
	name string
}

func NewPostgresStore(db *sqlx.DB, name string) *PostgresStore {
	return &PostgresStore{db: db, name: name}
}

// EnsureSchema creates the backing table. Call once at startup.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS schedule_store_partitions (
	store_name TEXT        NOT NULL,
	partition  TEXT        NOT NULL,
	columns    JSONB       NOT NULL DEFAULT '[]',
	payload    JSONB       NOT NULL DEFAULT '[]',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (store_name, partition)
)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schedule store schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM schedule_store_partitions WHERE store_name = $1)`

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, s.name); err != nil {
		return false, fmt.Errorf("check store %s: %w", s.name, err)
	}
	return exists, nil
}

func (s *PostgresStore) ReadSequence(ctx context.Context) ([]schedule.SequenceEntry, error) {
	var out []schedule.SequenceEntry
	if err := s.readPartition(ctx, schedule.PartitionSequence, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) ReadSchedule(ctx context.Context) ([]schedule.Record, error) {
	var out []schedule.Record
	if err := s.readPartition(ctx, schedule.PartitionSchedule, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) readPartition(ctx context.Context, partition string, out any) error {
	const query = `SELECT payload FROM schedule_store_partitions WHERE store_name = $1 AND partition = $2`

	var payload []byte
	if err := s.db.GetContext(ctx, &payload, query, s.name, partition); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: store %s partition %s", usecase.ErrNotFound, s.name, partition)
		}
		return fmt.Errorf("read store %s partition %s: %w", s.name, partition, err)
	}

	if err := sonic.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode store %s partition %s: %v", usecase.ErrStoreCorrupt, s.name, partition, err)
	}
	return nil
}

func (s *PostgresStore) WriteRun(ctx context.Context, out schedule.RunOutput) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store write: %w", err)
	}
	defer tx.Rollback()

	parts := []struct {
		name    string
		columns []string
		rows    any
	}{
		{schedule.PartitionSequence, schedule.SequenceColumns, emptyIfNil(out.Sequence)},
		{schedule.PartitionSchedule, schedule.ScheduleColumns, emptyIfNil(out.Schedule)},
		{schedule.PartitionUpdateInfo, nil, emptyIfNil(out.UpdateInfo)},
		{schedule.PartitionSummary, nil, emptyIfNil(out.Summary)},
	}
	for _, part := range parts {
		if err := upsertPartition(ctx, tx, s.name, part.name, part.columns, part.rows); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit store write: %w", err)
	}
	return nil
}

func upsertPartition(ctx context.Context, tx *sqlx.Tx, storeName, partition string, columns []string, rows any) error {
	const query = `
INSERT INTO schedule_store_partitions (store_name, partition, columns, payload, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (store_name, partition)
DO UPDATE SET columns = EXCLUDED.columns, payload = EXCLUDED.payload, updated_at = now()`

	if columns == nil {
		columns = []string{}
	}
	columnsJSON, err := sonic.Marshal(columns)
	if err != nil {
		return fmt.Errorf("encode store %s partition %s columns: %w", storeName, partition, err)
	}
	payload, err := sonic.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode store %s partition %s: %w", storeName, partition, err)
	}

	if _, err := tx.ExecContext(ctx, query, storeName, partition, columnsJSON, payload); err != nil {
		return fmt.Errorf("write store %s partition %s: %w", storeName, partition, err)
	}
	return nil
}

func emptyIfNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
