package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// RecordRepository is the local key-value store backing the settings and
// progress records.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *RecordRepository) Get(ctx context.Context, key string) (string, int64, error) {
	var value string
	var revision int64
	err := r.db.QueryRowContext(
		ctx,
		`SELECT value, revision FROM kv_records WHERE key = ?`,
		key,
	).Scan(&value, &revision)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", 0, ErrNotFound
		}
		return "", 0, fmt.Errorf("get record %s: %w", key, err)
	}
	return value, revision, nil
}

func (r *RecordRepository) Put(ctx context.Context, key, value string, revision int64) error {
	return r.put(ctx, r.db, key, value, revision)
}

func (r *RecordRepository) PutTx(ctx context.Context, tx *sql.Tx, key, value string, revision int64) error {
	return r.put(ctx, tx, key, value, revision)
}

// put never lets an older revision overwrite a newer one.
func (r *RecordRepository) put(ctx context.Context, exec execer, key, value string, revision int64) error {
	_, err := exec.ExecContext(
		ctx,
		`INSERT INTO kv_records (key, value, revision, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		     value = excluded.value,
		     revision = excluded.revision,
		     updated_at = excluded.updated_at
		 WHERE excluded.revision >= kv_records.revision`,
		key,
		value,
		revision,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put record %s: %w", key, err)
	}
	return nil
}
