package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"zenstream/internal/model"
)

const ProgressKey = "pixel_pomo_progress_v2"

type ProgressRepository struct {
	records *RecordRepository
	db      *sql.DB
}

type storedProgress struct {
	TotalMinutesFocused *int               `json:"totalMinutesFocused"`
	UnlockedItems       []model.RewardItem `json:"unlockedItems"`
}

func NewProgressRepository(db *sql.DB, records *RecordRepository) *ProgressRepository {
	return &ProgressRepository{db: db, records: records}
}

// LoadProgress returns the stored ledger. A missing record yields the default
// ledger with no error; an invalid one yields it together with ErrCorruptRecord.
func (r *ProgressRepository) LoadProgress(ctx context.Context) (model.Progress, error) {
	raw, revision, err := r.records.Get(ctx, ProgressKey)
	if errors.Is(err, ErrNotFound) {
		return model.DefaultProgress(), nil
	}
	if err != nil {
		return model.DefaultProgress(), err
	}

	progress, err := decodeProgress(raw)
	if err != nil {
		// Keep the stored revision so the replacement ledger can overwrite it.
		fallback := model.DefaultProgress()
		fallback.Revision = revision
		return fallback, err
	}
	progress.Revision = revision
	return progress, nil
}

func (r *ProgressRepository) SaveProgress(ctx context.Context, progress model.Progress) error {
	payload, err := encodeProgress(progress)
	if err != nil {
		return err
	}
	return r.records.Put(ctx, ProgressKey, payload, progress.Revision)
}

// RecordPurchase stores the new ledger and the receipt in one transaction.
func (r *ProgressRepository) RecordPurchase(ctx context.Context, progress model.Progress, purchase model.Purchase) error {
	payload, err := encodeProgress(progress)
	if err != nil {
		return err
	}

	tx, err := r.records.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.records.PutTx(ctx, tx, ProgressKey, payload, progress.Revision); err != nil {
		return err
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO purchases (id, item_id, cost, balance_after, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		purchase.ID,
		string(purchase.ItemID),
		purchase.Cost,
		purchase.BalanceAfter,
		formatTime(purchase.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purchase: %w", err)
	}
	return nil
}

func (r *ProgressRepository) ListPurchases(ctx context.Context) ([]model.Purchase, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, item_id, cost, balance_after, created_at
		 FROM purchases
		 ORDER BY created_at ASC, rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]model.Purchase, 0)
	for rows.Next() {
		var purchase model.Purchase
		var itemID string
		var createdAt string
		if err := rows.Scan(&purchase.ID, &itemID, &purchase.Cost, &purchase.BalanceAfter, &createdAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		parsedCreatedAt, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse purchase created_at: %w", err)
		}
		purchase.ItemID = model.RewardItem(itemID)
		purchase.CreatedAt = parsedCreatedAt
		purchases = append(purchases, purchase)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return purchases, nil
}

func encodeProgress(progress model.Progress) (string, error) {
	if progress.UnlockedItems == nil {
		progress.UnlockedItems = []model.RewardItem{}
	}
	payload, err := json.Marshal(progress)
	if err != nil {
		return "", fmt.Errorf("marshal progress: %w", err)
	}
	return string(payload), nil
}

func decodeProgress(raw string) (model.Progress, error) {
	var stored storedProgress
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return model.Progress{}, fmt.Errorf("%w: parse progress: %v", ErrCorruptRecord, err)
	}
	if stored.TotalMinutesFocused == nil {
		return model.Progress{}, fmt.Errorf("%w: progress has no totalMinutesFocused", ErrCorruptRecord)
	}
	if *stored.TotalMinutesFocused < 0 {
		return model.Progress{}, fmt.Errorf("%w: negative balance %d", ErrCorruptRecord, *stored.TotalMinutesFocused)
	}

	progress := model.Progress{
		TotalMinutesFocused: *stored.TotalMinutesFocused,
		UnlockedItems:       make([]model.RewardItem, 0, len(stored.UnlockedItems)),
	}
	for _, item := range stored.UnlockedItems {
		if _, ok := model.LookupCatalogEntry(item); !ok {
			return model.Progress{}, fmt.Errorf("%w: unknown item %q", ErrCorruptRecord, item)
		}
		if progress.Owns(item) {
			continue
		}
		progress.UnlockedItems = append(progress.UnlockedItems, item)
	}
	return progress, nil
}
