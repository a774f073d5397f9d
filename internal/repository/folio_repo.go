package repository

import (
	"context"
	"errors"

	"fixflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FolioSequenceRepository owns the per-(prefix, branch, period) counters.
// Values only ever grow; rows are never deleted.
type FolioSequenceRepository interface {
	// NextValueTx atomically increments and returns the counter for the key,
	// creating it at 1 when absent. Must be called inside a transaction.
	NextValueTx(ctx context.Context, tx *gorm.DB, prefix string, branchID uuid.UUID, period string) (int, error)
	// CurrentValue returns the last persisted value without mutating it,
	// or 0 when the key has never been used.
	CurrentValue(ctx context.Context, prefix string, branchID uuid.UUID, period string) (int, error)
	DB() *gorm.DB
}

type folioSequenceRepo struct{ db *gorm.DB }

func NewFolioSequenceRepository(db *gorm.DB) FolioSequenceRepository {
	return &folioSequenceRepo{db: db}
}

func (r *folioSequenceRepo) DB() *gorm.DB { return r.db }

func (r *folioSequenceRepo) NextValueTx(ctx context.Context, tx *gorm.DB, prefix string, branchID uuid.UUID, period string) (int, error) {
	// Single atomic upsert: the row-level write lock taken by ON CONFLICT DO
	// UPDATE serializes concurrent callers on the same key, so issued values
	// are gap-free and strictly increasing without a prior SELECT.
	var value int
	err := tx.WithContext(ctx).Raw(`
		INSERT INTO folio_sequences (id, prefix, branch_id, period, value, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, 1, NOW(), NOW())
		ON CONFLICT (prefix, branch_id, period)
		DO UPDATE SET value = folio_sequences.value + 1, updated_at = NOW()
		RETURNING value`,
		prefix, branchID, period,
	).Scan(&value).Error
	return value, err
}

func (r *folioSequenceRepo) CurrentValue(ctx context.Context, prefix string, branchID uuid.UUID, period string) (int, error) {
	var seq model.FolioSequence
	err := r.db.WithContext(ctx).
		Where("prefix = ? AND branch_id = ? AND period = ?", prefix, branchID, period).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.Value, nil
}
