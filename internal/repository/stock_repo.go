package repository

import (
	"context"

	"fixflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockEntryRepository persists the per-(branch, variant) inventory rows.
// Quantity mutations always go FindForUpdateTx → UpdateQuantitiesTx inside
// one transaction; the FOR UPDATE lock is what makes read-then-write safe
// under concurrent requests.
type StockEntryRepository interface {
	Find(ctx context.Context, branchID, variantID uuid.UUID) (*model.StockEntry, error)
	// FindForUpdateTx locks the row (SELECT ... FOR UPDATE) for the duration
	// of tx. Returns gorm.ErrRecordNotFound when the pair has no entry yet.
	FindForUpdateTx(tx *gorm.DB, branchID, variantID uuid.UUID) (*model.StockEntry, error)
	CreateTx(tx *gorm.DB, e *model.StockEntry) error
	UpdateQuantitiesTx(tx *gorm.DB, id uuid.UUID, onHand, reserved int) error
	ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]model.StockEntry, int64, error)
	// ListBelowMinimum returns entries whose on-hand quantity is at or below
	// their configured minimum threshold.
	ListBelowMinimum(ctx context.Context, branchID uuid.UUID) ([]model.StockEntry, error)
	DB() *gorm.DB
}

type stockEntryRepo struct{ db *gorm.DB }

func NewStockEntryRepository(db *gorm.DB) StockEntryRepository { return &stockEntryRepo{db: db} }

func (r *stockEntryRepo) DB() *gorm.DB { return r.db }

func (r *stockEntryRepo) Find(ctx context.Context, branchID, variantID uuid.UUID) (*model.StockEntry, error) {
	var e model.StockEntry
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND variant_id = ?", branchID, variantID).
		First(&e).Error
	return &e, err
}

func (r *stockEntryRepo) FindForUpdateTx(tx *gorm.DB, branchID, variantID uuid.UUID) (*model.StockEntry, error) {
	var e model.StockEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND variant_id = ?", branchID, variantID).
		First(&e).Error
	return &e, err
}

func (r *stockEntryRepo) CreateTx(tx *gorm.DB, e *model.StockEntry) error {
	return tx.Create(e).Error
}

func (r *stockEntryRepo) UpdateQuantitiesTx(tx *gorm.DB, id uuid.UUID, onHand, reserved int) error {
	return tx.Model(&model.StockEntry{}).Where("id = ?", id).
		Updates(map[string]interface{}{"on_hand": onHand, "reserved": reserved}).Error
}

func (r *stockEntryRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, page, limit int) ([]model.StockEntry, int64, error) {
	var entries []model.StockEntry
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StockEntry{}).Where("branch_id = ?", branchID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Preload("Variant").
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *stockEntryRepo) ListBelowMinimum(ctx context.Context, branchID uuid.UUID) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	err := r.db.WithContext(ctx).
		Preload("Variant").
		Where("branch_id = ? AND min_qty > 0 AND on_hand <= min_qty", branchID).
		Find(&entries).Error
	return entries, err
}
