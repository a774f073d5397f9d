package model

import (
	"time"

	"github.com/google/uuid"
)

// StockEntry is the authoritative inventory position of one variant at one
// branch: exactly one row per (branch, variant) pair, created lazily on the
// first stock-affecting event.
//
// Invariant after every operation: 0 <= Reserved <= OnHand. The row is only
// ever mutated through the stock service operations — no other code path
// writes OnHand or Reserved.
type StockEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_branch_variant"`
	VariantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_branch_variant;index"`
	OnHand    int       `gorm:"not null;default:0"`
	Reserved  int       `gorm:"not null;default:0"`
	MinQty    int       `gorm:"not null;default:0"`
	MaxQty    int       `gorm:"not null;default:0"` // 0 = no maximum
	CreatedAt time.Time
	UpdatedAt time.Time

	Variant *ProductVariant `gorm:"foreignKey:VariantID"`
}

func (StockEntry) TableName() string { return "stock_entries" }

// Available is the quantity that can still be reserved.
func (e *StockEntry) Available() int { return e.OnHand - e.Reserved }
