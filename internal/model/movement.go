package model

import (
	"time"

	"github.com/google/uuid"
)

// MovementKind is persisted verbatim — external reporting filters on the
// literal values, do not rename.
type MovementKind string

const (
	MovementEntry       MovementKind = "ENTRY"
	MovementExit        MovementKind = "EXIT"
	MovementSale        MovementKind = "SALE"
	MovementAdjustment  MovementKind = "ADJUSTMENT"
	MovementTransferOut MovementKind = "TRANSFER_OUT"
	MovementTransferIn  MovementKind = "TRANSFER_IN"
)

// ValidMovementKind reports whether k is one of the persisted kinds.
func ValidMovementKind(k MovementKind) bool {
	switch k {
	case MovementEntry, MovementExit, MovementSale, MovementAdjustment,
		MovementTransferOut, MovementTransferIn:
		return true
	}
	return false
}

// Movement is an immutable ledger entry recording one quantity change.
// Rows are never updated or deleted; corrections create inverse movements.
type Movement struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Kind      MovementKind `gorm:"type:varchar(20);not null;index"`
	Quantity  int          `gorm:"not null"` // always positive; Kind gives direction
	Folio     string       `gorm:"not null;index"`
	TicketID  *uuid.UUID   `gorm:"type:uuid;index"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null"`
	Reason    *string
	// Before/after snapshots of OnHand for audit; equal when the kind does
	// not move the ledger (adjustment, transfers).
	StockBefore int `gorm:"not null"`
	StockAfter  int `gorm:"not null"`
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time

	Variant *ProductVariant `gorm:"foreignKey:VariantID"`
}

func (Movement) TableName() string { return "stock_movements" }
