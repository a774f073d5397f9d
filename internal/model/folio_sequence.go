package model

import (
	"time"

	"github.com/google/uuid"
)

// FolioSequence is a monotonically increasing counter keyed by
// (prefix, branch, period). Rows are created on the first folio request for
// a key and incremented atomically on every subsequent one — never
// decremented, never deleted.
type FolioSequence struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Prefix    string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_folio_key"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_folio_key"`
	Period    string    `gorm:"type:varchar(6);not null;uniqueIndex:idx_folio_key"` // YYYYMM
	Value     int       `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FolioSequence) TableName() string { return "folio_sequences" }
