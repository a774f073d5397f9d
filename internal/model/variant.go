package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is a sellable/consumable SKU (a spare part, an accessory).
// Stock is not tracked here — per-branch quantities live in StockEntry.
type ProductVariant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_variant_org_sku"`
	SKU            string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_variant_org_sku"`
	Name           string    `gorm:"index;not null"`
	Description    *string
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (ProductVariant) TableName() string { return "product_variants" }
