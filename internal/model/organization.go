package model

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the top-level tenant. Every branch, user, variant and
// ticket belongs to exactly one organization, and all reads/writes are
// scoped by it.
type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Branch is a physical location within an organization. Its short Code is
// embedded in every folio issued for documents of that branch.
type Branch struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_branch_org_code"`
	Code           string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_branch_org_code"`
	Name           string    `gorm:"not null"`
	Address        *string
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Organization *Organization `gorm:"foreignKey:OrganizationID"`
}

func (Branch) TableName() string { return "branches" }
