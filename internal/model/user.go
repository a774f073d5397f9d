package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated actor. Role: "admin" | "supervisor" | "technician".
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Username       string    `gorm:"uniqueIndex;not null"`
	Name           string    `gorm:"not null"`
	Email          *string
	PasswordHash   string `gorm:"not null"`
	Role           string `gorm:"type:varchar(20);not null"`
	Active         bool   `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Branch *Branch `gorm:"foreignKey:BranchID"`
}
