package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TicketState is persisted verbatim — external reporting filters on the
// literal values, do not rename.
type TicketState string

const (
	TicketReceived     TicketState = "RECEIVED"
	TicketDiagnosing   TicketState = "DIAGNOSING"
	TicketAwaitingPart TicketState = "AWAITING_PART"
	TicketInRepair     TicketState = "IN_REPAIR"
	TicketRepaired     TicketState = "REPAIRED"
	TicketDelivered    TicketState = "DELIVERED"
	TicketCanceled     TicketState = "CANCELED"
)

// PartState tracks the lifecycle of a stock reservation against a ticket.
type PartState string

const (
	PartReserved PartState = "RESERVED"
	PartConsumed PartState = "CONSUMED"
	PartReleased PartState = "RELEASED"
)

// Ticket is a repair work order. It is created once at RECEIVED, mutated by
// state transitions and field edits, and never deleted — cancellation is the
// terminal CANCELED state.
type Ticket struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio          string    `gorm:"uniqueIndex;not null"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchID       uuid.UUID `gorm:"type:uuid;not null;index"`

	CustomerName  string `gorm:"not null"`
	CustomerPhone string
	CustomerEmail *string

	DeviceType   string `gorm:"not null"`
	DeviceBrand  string
	DeviceModel  string
	DeviceSerial *string

	Problem   string      `gorm:"not null"`
	Diagnosis *string
	Solution  *string
	State     TicketState `gorm:"type:varchar(20);not null;index"`

	EstimatedCost *decimal.Decimal `gorm:"type:decimal(12,2)"`
	FinalCost     *decimal.Decimal `gorm:"type:decimal(12,2)"`

	CreatedByID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Parts   []TicketPart    `gorm:"foreignKey:TicketID"`
	History []TicketHistory `gorm:"foreignKey:TicketID"`
}

// TicketHistory is an append-only record of one state transition.
// FromState is nil for the creation event.
type TicketHistory struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	FromState *TicketState `gorm:"type:varchar(20)"`
	ToState   TicketState  `gorm:"type:varchar(20);not null"`
	Notes     *string
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

func (TicketHistory) TableName() string { return "ticket_history" }

// TicketPart is a reservation of a variant's stock against a ticket.
// Created RESERVED (which increments the StockEntry's reserved quantity) and
// flipped exactly once to CONSUMED or RELEASED by a ticket transition.
type TicketPart struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketID  uuid.UUID `gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity  int       `gorm:"not null"`
	State     PartState `gorm:"type:varchar(20);not null;default:'RESERVED'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Variant *ProductVariant `gorm:"foreignKey:VariantID"`
}
