package repository

import (
	"context"

	"fixflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TicketFilter defines filters for listing tickets.
type TicketFilter struct {
	BranchID *uuid.UUID
	State    model.TicketState
	Page     int
	Limit    int
}

// TicketRepository persists tickets, their append-only history and their
// part reservations. All finders are organization-scoped: a ticket outside
// the caller's organization behaves exactly like a missing one.
type TicketRepository interface {
	CreateTx(tx *gorm.DB, t *model.Ticket) error
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*model.Ticket, error)
	// FindForUpdateTx locks the ticket row for the duration of tx and loads
	// its parts, so concurrent transitions on the same ticket serialize.
	FindForUpdateTx(tx *gorm.DB, orgID, id uuid.UUID) (*model.Ticket, error)
	UpdateTx(tx *gorm.DB, t *model.Ticket) error
	List(ctx context.Context, orgID uuid.UUID, filter TicketFilter) ([]model.Ticket, int64, error)

	CreateHistoryTx(tx *gorm.DB, h *model.TicketHistory) error
	ListHistory(ctx context.Context, orgID, ticketID uuid.UUID) ([]model.TicketHistory, error)

	CreatePartTx(tx *gorm.DB, p *model.TicketPart) error
	UpdatePartStateTx(tx *gorm.DB, partID uuid.UUID, state model.PartState) error

	DB() *gorm.DB
}

type ticketRepo struct{ db *gorm.DB }

func NewTicketRepository(db *gorm.DB) TicketRepository { return &ticketRepo{db: db} }

func (r *ticketRepo) DB() *gorm.DB { return r.db }

func (r *ticketRepo) CreateTx(tx *gorm.DB, t *model.Ticket) error {
	return tx.Create(t).Error
}

func (r *ticketRepo) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*model.Ticket, error) {
	var t model.Ticket
	err := r.db.WithContext(ctx).
		Preload("Parts.Variant").
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&t).Error
	return &t, err
}

func (r *ticketRepo) FindForUpdateTx(tx *gorm.DB, orgID, id uuid.UUID) (*model.Ticket, error) {
	var t model.Ticket
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	// Parts are loaded separately: FOR UPDATE cannot be combined with the
	// outer joins Preload would generate.
	err = tx.Where("ticket_id = ?", t.ID).Order("created_at ASC").Find(&t.Parts).Error
	return &t, err
}

func (r *ticketRepo) UpdateTx(tx *gorm.DB, t *model.Ticket) error {
	return tx.Omit("Parts", "History").Save(t).Error
}

func (r *ticketRepo) List(ctx context.Context, orgID uuid.UUID, filter TicketFilter) ([]model.Ticket, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Ticket{}).Where("organization_id = ?", orgID)
	if filter.BranchID != nil {
		q = q.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.State != "" {
		q = q.Where("state = ?", filter.State)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var tickets []model.Ticket
	err := q.Preload("Parts").Order("created_at DESC").Offset(offset).Limit(limit).Find(&tickets).Error
	return tickets, total, err
}

func (r *ticketRepo) CreateHistoryTx(tx *gorm.DB, h *model.TicketHistory) error {
	return tx.Create(h).Error
}

func (r *ticketRepo) ListHistory(ctx context.Context, orgID, ticketID uuid.UUID) ([]model.TicketHistory, error) {
	// Scope through the owning ticket so history of foreign tickets is
	// indistinguishable from empty history.
	var history []model.TicketHistory
	err := r.db.WithContext(ctx).
		Joins("JOIN tickets ON tickets.id = ticket_history.ticket_id").
		Where("ticket_history.ticket_id = ? AND tickets.organization_id = ?", ticketID, orgID).
		Order("ticket_history.created_at ASC").
		Find(&history).Error
	return history, err
}

func (r *ticketRepo) CreatePartTx(tx *gorm.DB, p *model.TicketPart) error {
	return tx.Create(p).Error
}

func (r *ticketRepo) UpdatePartStateTx(tx *gorm.DB, partID uuid.UUID, state model.PartState) error {
	return tx.Model(&model.TicketPart{}).Where("id = ?", partID).Update("state", state).Error
}
