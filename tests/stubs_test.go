package tests

import (
	"context"
	"fmt"
	"time"

	"fixflow/internal/model"
	"fixflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository stubs shared by the unit tests. The services run with
// a nil *gorm.DB, which makes runTx invoke the callback directly — no real
// database or locking involved.

// ── FolioSequenceRepository ───────────────────────────────────────────────────

type stubFolioRepo struct {
	values map[string]int
}

func newStubFolioRepo() *stubFolioRepo {
	return &stubFolioRepo{values: make(map[string]int)}
}

func folioKey(prefix string, branchID uuid.UUID, period string) string {
	return fmt.Sprintf("%s|%s|%s", prefix, branchID, period)
}

func (r *stubFolioRepo) NextValueTx(_ context.Context, _ *gorm.DB, prefix string, branchID uuid.UUID, period string) (int, error) {
	key := folioKey(prefix, branchID, period)
	r.values[key]++
	return r.values[key], nil
}

func (r *stubFolioRepo) CurrentValue(_ context.Context, prefix string, branchID uuid.UUID, period string) (int, error) {
	return r.values[folioKey(prefix, branchID, period)], nil
}

func (r *stubFolioRepo) DB() *gorm.DB { return nil }

var _ repository.FolioSequenceRepository = (*stubFolioRepo)(nil)

// ── BranchRepository ──────────────────────────────────────────────────────────

type stubBranchRepo struct {
	branches map[uuid.UUID]*model.Branch
}

func newStubBranchRepo() *stubBranchRepo {
	return &stubBranchRepo{branches: make(map[uuid.UUID]*model.Branch)}
}

func (r *stubBranchRepo) FindByIDForOrg(_ context.Context, orgID, id uuid.UUID) (*model.Branch, error) {
	b, ok := r.branches[id]
	if !ok || b.OrganizationID != orgID || !b.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *stubBranchRepo) ListForOrg(_ context.Context, orgID uuid.UUID) ([]model.Branch, error) {
	var result []model.Branch
	for _, b := range r.branches {
		if b.OrganizationID == orgID && b.Active {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (r *stubBranchRepo) Create(_ context.Context, b *model.Branch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.branches[b.ID] = b
	return nil
}

var _ repository.BranchRepository = (*stubBranchRepo)(nil)

// ── StockEntryRepository ──────────────────────────────────────────────────────

type stubStockRepo struct {
	entries map[uuid.UUID]*model.StockEntry
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{entries: make(map[uuid.UUID]*model.StockEntry)}
}

func (r *stubStockRepo) find(branchID, variantID uuid.UUID) *model.StockEntry {
	for _, e := range r.entries {
		if e.BranchID == branchID && e.VariantID == variantID {
			return e
		}
	}
	return nil
}

func (r *stubStockRepo) Find(_ context.Context, branchID, variantID uuid.UUID) (*model.StockEntry, error) {
	if e := r.find(branchID, variantID); e != nil {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStockRepo) FindForUpdateTx(_ *gorm.DB, branchID, variantID uuid.UUID) (*model.StockEntry, error) {
	if e := r.find(branchID, variantID); e != nil {
		copied := *e
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubStockRepo) CreateTx(_ *gorm.DB, e *model.StockEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	copied := *e
	r.entries[e.ID] = &copied
	return nil
}

func (r *stubStockRepo) UpdateQuantitiesTx(_ *gorm.DB, id uuid.UUID, onHand, reserved int) error {
	e, ok := r.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.OnHand = onHand
	e.Reserved = reserved
	return nil
}

func (r *stubStockRepo) ListByBranch(_ context.Context, branchID uuid.UUID, _, _ int) ([]model.StockEntry, int64, error) {
	var result []model.StockEntry
	for _, e := range r.entries {
		if e.BranchID == branchID {
			result = append(result, *e)
		}
	}
	return result, int64(len(result)), nil
}

func (r *stubStockRepo) ListBelowMinimum(_ context.Context, branchID uuid.UUID) ([]model.StockEntry, error) {
	var result []model.StockEntry
	for _, e := range r.entries {
		if e.BranchID == branchID && e.MinQty > 0 && e.OnHand <= e.MinQty {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

var _ repository.StockEntryRepository = (*stubStockRepo)(nil)

// ── MovementRepository ────────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []*model.Movement
}

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.Movement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	copied := *m
	r.movements = append(r.movements, &copied)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]model.Movement, int64, error) {
	var result []model.Movement
	for _, m := range r.movements {
		if filter.BranchID != nil && m.BranchID != *filter.BranchID {
			continue
		}
		if filter.VariantID != nil && m.VariantID != *filter.VariantID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		if filter.TicketID != nil && (m.TicketID == nil || *m.TicketID != *filter.TicketID) {
			continue
		}
		result = append(result, *m)
	}
	return result, int64(len(result)), nil
}

func (r *stubMovementRepo) DB() *gorm.DB { return nil }

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

// ── VariantRepository ─────────────────────────────────────────────────────────

type stubVariantRepo struct {
	variants map[uuid.UUID]*model.ProductVariant
}

func newStubVariantRepo() *stubVariantRepo {
	return &stubVariantRepo{variants: make(map[uuid.UUID]*model.ProductVariant)}
}

func (r *stubVariantRepo) Create(_ context.Context, v *model.ProductVariant) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.variants[v.ID] = v
	return nil
}

func (r *stubVariantRepo) FindByIDForOrg(_ context.Context, orgID, id uuid.UUID) (*model.ProductVariant, error) {
	v, ok := r.variants[id]
	if !ok || v.OrganizationID != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVariantRepo) List(_ context.Context, orgID uuid.UUID, _ repository.VariantFilter) ([]model.ProductVariant, int64, error) {
	var result []model.ProductVariant
	for _, v := range r.variants {
		if v.OrganizationID == orgID && v.Active {
			result = append(result, *v)
		}
	}
	return result, int64(len(result)), nil
}

func (r *stubVariantRepo) Update(_ context.Context, v *model.ProductVariant) error {
	r.variants[v.ID] = v
	return nil
}

func (r *stubVariantRepo) SoftDelete(_ context.Context, orgID, id uuid.UUID) error {
	v, ok := r.variants[id]
	if !ok || v.OrganizationID != orgID {
		return gorm.ErrRecordNotFound
	}
	v.Active = false
	return nil
}

var _ repository.VariantRepository = (*stubVariantRepo)(nil)

// ── TicketRepository ──────────────────────────────────────────────────────────

type stubTicketRepo struct {
	tickets map[uuid.UUID]*model.Ticket
	history []*model.TicketHistory
	parts   map[uuid.UUID]*model.TicketPart
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{
		tickets: make(map[uuid.UUID]*model.Ticket),
		parts:   make(map[uuid.UUID]*model.TicketPart),
	}
}

func (r *stubTicketRepo) partsFor(ticketID uuid.UUID) []model.TicketPart {
	var result []model.TicketPart
	for _, p := range r.parts {
		if p.TicketID == ticketID {
			result = append(result, *p)
		}
	}
	return result
}

func (r *stubTicketRepo) CreateTx(_ *gorm.DB, t *model.Ticket) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	copied := *t
	r.tickets[t.ID] = &copied
	return nil
}

func (r *stubTicketRepo) FindByIDForOrg(_ context.Context, orgID, id uuid.UUID) (*model.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok || t.OrganizationID != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	copied.Parts = r.partsFor(id)
	return &copied, nil
}

func (r *stubTicketRepo) FindForUpdateTx(_ *gorm.DB, orgID, id uuid.UUID) (*model.Ticket, error) {
	return r.FindByIDForOrg(context.Background(), orgID, id)
}

func (r *stubTicketRepo) UpdateTx(_ *gorm.DB, t *model.Ticket) error {
	stored, ok := r.tickets[t.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *t
	copied.Parts = nil
	copied.History = nil
	*stored = copied
	return nil
}

func (r *stubTicketRepo) List(_ context.Context, orgID uuid.UUID, filter repository.TicketFilter) ([]model.Ticket, int64, error) {
	var result []model.Ticket
	for _, t := range r.tickets {
		if t.OrganizationID != orgID {
			continue
		}
		if filter.BranchID != nil && t.BranchID != *filter.BranchID {
			continue
		}
		if filter.State != "" && t.State != filter.State {
			continue
		}
		result = append(result, *t)
	}
	return result, int64(len(result)), nil
}

func (r *stubTicketRepo) CreateHistoryTx(_ *gorm.DB, h *model.TicketHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	copied := *h
	r.history = append(r.history, &copied)
	return nil
}

func (r *stubTicketRepo) ListHistory(_ context.Context, orgID, ticketID uuid.UUID) ([]model.TicketHistory, error) {
	t, ok := r.tickets[ticketID]
	if !ok || t.OrganizationID != orgID {
		return nil, nil
	}
	var result []model.TicketHistory
	for _, h := range r.history {
		if h.TicketID == ticketID {
			result = append(result, *h)
		}
	}
	return result, nil
}

func (r *stubTicketRepo) CreatePartTx(_ *gorm.DB, p *model.TicketPart) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	copied := *p
	r.parts[p.ID] = &copied
	return nil
}

func (r *stubTicketRepo) UpdatePartStateTx(_ *gorm.DB, partID uuid.UUID, state model.PartState) error {
	p, ok := r.parts[partID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.State = state
	return nil
}

func (r *stubTicketRepo) DB() *gorm.DB { return nil }

var _ repository.TicketRepository = (*stubTicketRepo)(nil)

// ── Shared fixtures ───────────────────────────────────────────────────────────

type fixture struct {
	orgID     uuid.UUID
	branch    *model.Branch
	actor     model.Actor
	folioRepo *stubFolioRepo
	branches  *stubBranchRepo
	stock     *stubStockRepo
	movements *stubMovementRepo
	variants  *stubVariantRepo
	tickets   *stubTicketRepo
}

func newFixture() *fixture {
	f := &fixture{
		orgID:     uuid.New(),
		folioRepo: newStubFolioRepo(),
		branches:  newStubBranchRepo(),
		stock:     newStubStockRepo(),
		movements: newStubMovementRepo(),
		variants:  newStubVariantRepo(),
		tickets:   newStubTicketRepo(),
	}
	f.branch = &model.Branch{
		ID:             uuid.New(),
		OrganizationID: f.orgID,
		Code:           "CEN",
		Name:           "Central",
		Active:         true,
	}
	f.branches.branches[f.branch.ID] = f.branch
	f.actor = model.Actor{
		UserID:         uuid.New(),
		OrganizationID: f.orgID,
		BranchID:       f.branch.ID,
		IP:             "127.0.0.1",
		UserAgent:      "tests",
	}
	return f
}

func (f *fixture) seedVariant(sku, name string) *model.ProductVariant {
	v := &model.ProductVariant{
		ID:             uuid.New(),
		OrganizationID: f.orgID,
		SKU:            sku,
		Name:           name,
		Active:         true,
	}
	f.variants.variants[v.ID] = v
	return v
}

func (f *fixture) seedStock(variantID uuid.UUID, onHand, reserved int) *model.StockEntry {
	e := &model.StockEntry{
		ID:        uuid.New(),
		BranchID:  f.branch.ID,
		VariantID: variantID,
		OnHand:    onHand,
		Reserved:  reserved,
	}
	f.stock.entries[e.ID] = e
	return e
}
