package service

import (
	"context"
	"errors"

	"fixflow/internal/dto"
	"fixflow/internal/model"
	"fixflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// folioPrefixes maps each movement kind to its document-family prefix.
// Kinds missing from the map fall back to FallbackFolioPrefix.
var folioPrefixes = map[model.MovementKind]string{
	model.MovementEntry:       "ING",
	model.MovementExit:        "EGR",
	model.MovementSale:        "VTA",
	model.MovementAdjustment:  "AJU",
	model.MovementTransferOut: "TRF_OUT",
	model.MovementTransferIn:  "TRF_IN",
}

// FallbackFolioPrefix labels movements of a kind without a dedicated prefix.
const FallbackFolioPrefix = "MOV"

// FolioPrefixFor returns the folio prefix used when minting a folio for a
// movement of the given kind.
func FolioPrefixFor(kind model.MovementKind) string {
	if p, ok := folioPrefixes[kind]; ok {
		return p
	}
	return FallbackFolioPrefix
}

// MovementService records entries in the immutable stock ledger. Each record
// carries a before/after snapshot of the on-hand quantity; for kinds that do
// not move stock (adjustments, transfers) both snapshots are equal.
type MovementService interface {
	// Record persists one movement in its own transaction, minting a folio
	// when the request does not supply one and applying the stock effect of
	// the kind. The movement row and the stock change commit atomically: a
	// guarded withdrawal that fails rolls back the row too.
	Record(ctx context.Context, actor model.Actor, req dto.RecordMovementRequest) (*dto.MovementResponse, error)
	// AppendTx writes a movement inside the caller's transaction without
	// touching stock — the caller has already driven the ledger and supplies
	// the before/after snapshots. A folio is minted when m.Folio is empty.
	AppendTx(ctx context.Context, tx *gorm.DB, actor model.Actor, m *model.Movement) error
	List(ctx context.Context, actor model.Actor, filter dto.MovementListFilter) (*dto.MovementListResponse, error)
}

type movementService struct {
	repo     repository.MovementRepository
	stock    StockService
	folios   FolioService
	variants repository.VariantRepository
}

func NewMovementService(
	repo repository.MovementRepository,
	stock StockService,
	folios FolioService,
	variants repository.VariantRepository,
) MovementService {
	return &movementService{repo: repo, stock: stock, folios: folios, variants: variants}
}

func (s *movementService) Record(ctx context.Context, actor model.Actor, req dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, &NotFoundError{Resource: "branch"}
	}
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return nil, &NotFoundError{Resource: "variant"}
	}
	kind := model.MovementKind(req.Kind)
	if !model.ValidMovementKind(kind) {
		return nil, errors.New("unknown movement kind")
	}

	variant, err := s.variants.FindByIDForOrg(ctx, actor.OrganizationID, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "variant"}
		}
		return nil, err
	}

	var ticketID *uuid.UUID
	if req.TicketID != nil {
		parsed, err := uuid.Parse(*req.TicketID)
		if err != nil {
			return nil, &NotFoundError{Resource: "ticket"}
		}
		ticketID = &parsed
	}

	m := &model.Movement{
		BranchID:  branchID,
		VariantID: variantID,
		Kind:      kind,
		Quantity:  req.Quantity,
		TicketID:  ticketID,
		UserID:    actor.UserID,
		Reason:    req.Reason,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if req.Folio != nil {
		m.Folio = *req.Folio
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if m.Folio == "" {
			folio, err := s.folios.NextTx(ctx, tx, actor.OrganizationID, FolioPrefixFor(kind), branchID)
			if err != nil {
				return err
			}
			m.Folio = folio
		}

		before := 0
		if entry, err := s.stock.LookupTx(tx, branchID, variantID); err != nil {
			return err
		} else if entry != nil {
			before = entry.OnHand
		}
		m.StockBefore = before
		m.StockAfter = before

		// The stock effect depends on the kind. Only entries and withdrawals
		// move on-hand; adjustments and transfers are record-only here (the
		// counterpart branch records its own TRANSFER_IN).
		switch kind {
		case model.MovementEntry:
			entry, err := s.stock.ApplyDeltaTx(tx, branchID, variantID, req.Quantity)
			if err != nil {
				return err
			}
			m.StockAfter = entry.OnHand
		case model.MovementExit, model.MovementSale:
			entry, err := s.stock.WithdrawTx(tx, branchID, variantID, req.Quantity)
			if err != nil {
				return err
			}
			m.StockAfter = entry.OnHand
		}

		return s.repo.CreateTx(tx, m)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := movementToResponse(m)
	resp.SKU = variant.SKU
	return resp, nil
}

func (s *movementService) AppendTx(ctx context.Context, tx *gorm.DB, actor model.Actor, m *model.Movement) error {
	if m.Folio == "" {
		folio, err := s.folios.NextTx(ctx, tx, actor.OrganizationID, FolioPrefixFor(m.Kind), m.BranchID)
		if err != nil {
			return err
		}
		m.Folio = folio
	}
	if m.UserID == uuid.Nil {
		m.UserID = actor.UserID
	}
	if m.IPAddress == "" {
		m.IPAddress = actor.IP
	}
	if m.UserAgent == "" {
		m.UserAgent = actor.UserAgent
	}
	return s.repo.CreateTx(tx, m)
}

func (s *movementService) List(ctx context.Context, actor model.Actor, filter dto.MovementListFilter) (*dto.MovementListResponse, error) {
	repoFilter := repository.MovementFilter{
		Kind:  model.MovementKind(filter.Kind),
		Page:  filter.Page,
		Limit: filter.Limit,
	}

	// Default to the actor's branch; an explicit branch_id widens or narrows
	// the view within the organization.
	branchID := actor.BranchID
	if filter.BranchID != "" {
		parsed, err := uuid.Parse(filter.BranchID)
		if err != nil {
			return nil, &NotFoundError{Resource: "branch"}
		}
		branchID = parsed
	}
	repoFilter.BranchID = &branchID

	if filter.VariantID != "" {
		parsed, err := uuid.Parse(filter.VariantID)
		if err != nil {
			return nil, &NotFoundError{Resource: "variant"}
		}
		repoFilter.VariantID = &parsed
	}
	if filter.TicketID != "" {
		parsed, err := uuid.Parse(filter.TicketID)
		if err != nil {
			return nil, &NotFoundError{Resource: "ticket"}
		}
		repoFilter.TicketID = &parsed
	}

	movements, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, *movementToResponse(&movements[i]))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}
	return &dto.MovementListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func movementToResponse(m *model.Movement) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:          m.ID.String(),
		BranchID:    m.BranchID.String(),
		VariantID:   m.VariantID.String(),
		Kind:        string(m.Kind),
		Quantity:    m.Quantity,
		Folio:       m.Folio,
		Reason:      m.Reason,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if m.TicketID != nil {
		id := m.TicketID.String()
		resp.TicketID = &id
	}
	if m.Variant != nil {
		resp.SKU = m.Variant.SKU
	}
	return resp
}
