package service

import (
	"context"
	"errors"
	"fmt"

	"fixflow/internal/dto"
	"fixflow/internal/model"
	"fixflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AllowedTransitions is the full ticket state machine. A target state absent
// from the current state's list is rejected with InvalidTransitionError and
// leaves the ticket untouched. DELIVERED and CANCELED are terminal.
var AllowedTransitions = map[model.TicketState][]model.TicketState{
	model.TicketReceived:     {model.TicketDiagnosing, model.TicketCanceled},
	model.TicketDiagnosing:   {model.TicketAwaitingPart, model.TicketInRepair, model.TicketCanceled},
	model.TicketAwaitingPart: {model.TicketInRepair, model.TicketCanceled},
	model.TicketInRepair:     {model.TicketRepaired, model.TicketCanceled},
	model.TicketRepaired:     {model.TicketDelivered},
	model.TicketDelivered:    {},
	model.TicketCanceled:     {},
}

// TicketNotifier receives post-commit lifecycle events. Implementations must
// be fire-and-forget: a notification failure never fails the request.
type TicketNotifier interface {
	TicketCreated(ctx context.Context, t *model.Ticket)
	TicketTransitioned(ctx context.Context, t *model.Ticket, from model.TicketState)
}

// TicketService drives the repair ticket lifecycle: creation at RECEIVED,
// part reservations, and the guarded state transitions with their stock side
// effects. Every mutation appends to the ticket's history.
type TicketService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateTicketRequest) (*dto.TicketResponse, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.TicketResponse, error)
	List(ctx context.Context, actor model.Actor, filter dto.TicketFilter) (*dto.TicketListResponse, error)
	History(ctx context.Context, actor model.Actor, id uuid.UUID) ([]dto.TicketHistoryResponse, error)
	// AddPart reserves stock for the ticket. Rejected once the ticket has
	// entered repair or a terminal state.
	AddPart(ctx context.Context, actor model.Actor, ticketID uuid.UUID, req dto.AddPartRequest) (*dto.TicketResponse, error)
	// Transition moves the ticket to the target state, applying field edits
	// from the request and the target state's stock side effects in one
	// transaction.
	Transition(ctx context.Context, actor model.Actor, ticketID uuid.UUID, req dto.TransitionTicketRequest) (*dto.TicketResponse, error)
}

type ticketService struct {
	repo      repository.TicketRepository
	stock     StockService
	movements MovementService
	folios    FolioService
	notifier  TicketNotifier
}

func NewTicketService(
	repo repository.TicketRepository,
	stock StockService,
	movements MovementService,
	folios FolioService,
	notifier TicketNotifier,
) TicketService {
	return &ticketService{
		repo:      repo,
		stock:     stock,
		movements: movements,
		folios:    folios,
		notifier:  notifier,
	}
}

func (s *ticketService) Create(ctx context.Context, actor model.Actor, req dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, &NotFoundError{Resource: "branch"}
	}

	t := &model.Ticket{
		OrganizationID: actor.OrganizationID,
		BranchID:       branchID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		DeviceType:     req.DeviceType,
		DeviceBrand:    req.DeviceBrand,
		DeviceModel:    req.DeviceModel,
		DeviceSerial:   req.DeviceSerial,
		Problem:        req.Problem,
		State:          model.TicketReceived,
		EstimatedCost:  req.EstimatedCost,
		CreatedByID:    actor.UserID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		folio, err := s.folios.NextTx(ctx, tx, actor.OrganizationID, TicketFolioPrefix, branchID)
		if err != nil {
			return err
		}
		t.Folio = folio

		if err := s.repo.CreateTx(tx, t); err != nil {
			return err
		}
		// Creation event: FromState nil marks the start of the history.
		return s.repo.CreateHistoryTx(tx, &model.TicketHistory{
			TicketID:  t.ID,
			FromState: nil,
			ToState:   model.TicketReceived,
			UserID:    actor.UserID,
			IPAddress: actor.IP,
			UserAgent: actor.UserAgent,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notifier != nil {
		s.notifier.TicketCreated(ctx, t)
	}
	return ticketToResponse(t), nil
}

func (s *ticketService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.TicketResponse, error) {
	t, err := s.repo.FindByIDForOrg(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "ticket"}
		}
		return nil, err
	}
	return ticketToResponse(t), nil
}

func (s *ticketService) List(ctx context.Context, actor model.Actor, filter dto.TicketFilter) (*dto.TicketListResponse, error) {
	repoFilter := repository.TicketFilter{
		State: model.TicketState(filter.State),
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.BranchID != "" {
		parsed, err := uuid.Parse(filter.BranchID)
		if err != nil {
			return nil, &NotFoundError{Resource: "branch"}
		}
		repoFilter.BranchID = &parsed
	}

	tickets, total, err := s.repo.List(ctx, actor.OrganizationID, repoFilter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, *ticketToResponse(&tickets[i]))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}
	return &dto.TicketListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *ticketService) History(ctx context.Context, actor model.Actor, id uuid.UUID) ([]dto.TicketHistoryResponse, error) {
	history, err := s.repo.ListHistory(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(history))
	for _, h := range history {
		item := dto.TicketHistoryResponse{
			ID:        h.ID.String(),
			ToState:   string(h.ToState),
			Notes:     h.Notes,
			UserID:    h.UserID.String(),
			CreatedAt: h.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if h.FromState != nil {
			from := string(*h.FromState)
			item.FromState = &from
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *ticketService) AddPart(ctx context.Context, actor model.Actor, ticketID uuid.UUID, req dto.AddPartRequest) (*dto.TicketResponse, error) {
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return nil, &NotFoundError{Resource: "variant"}
	}

	var t *model.Ticket
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		loaded, err := s.repo.FindForUpdateTx(tx, actor.OrganizationID, ticketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "ticket"}
			}
			return err
		}
		t = loaded

		switch t.State {
		case model.TicketReceived, model.TicketDiagnosing, model.TicketAwaitingPart:
			// parts can still be attached
		default:
			return &PartNotAttachableError{State: t.State}
		}

		if _, err := s.stock.ReserveTx(tx, t.BranchID, variantID, req.Quantity); err != nil {
			return err
		}

		part := &model.TicketPart{
			TicketID:  t.ID,
			VariantID: variantID,
			Quantity:  req.Quantity,
			State:     model.PartReserved,
		}
		if err := s.repo.CreatePartTx(tx, part); err != nil {
			return err
		}
		t.Parts = append(t.Parts, *part)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return ticketToResponse(t), nil
}

func (s *ticketService) Transition(ctx context.Context, actor model.Actor, ticketID uuid.UUID, req dto.TransitionTicketRequest) (*dto.TicketResponse, error) {
	target := model.TicketState(req.TargetState)

	var (
		t    *model.Ticket
		from model.TicketState
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		loaded, err := s.repo.FindForUpdateTx(tx, actor.OrganizationID, ticketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "ticket"}
			}
			return err
		}
		t = loaded
		from = t.State

		if !transitionAllowed(from, target) {
			return &InvalidTransitionError{
				Current: from,
				Target:  target,
				Allowed: AllowedTransitions[from],
			}
		}

		// Field edits ride along with the transition; omitted fields keep
		// their previous values.
		if req.Diagnosis != nil {
			t.Diagnosis = req.Diagnosis
		}
		if req.Solution != nil {
			t.Solution = req.Solution
		}
		if req.EstimatedCost != nil {
			t.EstimatedCost = req.EstimatedCost
		}
		if req.FinalCost != nil {
			t.FinalCost = req.FinalCost
		}
		t.State = target

		if err := s.repo.UpdateTx(tx, t); err != nil {
			return err
		}
		if err := s.repo.CreateHistoryTx(tx, &model.TicketHistory{
			TicketID:  t.ID,
			FromState: &from,
			ToState:   target,
			Notes:     req.Notes,
			UserID:    actor.UserID,
			IPAddress: actor.IP,
			UserAgent: actor.UserAgent,
		}); err != nil {
			return err
		}

		if hook := transitionHooks[target]; hook != nil {
			return hook(s, ctx, tx, actor, t)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.notifier != nil {
		s.notifier.TicketTransitioned(ctx, t, from)
	}
	return ticketToResponse(t), nil
}

func transitionAllowed(from, to model.TicketState) bool {
	for _, allowed := range AllowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// transitionHooks run inside the transition transaction, keyed by the target
// state. A hook failure rolls back the whole transition including the state
// change and the history row.
type transitionHook func(s *ticketService, ctx context.Context, tx *gorm.DB, actor model.Actor, t *model.Ticket) error

var transitionHooks = map[model.TicketState]transitionHook{
	model.TicketInRepair: (*ticketService).consumeReservedParts,
	model.TicketCanceled: (*ticketService).releaseReservedParts,
}

// consumeReservedParts converts every RESERVED part into a permanent stock
// decrement and writes one EXIT movement per part. Runs when the ticket
// enters IN_REPAIR.
func (s *ticketService) consumeReservedParts(ctx context.Context, tx *gorm.DB, actor model.Actor, t *model.Ticket) error {
	reason := fmt.Sprintf("consumption for ticket %s", t.Folio)
	for i := range t.Parts {
		p := &t.Parts[i]
		if p.State != model.PartReserved {
			continue
		}
		entry, err := s.stock.ConsumeTx(tx, t.BranchID, p.VariantID, p.Quantity)
		if err != nil {
			return err
		}
		m := &model.Movement{
			BranchID:    t.BranchID,
			VariantID:   p.VariantID,
			Kind:        model.MovementExit,
			Quantity:    p.Quantity,
			TicketID:    &t.ID,
			Reason:      &reason,
			StockBefore: entry.OnHand + p.Quantity,
			StockAfter:  entry.OnHand,
		}
		if err := s.movements.AppendTx(ctx, tx, actor, m); err != nil {
			return err
		}
		if err := s.repo.UpdatePartStateTx(tx, p.ID, model.PartConsumed); err != nil {
			return err
		}
		p.State = model.PartConsumed
	}
	return nil
}

// releaseReservedParts returns every RESERVED part's hold to the pool. No
// movement is recorded: on-hand never changed. Runs when the ticket is
// canceled.
func (s *ticketService) releaseReservedParts(ctx context.Context, tx *gorm.DB, actor model.Actor, t *model.Ticket) error {
	for i := range t.Parts {
		p := &t.Parts[i]
		if p.State != model.PartReserved {
			continue
		}
		if _, err := s.stock.ReleaseTx(tx, t.BranchID, p.VariantID, p.Quantity); err != nil {
			return err
		}
		if err := s.repo.UpdatePartStateTx(tx, p.ID, model.PartReleased); err != nil {
			return err
		}
		p.State = model.PartReleased
	}
	return nil
}

func ticketToResponse(t *model.Ticket) *dto.TicketResponse {
	parts := make([]dto.TicketPartResponse, 0, len(t.Parts))
	for _, p := range t.Parts {
		part := dto.TicketPartResponse{
			ID:        p.ID.String(),
			VariantID: p.VariantID.String(),
			Quantity:  p.Quantity,
			State:     string(p.State),
		}
		if p.Variant != nil {
			part.SKU = p.Variant.SKU
			part.Name = p.Variant.Name
		}
		parts = append(parts, part)
	}
	return &dto.TicketResponse{
		ID:            t.ID.String(),
		Folio:         t.Folio,
		BranchID:      t.BranchID.String(),
		CustomerName:  t.CustomerName,
		CustomerPhone: t.CustomerPhone,
		CustomerEmail: t.CustomerEmail,
		DeviceType:    t.DeviceType,
		DeviceBrand:   t.DeviceBrand,
		DeviceModel:   t.DeviceModel,
		DeviceSerial:  t.DeviceSerial,
		Problem:       t.Problem,
		Diagnosis:     t.Diagnosis,
		Solution:      t.Solution,
		State:         string(t.State),
		EstimatedCost: t.EstimatedCost,
		FinalCost:     t.FinalCost,
		Parts:         parts,
		CreatedAt:     t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     t.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
