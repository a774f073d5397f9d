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

// StockService is the stock ledger: the only code path allowed to mutate
// OnHand/Reserved on a StockEntry. Every Tx method locks the row before the
// read-modify-write, so the invariant 0 <= reserved <= onHand holds even
// when concurrent transactions target the same (branch, variant) pair.
//
// The Tx methods run inside the caller's transaction and return the entry as
// it stands after the operation.
type StockService interface {
	// LookupTx returns the locked entry, or (nil, nil) when the pair has no
	// entry yet.
	LookupTx(tx *gorm.DB, branchID, variantID uuid.UUID) (*model.StockEntry, error)
	// ApplyDeltaTx upserts the entry (zero baseline when absent) and adds
	// delta to on-hand. Unguarded: exits/sales go through WithdrawTx.
	ApplyDeltaTx(tx *gorm.DB, branchID, variantID uuid.UUID, delta int) (*model.StockEntry, error)
	// WithdrawTx decrements on-hand by qty without touching reservations.
	// Fails with InsufficientStock when the entry is absent or fewer than
	// qty unreserved units are on hand — withdrawing into the reserved
	// portion would strand holds that could never all be consumed.
	WithdrawTx(tx *gorm.DB, branchID, variantID uuid.UUID, qty int) (*model.StockEntry, error)
	// ReserveTx places a hold: reserved += qty, on-hand untouched. Fails
	// with InsufficientStock when (onHand - reserved) < qty.
	ReserveTx(tx *gorm.DB, branchID, variantID uuid.UUID, qty int) (*model.StockEntry, error)
	// ReleaseTx cancels a hold: reserved -= qty, clamped at zero so an
	// over-release can never block a cancellation.
	ReleaseTx(tx *gorm.DB, branchID, variantID uuid.UUID, qty int) (*model.StockEntry, error)
	// ConsumeTx converts a hold into a permanent decrement: both on-hand
	// and reserved drop by qty. Fails with InsufficientReservation when
	// reserved < qty.
	ConsumeTx(tx *gorm.DB, branchID, variantID uuid.UUID, qty int) (*model.StockEntry, error)

	List(ctx context.Context, actor model.Actor, filter dto.StockListFilter) (*dto.StockListResponse, error)
	Alerts(ctx context.Context, actor model.Actor) ([]dto.StockAlertResponse, error)
	UpdateThresholds(ctx context.Context, actor model.Actor, variantID uuid.UUID, req dto.UpdateThresholdsRequest) (*dto.StockEntryResponse, error)
}

type stockService struct {
	repo repository.StockEntryRepository
}

func NewStockService(repo repository.StockEntryRepository) StockService {
	return &stockService{repo: repo}
}

func (s *stockService) LookupTx(tx *gorm.DB, branchID, variantID uuid.UUID) (*model.StockEntry, error) {
	entry, err := s.repo.FindForUpdateTx(tx, branchID, variantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *stockService) ApplyDeltaTx(tx *gorm.DB, branchID, variantID uuid.UUID, delta int) (*model.StockEntry, error) {
	entry, err := s.LookupTx(tx, branchID, variantID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		entry = &model.StockEntry{BranchID: branchID, VariantID: variantID}
		if err := s.repo.CreateTx(tx, entry); err != nil {
			return nil, err
		}
	}
	entry.OnHand += delta
	if err := s.repo.UpdateQuantitiesTx(tx, entry.ID, entry.OnHand, entry.Reserved); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *stockService) WithdrawTx(tx *gorm.DB, branchID, variantID uuid.UUID, qty int) (*model.StockEntry, error) {
	entry, err := s.LookupTx(tx, branchID, variantID)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.Available() < qty {
		available := 0
		if entry != nil {
			available = entry.Available()
		}
		return nil, &InsufficientStockError{VariantID: variantID, Available: available, Requested: qty}
	}
	entry.OnHand -= qty
	if err := s.repo.UpdateQuantitiesTx(tx, entry.ID, entry.OnHand, entry.Reserved); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *stockService) ReserveTx(tx *gorm.DB, branchID, variantID uuid.UUID, qty int) (*model.StockEntry, error) {
	entry, err := s.LookupTx(tx, branchID, variantID)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.Available() < qty {
		available := 0
		if entry != nil {
			available = entry.Available()
		}
		return nil, &InsufficientStockError{VariantID: variantID, Available: available, Requested: qty}
	}
	entry.Reserved += qty
	if err := s.repo.UpdateQuantitiesTx(tx, entry.ID, entry.OnHand, entry.Reserved); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *stockService) ReleaseTx(tx *gorm.DB, branchID, variantID uuid.UUID, qty int) (*model.StockEntry, error) {
	entry, err := s.LookupTx(tx, branchID, variantID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &NotFoundError{Resource: "stock entry"}
	}
	// Clamp instead of erroring: releasing "too much" must never block a
	// cancellation, and reserved can never go negative.
	entry.Reserved -= qty
	if entry.Reserved < 0 {
		entry.Reserved = 0
	}
	if err := s.repo.UpdateQuantitiesTx(tx, entry.ID, entry.OnHand, entry.Reserved); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *stockService) ConsumeTx(tx *gorm.DB, branchID, variantID uuid.UUID, qty int) (*model.StockEntry, error) {
	entry, err := s.LookupTx(tx, branchID, variantID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &NotFoundError{Resource: "stock entry"}
	}
	if entry.Reserved < qty {
		return nil, &InsufficientReservationError{VariantID: variantID, Reserved: entry.Reserved, Requested: qty}
	}
	entry.OnHand -= qty
	entry.Reserved -= qty
	if err := s.repo.UpdateQuantitiesTx(tx, entry.ID, entry.OnHand, entry.Reserved); err != nil {
		return nil, err
	}
	return entry, nil
}

// ── Read side ─────────────────────────────────────────────────────────────────

func (s *stockService) List(ctx context.Context, actor model.Actor, filter dto.StockListFilter) (*dto.StockListResponse, error) {
	branchID := actor.BranchID
	if filter.BranchID != "" {
		parsed, err := uuid.Parse(filter.BranchID)
		if err != nil {
			return nil, &NotFoundError{Resource: "branch"}
		}
		branchID = parsed
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}

	entries, total, err := s.repo.ListByBranch(ctx, branchID, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, *stockEntryToResponse(&entries[i]))
	}
	return &dto.StockListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *stockService) Alerts(ctx context.Context, actor model.Actor) ([]dto.StockAlertResponse, error) {
	entries, err := s.repo.ListBelowMinimum(ctx, actor.BranchID)
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.StockAlertResponse, 0, len(entries))
	for _, e := range entries {
		a := dto.StockAlertResponse{
			VariantID: e.VariantID.String(),
			OnHand:    e.OnHand,
			MinQty:    e.MinQty,
		}
		if e.Variant != nil {
			a.SKU = e.Variant.SKU
			a.Name = e.Variant.Name
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

func (s *stockService) UpdateThresholds(ctx context.Context, actor model.Actor, variantID uuid.UUID, req dto.UpdateThresholdsRequest) (*dto.StockEntryResponse, error) {
	var entry *model.StockEntry
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		found, err := s.LookupTx(tx, actor.BranchID, variantID)
		if err != nil {
			return err
		}
		if found == nil {
			return &NotFoundError{Resource: "stock entry"}
		}
		found.MinQty = req.MinQty
		found.MaxQty = req.MaxQty
		entry = found
		return tx.Model(&model.StockEntry{}).Where("id = ?", found.ID).
			Updates(map[string]interface{}{"min_qty": req.MinQty, "max_qty": req.MaxQty}).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return stockEntryToResponse(entry), nil
}

func stockEntryToResponse(e *model.StockEntry) *dto.StockEntryResponse {
	resp := &dto.StockEntryResponse{
		ID:        e.ID.String(),
		BranchID:  e.BranchID.String(),
		VariantID: e.VariantID.String(),
		OnHand:    e.OnHand,
		Reserved:  e.Reserved,
		Available: e.Available(),
		MinQty:    e.MinQty,
		MaxQty:    e.MaxQty,
	}
	if e.Variant != nil {
		resp.SKU = e.Variant.SKU
		resp.Name = e.Variant.Name
	}
	return resp
}
