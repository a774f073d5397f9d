package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixflow/internal/model"
	"fixflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketFolioPrefix is the fixed document-family prefix for repair tickets.
const TicketFolioPrefix = "REP"

// FolioService mints human-readable sequential document identifiers with the
// shape {PREFIX}-{BRANCHCODE}-{YYYYMM}-{NNNN}. Receipts and reports outside
// this service rely on that exact shape — do not change it.
type FolioService interface {
	// Next issues the next folio for (prefix, branch, current period) in its
	// own transaction.
	Next(ctx context.Context, actor model.Actor, prefix string, branchID uuid.UUID) (string, error)
	// NextTx issues the next folio inside the caller's transaction, so the
	// folio and the document it labels commit or roll back together.
	NextTx(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, prefix string, branchID uuid.UUID) (string, error)
	// Preview formats the folio one ahead of the last persisted value
	// WITHOUT mutating state. UI hint only: it races against concurrent
	// Next calls by design and must never label a persisted document.
	Preview(ctx context.Context, actor model.Actor, prefix string, branchID uuid.UUID) (string, error)
}

type folioService struct {
	repo     repository.FolioSequenceRepository
	branches repository.BranchRepository
}

func NewFolioService(repo repository.FolioSequenceRepository, branches repository.BranchRepository) FolioService {
	return &folioService{repo: repo, branches: branches}
}

// currentPeriod returns the calendar period token, e.g. "202506".
func currentPeriod() string {
	return time.Now().UTC().Format("200601")
}

func formatFolio(prefix, branchCode, period string, seq int) string {
	return fmt.Sprintf("%s-%s-%s-%04d", prefix, branchCode, period, seq)
}

func (s *folioService) Next(ctx context.Context, actor model.Actor, prefix string, branchID uuid.UUID) (string, error) {
	var folio string
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		folio, err = s.NextTx(ctx, tx, actor.OrganizationID, prefix, branchID)
		return err
	})
	if txErr != nil {
		return "", txErr
	}
	return folio, nil
}

func (s *folioService) NextTx(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, prefix string, branchID uuid.UUID) (string, error) {
	branch, err := s.branches.FindByIDForOrg(ctx, orgID, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &NotFoundError{Resource: "branch"}
		}
		return "", err
	}

	period := currentPeriod()
	seq, err := s.repo.NextValueTx(ctx, tx, prefix, branchID, period)
	if err != nil {
		return "", err
	}
	return formatFolio(prefix, branch.Code, period, seq), nil
}

func (s *folioService) Preview(ctx context.Context, actor model.Actor, prefix string, branchID uuid.UUID) (string, error) {
	branch, err := s.branches.FindByIDForOrg(ctx, actor.OrganizationID, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &NotFoundError{Resource: "branch"}
		}
		return "", err
	}

	period := currentPeriod()
	current, err := s.repo.CurrentValue(ctx, prefix, branchID, period)
	if err != nil {
		return "", err
	}
	return formatFolio(prefix, branch.Code, period, current+1), nil
}
