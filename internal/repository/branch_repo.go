package repository

import (
	"context"

	"fixflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BranchRepository is read-only from the core's point of view: branches are
// managed out of band and only looked up here (folio formatting, scoping).
type BranchRepository interface {
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*model.Branch, error)
	ListForOrg(ctx context.Context, orgID uuid.UUID) ([]model.Branch, error)
	Create(ctx context.Context, b *model.Branch) error
}

type branchRepo struct{ db *gorm.DB }

func NewBranchRepository(db *gorm.DB) BranchRepository { return &branchRepo{db: db} }

func (r *branchRepo) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*model.Branch, error) {
	var b model.Branch
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ? AND active = true", id, orgID).
		First(&b).Error
	return &b, err
}

func (r *branchRepo) ListForOrg(ctx context.Context, orgID uuid.UUID) ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND active = true", orgID).
		Order("code ASC").
		Find(&branches).Error
	return branches, err
}

func (r *branchRepo) Create(ctx context.Context, b *model.Branch) error {
	return r.db.WithContext(ctx).Create(b).Error
}
