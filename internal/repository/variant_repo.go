package repository

import (
	"context"

	"fixflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VariantFilter defines filters for listing product variants.
type VariantFilter struct {
	SKU    string
	Name   string
	Active string // "false" = inactive, "all" = everything, default active only
	Page   int
	Limit  int
}

type VariantRepository interface {
	Create(ctx context.Context, v *model.ProductVariant) error
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*model.ProductVariant, error)
	List(ctx context.Context, orgID uuid.UUID, filter VariantFilter) ([]model.ProductVariant, int64, error)
	Update(ctx context.Context, v *model.ProductVariant) error
	SoftDelete(ctx context.Context, orgID, id uuid.UUID) error
}

type variantRepo struct{ db *gorm.DB }

func NewVariantRepository(db *gorm.DB) VariantRepository { return &variantRepo{db: db} }

func (r *variantRepo) Create(ctx context.Context, v *model.ProductVariant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *variantRepo) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&v).Error
	return &v, err
}

func (r *variantRepo) List(ctx context.Context, orgID uuid.UUID, filter VariantFilter) ([]model.ProductVariant, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ProductVariant{}).Where("organization_id = ?", orgID)

	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}
	if filter.SKU != "" {
		q = q.Where("sku = ?", filter.SKU)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
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

	var variants []model.ProductVariant
	err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&variants).Error
	return variants, total, err
}

func (r *variantRepo) Update(ctx context.Context, v *model.ProductVariant) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *variantRepo) SoftDelete(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Update("active", false).Error
}
