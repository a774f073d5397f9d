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

type VariantService interface {
	Create(ctx context.Context, actor model.Actor, req dto.CreateVariantRequest) (*dto.VariantResponse, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.VariantResponse, error)
	List(ctx context.Context, actor model.Actor, filter dto.VariantFilter) (*dto.VariantListResponse, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateVariantRequest) (*dto.VariantResponse, error)
	Deactivate(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type variantService struct {
	repo repository.VariantRepository
}

func NewVariantService(repo repository.VariantRepository) VariantService {
	return &variantService{repo: repo}
}

func (s *variantService) Create(ctx context.Context, actor model.Actor, req dto.CreateVariantRequest) (*dto.VariantResponse, error) {
	v := &model.ProductVariant{
		OrganizationID: actor.OrganizationID,
		SKU:            req.SKU,
		Name:           req.Name,
		Description:    req.Description,
		Active:         true,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return variantToResponse(v), nil
}

func (s *variantService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*dto.VariantResponse, error) {
	v, err := s.repo.FindByIDForOrg(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "variant"}
		}
		return nil, err
	}
	return variantToResponse(v), nil
}

func (s *variantService) List(ctx context.Context, actor model.Actor, filter dto.VariantFilter) (*dto.VariantListResponse, error) {
	repoFilter := repository.VariantFilter{
		SKU:    filter.SKU,
		Name:   filter.Name,
		Active: filter.Active,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	variants, total, err := s.repo.List(ctx, actor.OrganizationID, repoFilter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VariantResponse, 0, len(variants))
	for i := range variants {
		items = append(items, *variantToResponse(&variants[i]))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}
	return &dto.VariantListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *variantService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req dto.UpdateVariantRequest) (*dto.VariantResponse, error) {
	v, err := s.repo.FindByIDForOrg(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "variant"}
		}
		return nil, err
	}
	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Description != nil {
		v.Description = req.Description
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return variantToResponse(v), nil
}

func (s *variantService) Deactivate(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, actor.OrganizationID, id)
}

func variantToResponse(v *model.ProductVariant) *dto.VariantResponse {
	return &dto.VariantResponse{
		ID:          v.ID.String(),
		SKU:         v.SKU,
		Name:        v.Name,
		Description: v.Description,
		Active:      v.Active,
		CreatedAt:   v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
