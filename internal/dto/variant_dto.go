package dto

type CreateVariantRequest struct {
	SKU         string  `json:"sku"  validate:"required,max=64"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

type UpdateVariantRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// VariantFilter is bound from the query string of GET /v1/variants.
type VariantFilter struct {
	SKU    string `form:"sku"`
	Name   string `form:"name"`
	Active string `form:"active"` // "false" = inactive, "all" = everything
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VariantResponse struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Active      bool    `json:"active"`
	CreatedAt   string  `json:"created_at"`
}

type VariantListResponse struct {
	Data  []VariantResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
