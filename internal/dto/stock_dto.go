package dto

// StockListFilter is bound from the query string of GET /v1/stock.
type StockListFilter struct {
	BranchID string `form:"branch_id" validate:"omitempty,uuid"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type StockEntryResponse struct {
	ID        string `json:"id"`
	BranchID  string `json:"branch_id"`
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	OnHand    int    `json:"on_hand"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
	MinQty    int    `json:"min_qty"`
	MaxQty    int    `json:"max_qty"`
}

type StockListResponse struct {
	Data  []StockEntryResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// StockAlertResponse flags an entry at or below its minimum threshold.
type StockAlertResponse struct {
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	OnHand    int    `json:"on_hand"`
	MinQty    int    `json:"min_qty"`
}

// UpdateThresholdsRequest sets min/max levels on an existing stock entry.
type UpdateThresholdsRequest struct {
	MinQty int `json:"min_qty" validate:"min=0"`
	MaxQty int `json:"max_qty" validate:"min=0"`
}
