package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RecordMovementRequest struct {
	BranchID  string `json:"branch_id"  validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Kind      string `json:"kind"       validate:"required,oneof=ENTRY EXIT SALE ADJUSTMENT TRANSFER_OUT TRANSFER_IN"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// Folio: optional — when absent one is minted with the kind's prefix.
	Folio    *string `json:"folio"`
	TicketID *string `json:"ticket_id" validate:"omitempty,uuid"`
	Reason   *string `json:"reason"`
}

// MovementListFilter is bound from the query string of GET /v1/movements.
type MovementListFilter struct {
	BranchID  string `form:"branch_id"  validate:"omitempty,uuid"`
	VariantID string `form:"variant_id" validate:"omitempty,uuid"`
	Kind      string `form:"kind"       validate:"omitempty,oneof=ENTRY EXIT SALE ADJUSTMENT TRANSFER_OUT TRANSFER_IN"`
	TicketID  string `form:"ticket_id"  validate:"omitempty,uuid"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovementResponse struct {
	ID          string  `json:"id"`
	BranchID    string  `json:"branch_id"`
	VariantID   string  `json:"variant_id"`
	SKU         string  `json:"sku,omitempty"`
	Kind        string  `json:"kind"`
	Quantity    int     `json:"quantity"`
	Folio       string  `json:"folio"`
	TicketID    *string `json:"ticket_id,omitempty"`
	Reason      *string `json:"reason,omitempty"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	CreatedAt   string  `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
