package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateTicketRequest struct {
	BranchID      string  `json:"branch_id"      validate:"required,uuid"`
	CustomerName  string  `json:"customer_name"  validate:"required"`
	CustomerPhone string  `json:"customer_phone" validate:"omitempty,max=32"`
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
	DeviceType    string  `json:"device_type"    validate:"required"`
	DeviceBrand   string  `json:"device_brand"`
	DeviceModel   string  `json:"device_model"`
	DeviceSerial  *string `json:"device_serial"`
	Problem       string  `json:"problem"        validate:"required"`
	// EstimatedCost: optional first quote given at reception.
	EstimatedCost *decimal.Decimal `json:"estimated_cost" validate:"omitempty,min=0"`
}

type AddPartRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type TransitionTicketRequest struct {
	TargetState string  `json:"target_state" validate:"required,oneof=RECEIVED DIAGNOSING AWAITING_PART IN_REPAIR REPAIRED DELIVERED CANCELED"`
	Notes       *string `json:"notes"`
	// Field edits applied together with the transition; omitted fields keep
	// their previous values.
	Diagnosis     *string          `json:"diagnosis"`
	Solution      *string          `json:"solution"`
	EstimatedCost *decimal.Decimal `json:"estimated_cost" validate:"omitempty,min=0"`
	FinalCost     *decimal.Decimal `json:"final_cost"     validate:"omitempty,min=0"`
}

// TicketFilter is bound from the query string of GET /v1/tickets.
type TicketFilter struct {
	BranchID string `form:"branch_id" validate:"omitempty,uuid"`
	State    string `form:"state"     validate:"omitempty,oneof=RECEIVED DIAGNOSING AWAITING_PART IN_REPAIR REPAIRED DELIVERED CANCELED"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TicketPartResponse struct {
	ID        string `json:"id"`
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	State     string `json:"state"`
}

type TicketResponse struct {
	ID            string               `json:"id"`
	Folio         string               `json:"folio"`
	BranchID      string               `json:"branch_id"`
	CustomerName  string               `json:"customer_name"`
	CustomerPhone string               `json:"customer_phone,omitempty"`
	CustomerEmail *string              `json:"customer_email,omitempty"`
	DeviceType    string               `json:"device_type"`
	DeviceBrand   string               `json:"device_brand,omitempty"`
	DeviceModel   string               `json:"device_model,omitempty"`
	DeviceSerial  *string              `json:"device_serial,omitempty"`
	Problem       string               `json:"problem"`
	Diagnosis     *string              `json:"diagnosis,omitempty"`
	Solution      *string              `json:"solution,omitempty"`
	State         string               `json:"state"`
	EstimatedCost *decimal.Decimal     `json:"estimated_cost,omitempty"`
	FinalCost     *decimal.Decimal     `json:"final_cost,omitempty"`
	Parts         []TicketPartResponse `json:"parts"`
	CreatedAt     string               `json:"created_at"`
	UpdatedAt     string               `json:"updated_at"`
}

type TicketListResponse struct {
	Data  []TicketResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type TicketHistoryResponse struct {
	ID        string  `json:"id"`
	FromState *string `json:"from_state"`
	ToState   string  `json:"to_state"`
	Notes     *string `json:"notes,omitempty"`
	UserID    string  `json:"user_id"`
	CreatedAt string  `json:"created_at"`
}
