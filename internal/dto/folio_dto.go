package dto

// FolioPreviewFilter is bound from the query string of GET /v1/folios/preview.
type FolioPreviewFilter struct {
	Prefix   string `form:"prefix"    validate:"required,alpha,max=10"`
	BranchID string `form:"branch_id" validate:"required,uuid"`
}

// FolioPreviewResponse is a UI hint only: the previewed folio is NOT
// reserved and may differ from the one actually issued under concurrency.
type FolioPreviewResponse struct {
	Folio string `json:"folio"`
}
