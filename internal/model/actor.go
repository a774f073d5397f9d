package model

import "github.com/google/uuid"

// Actor carries the identity and scope of the authenticated caller, plus
// client metadata recorded on audit rows. Built by the HTTP layer from the
// JWT claims — the services never parse tokens themselves.
type Actor struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	BranchID       uuid.UUID
	IP             string
	UserAgent      string
}
