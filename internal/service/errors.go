package service

import (
	"fmt"

	"fixflow/internal/model"

	"github.com/google/uuid"
)

// Typed domain errors. Handlers map these to HTTP statuses and machine
// readable codes via errors.As — services never know about HTTP.

// NotFoundError covers both "does not exist" and "exists but outside the
// actor's organization". The two are deliberately indistinguishable so that
// cross-tenant probing cannot confirm existence.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// InvalidTransitionError carries the current state and the allowed targets
// so the UI can react without a second round trip.
type InvalidTransitionError struct {
	Current model.TicketState
	Target  model.TicketState
	Allowed []model.TicketState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s (allowed: %v)", e.Current, e.Target, e.Allowed)
}

// PartNotAttachableError rejects attaching a part to a ticket whose repair
// has already started or that reached a terminal state. Distinct from
// InvalidTransitionError: no transition was requested.
type PartNotAttachableError struct {
	State model.TicketState
}

func (e *PartNotAttachableError) Error() string {
	return fmt.Sprintf("cannot attach parts to a ticket in state %s", e.State)
}

// InsufficientStockError is returned when an exit, sale or reservation would
// drive the available quantity below zero.
type InsufficientStockError struct {
	VariantID uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: available %d, requested %d",
		e.VariantID, e.Available, e.Requested)
}

// InsufficientReservationError is returned when a consume exceeds the
// currently reserved quantity. Release never returns it — over-releases are
// clamped so cancellation can always proceed.
type InsufficientReservationError struct {
	VariantID uuid.UUID
	Reserved  int
	Requested int
}

func (e *InsufficientReservationError) Error() string {
	return fmt.Sprintf("insufficient reservation for variant %s: reserved %d, requested %d",
		e.VariantID, e.Reserved, e.Requested)
}

// ConflictError wraps a transaction that failed to commit because of a
// concurrent conflicting write. Retryable by the caller; the services never
// retry internally to avoid double-applying stock deltas.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("transaction conflict: %v", e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }
