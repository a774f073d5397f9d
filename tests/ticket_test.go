package tests

import (
	"context"
	"fmt"
	"testing"

	"fixflow/internal/dto"
	"fixflow/internal/model"
	"fixflow/internal/repository"
	"fixflow/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicketService(f *fixture) service.TicketService {
	stockSvc := service.NewStockService(f.stock)
	folioSvc := service.NewFolioService(f.folioRepo, f.branches)
	movementSvc := service.NewMovementService(f.movements, stockSvc, folioSvc, f.variants)
	return service.NewTicketService(f.tickets, stockSvc, movementSvc, folioSvc, nil)
}

func createTicket(t *testing.T, f *fixture, svc service.TicketService) *dto.TicketResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), f.actor, dto.CreateTicketRequest{
		BranchID:     f.branch.ID.String(),
		CustomerName: "Alex Demo",
		DeviceType:   "smartphone",
		DeviceBrand:  "Acme",
		DeviceModel:  "A1",
		Problem:      "does not power on",
	})
	require.NoError(t, err)
	return resp
}

func transitionTo(t *testing.T, f *fixture, svc service.TicketService, id uuid.UUID, states ...model.TicketState) *dto.TicketResponse {
	t.Helper()
	var resp *dto.TicketResponse
	var err error
	for _, s := range states {
		resp, err = svc.Transition(context.Background(), f.actor, id, dto.TransitionTicketRequest{
			TargetState: string(s),
		})
		require.NoError(t, err)
	}
	return resp
}

func TestCreateTicketStartsReceivedWithFolio(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)

	resp := createTicket(t, f, svc)

	assert.Equal(t, "RECEIVED", resp.State)
	assert.Equal(t, fmt.Sprintf("REP-CEN-%s-0001", period()), resp.Folio)

	history, err := svc.History(context.Background(), f.actor, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromState)
	assert.Equal(t, "RECEIVED", history[0].ToState)
}

func TestAddPartReservesStock(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)
	v := f.seedVariant("SCR-001", "Screen 6.1")
	f.seedStock(v.ID, 5, 0)

	ticket := createTicket(t, f, svc)
	resp, err := svc.AddPart(context.Background(), f.actor, uuid.MustParse(ticket.ID), dto.AddPartRequest{
		VariantID: v.ID.String(),
		Quantity:  2,
	})
	require.NoError(t, err)
	require.Len(t, resp.Parts, 1)
	assert.Equal(t, "RESERVED", resp.Parts[0].State)

	entry, err := f.stock.Find(context.Background(), f.branch.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, entry.OnHand)
	assert.Equal(t, 2, entry.Reserved)
}

func TestAddPartInsufficientStockFails(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)
	v := f.seedVariant("BAT-001", "Battery")
	f.seedStock(v.ID, 1, 0)

	ticket := createTicket(t, f, svc)
	_, err := svc.AddPart(context.Background(), f.actor, uuid.MustParse(ticket.ID), dto.AddPartRequest{
		VariantID: v.ID.String(),
		Quantity:  2,
	})
	var insuff *service.InsufficientStockError
	require.ErrorAs(t, err, &insuff)

	loaded, err := svc.Get(context.Background(), f.actor, uuid.MustParse(ticket.ID))
	require.NoError(t, err)
	assert.Empty(t, loaded.Parts)
}

func TestTransitionTable(t *testing.T) {
	allStates := []model.TicketState{
		model.TicketReceived, model.TicketDiagnosing, model.TicketAwaitingPart,
		model.TicketInRepair, model.TicketRepaired, model.TicketDelivered,
		model.TicketCanceled,
	}

	for from, allowed := range service.AllowedTransitions {
		allowedSet := make(map[model.TicketState]bool, len(allowed))
		for _, s := range allowed {
			allowedSet[s] = true
		}

		for _, target := range allStates {
			f := newFixture()
			svc := newTicketService(f)
			v := f.seedVariant("PRT-001", "Spare part")
			f.seedStock(v.ID, 5, 0)
			ticket := createTicket(t, f, svc)
			id := uuid.MustParse(ticket.ID)
			_, aErr := svc.AddPart(context.Background(), f.actor, id, dto.AddPartRequest{
				VariantID: v.ID.String(),
				Quantity:  1,
			})
			require.NoError(t, aErr)

			// Force the starting state directly; the transition under test is
			// the only one exercised through the service.
			f.tickets.tickets[id].State = from
			historyBefore := len(f.tickets.history)

			_, err := svc.Transition(context.Background(), f.actor, id, dto.TransitionTicketRequest{
				TargetState: string(target),
			})

			if allowedSet[target] {
				assert.NoError(t, err, "%s -> %s should be allowed", from, target)
			} else {
				var invalid *service.InvalidTransitionError
				require.ErrorAs(t, err, &invalid, "%s -> %s should be rejected", from, target)
				assert.Equal(t, from, invalid.Current)
				// A rejected transition leaves state, history and parts
				// exactly as they were.
				assert.Equal(t, from, f.tickets.tickets[id].State)
				assert.Len(t, f.tickets.history, historyBefore)
				for _, p := range f.tickets.parts {
					assert.Equal(t, model.PartReserved, p.State)
				}
			}
		}
	}
}

func TestTransitionAppendsHistory(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)
	ticket := createTicket(t, f, svc)
	id := uuid.MustParse(ticket.ID)

	notes := "started diagnosis"
	resp, err := svc.Transition(context.Background(), f.actor, id, dto.TransitionTicketRequest{
		TargetState: "DIAGNOSING",
		Notes:       &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "DIAGNOSING", resp.State)

	history, err := svc.History(context.Background(), f.actor, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[1].FromState)
	assert.Equal(t, "RECEIVED", *history[1].FromState)
	assert.Equal(t, "DIAGNOSING", history[1].ToState)
	require.NotNil(t, history[1].Notes)
	assert.Equal(t, notes, *history[1].Notes)
}

func TestEnteringRepairConsumesReservedParts(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)
	v := f.seedVariant("SCR-001", "Screen 6.1")
	f.seedStock(v.ID, 5, 0)

	ticket := createTicket(t, f, svc)
	id := uuid.MustParse(ticket.ID)
	_, err := svc.AddPart(context.Background(), f.actor, id, dto.AddPartRequest{
		VariantID: v.ID.String(),
		Quantity:  2,
	})
	require.NoError(t, err)

	resp := transitionTo(t, f, svc, id, model.TicketDiagnosing, model.TicketInRepair)
	assert.Equal(t, "IN_REPAIR", resp.State)
	require.Len(t, resp.Parts, 1)
	assert.Equal(t, "CONSUMED", resp.Parts[0].State)

	// Stock dropped permanently and the hold is gone.
	entry, err := f.stock.Find(context.Background(), f.branch.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, entry.OnHand)
	assert.Equal(t, 0, entry.Reserved)

	// Exactly one EXIT movement, tied to the ticket.
	movements, _, err := f.movements.List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	m := movements[0]
	assert.Equal(t, model.MovementExit, m.Kind)
	assert.Equal(t, 2, m.Quantity)
	require.NotNil(t, m.TicketID)
	assert.Equal(t, id, *m.TicketID)
	assert.Equal(t, 5, m.StockBefore)
	assert.Equal(t, 3, m.StockAfter)
	require.NotNil(t, m.Reason)
	assert.Contains(t, *m.Reason, ticket.Folio)
}

func TestConsumeBeyondReservationFailsTransition(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)
	v := f.seedVariant("BAT-001", "Battery")
	f.seedStock(v.ID, 5, 0)

	ticket := createTicket(t, f, svc)
	id := uuid.MustParse(ticket.ID)
	_, err := svc.AddPart(context.Background(), f.actor, id, dto.AddPartRequest{
		VariantID: v.ID.String(),
		Quantity:  2,
	})
	require.NoError(t, err)

	// Sabotage the reservation behind the ticket's back.
	entry, err := f.stock.Find(context.Background(), f.branch.ID, v.ID)
	require.NoError(t, err)
	entry.Reserved = 1

	transitionTo(t, f, svc, id, model.TicketDiagnosing)
	_, err = svc.Transition(context.Background(), f.actor, id, dto.TransitionTicketRequest{
		TargetState: "IN_REPAIR",
	})
	var insuff *service.InsufficientReservationError
	require.ErrorAs(t, err, &insuff)
}

func TestCancelReleasesReservedParts(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)
	v := f.seedVariant("CAM-001", "Camera module")
	f.seedStock(v.ID, 4, 0)

	ticket := createTicket(t, f, svc)
	id := uuid.MustParse(ticket.ID)
	_, err := svc.AddPart(context.Background(), f.actor, id, dto.AddPartRequest{
		VariantID: v.ID.String(),
		Quantity:  3,
	})
	require.NoError(t, err)

	resp := transitionTo(t, f, svc, id, model.TicketCanceled)
	assert.Equal(t, "CANCELED", resp.State)
	require.Len(t, resp.Parts, 1)
	assert.Equal(t, "RELEASED", resp.Parts[0].State)

	// The hold went back to the pool; on-hand never moved.
	entry, err := f.stock.Find(context.Background(), f.branch.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, entry.OnHand)
	assert.Equal(t, 0, entry.Reserved)

	// Cancellation records no movement.
	movements, _, err := f.movements.List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestAddPartAfterRepairStartedIsRejected(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)
	v := f.seedVariant("SPK-001", "Speaker")
	f.seedStock(v.ID, 5, 0)

	ticket := createTicket(t, f, svc)
	id := uuid.MustParse(ticket.ID)
	transitionTo(t, f, svc, id, model.TicketDiagnosing, model.TicketInRepair)

	_, err := svc.AddPart(context.Background(), f.actor, id, dto.AddPartRequest{
		VariantID: v.ID.String(),
		Quantity:  1,
	})
	var blocked *service.PartNotAttachableError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, model.TicketInRepair, blocked.State)
	assert.Contains(t, blocked.Error(), "cannot attach parts")
}

func TestCrossOrgTicketIsNotFound(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)
	ticket := createTicket(t, f, svc)

	foreignActor := model.Actor{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		BranchID:       f.branch.ID,
	}
	_, err := svc.Get(context.Background(), foreignActor, uuid.MustParse(ticket.ID))
	var notFound *service.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestTransitionCarriesFieldEdits(t *testing.T) {
	f := newFixture()
	svc := newTicketService(f)
	ticket := createTicket(t, f, svc)
	id := uuid.MustParse(ticket.ID)

	diagnosis := "cracked logic board"
	resp, err := svc.Transition(context.Background(), f.actor, id, dto.TransitionTicketRequest{
		TargetState: "DIAGNOSING",
		Diagnosis:   &diagnosis,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Diagnosis)
	assert.Equal(t, diagnosis, *resp.Diagnosis)

	// Omitted fields keep their value on the next transition.
	resp = transitionTo(t, f, svc, id, model.TicketInRepair)
	require.NotNil(t, resp.Diagnosis)
	assert.Equal(t, diagnosis, *resp.Diagnosis)
}
