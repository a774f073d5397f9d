package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fixflow/internal/model"
	"fixflow/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func period() string {
	return time.Now().UTC().Format("200601")
}

func TestFolioFormat(t *testing.T) {
	f := newFixture()
	svc := service.NewFolioService(f.folioRepo, f.branches)

	folio, err := svc.Next(context.Background(), f.actor, "REP", f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("REP-CEN-%s-0001", period()), folio)
}

func TestFolioSequenceIncrements(t *testing.T) {
	f := newFixture()
	svc := service.NewFolioService(f.folioRepo, f.branches)
	ctx := context.Background()

	first, err := svc.Next(ctx, f.actor, "ING", f.branch.ID)
	require.NoError(t, err)
	second, err := svc.Next(ctx, f.actor, "ING", f.branch.ID)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("ING-CEN-%s-0001", period()), first)
	assert.Equal(t, fmt.Sprintf("ING-CEN-%s-0002", period()), second)
}

func TestFolioSequencesIndependentPerPrefix(t *testing.T) {
	f := newFixture()
	svc := service.NewFolioService(f.folioRepo, f.branches)
	ctx := context.Background()

	_, err := svc.Next(ctx, f.actor, "ING", f.branch.ID)
	require.NoError(t, err)
	egr, err := svc.Next(ctx, f.actor, "EGR", f.branch.ID)
	require.NoError(t, err)

	// A different prefix starts its own counter at 1.
	assert.Equal(t, fmt.Sprintf("EGR-CEN-%s-0001", period()), egr)
}

func TestFolioPreviewDoesNotConsume(t *testing.T) {
	f := newFixture()
	svc := service.NewFolioService(f.folioRepo, f.branches)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, f.actor, "REP", f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("REP-CEN-%s-0001", period()), preview)

	// Preview again — still 0001, nothing was consumed.
	preview2, err := svc.Preview(ctx, f.actor, "REP", f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, preview, preview2)

	// The first actual issue gets the previewed value.
	issued, err := svc.Next(ctx, f.actor, "REP", f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, preview, issued)

	// And the preview now moves past it.
	preview3, err := svc.Preview(ctx, f.actor, "REP", f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("REP-CEN-%s-0002", period()), preview3)
}

func TestFolioBranchOutsideOrgIsNotFound(t *testing.T) {
	f := newFixture()
	svc := service.NewFolioService(f.folioRepo, f.branches)

	foreignActor := model.Actor{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(), // different organization
		BranchID:       f.branch.ID,
	}

	_, err := svc.Next(context.Background(), foreignActor, "REP", f.branch.ID)
	var notFound *service.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestFolioPrefixPerMovementKind(t *testing.T) {
	cases := map[model.MovementKind]string{
		model.MovementEntry:       "ING",
		model.MovementExit:        "EGR",
		model.MovementSale:        "VTA",
		model.MovementAdjustment:  "AJU",
		model.MovementTransferOut: "TRF_OUT",
		model.MovementTransferIn:  "TRF_IN",
	}
	for kind, want := range cases {
		assert.Equal(t, want, service.FolioPrefixFor(kind), "kind %s", kind)
	}
	// Unknown kinds fall back to the generic prefix.
	assert.Equal(t, "MOV", service.FolioPrefixFor(model.MovementKind("SOMETHING_ELSE")))
}
