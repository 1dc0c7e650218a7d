package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/store"
)

func newSplitService(st store.Store) *SplitService {
	svc := NewSplitService(st)
	svc.now = fixedClock(testNow)
	return svc
}

func houseTripInput() EventInput {
	return EventInput{
		Name:      "Beach house weekend",
		EventDate: time.Date(2025, time.March, 21, 0, 0, 0, 0, time.UTC),
		Participants: []model.Participant{
			{Name: "Ana & Bruno", Weight: 1.0, IsPayer: true},
			{Name: "Carla", Weight: 0.5},
			{Name: "Diego & Elisa", Weight: 1.0},
		},
	}
}

func TestCreateEventAssignsIDsAndTotals(t *testing.T) {
	ctx := context.Background()
	svc := newSplitService(store.NewMemoryStore())

	event, err := svc.CreateEvent(ctx, "host-1", houseTripInput())
	require.NoError(t, err)
	assert.Equal(t, model.EventOpen, event.Status)
	assert.Equal(t, 2.5, event.TotalWeights)
	assert.Zero(t, event.TotalAmount)
	for _, p := range event.Participants {
		assert.NotEmpty(t, p.ID)
	}
}

func TestCreateEventValidation(t *testing.T) {
	ctx := context.Background()
	svc := newSplitService(store.NewMemoryStore())

	base := houseTripInput()

	noName := base
	noName.Name = ""

	noParticipants := base
	noParticipants.Participants = nil

	zeroWeight := houseTripInput()
	zeroWeight.Participants[1].Weight = 0

	noPayer := houseTripInput()
	noPayer.Participants[0].IsPayer = false

	twoPayers := houseTripInput()
	twoPayers.Participants[1].IsPayer = true

	for name, in := range map[string]EventInput{
		"missing name":    noName,
		"no participants": noParticipants,
		"zero weight":     zeroWeight,
		"no payer":        noPayer,
		"two payers":      twoPayers,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, "host-1", in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestReceiptsUpdateCachedTotals(t *testing.T) {
	ctx := context.Background()
	svc := newSplitService(store.NewMemoryStore())

	event, err := svc.CreateEvent(ctx, "host-1", houseTripInput())
	require.NoError(t, err)

	purchase := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	event, err = svc.AddReceipt(ctx, "host-1", event.ID, ReceiptInput{
		Description: "Groceries", Amount: 300, PaidByID: event.Participants[0].ID, PurchaseDate: purchase,
	})
	require.NoError(t, err)
	event, err = svc.AddReceipt(ctx, "host-1", event.ID, ReceiptInput{
		Description: "Fuel", Amount: 200, PaidByID: event.Participants[1].ID, PurchaseDate: purchase,
	})
	require.NoError(t, err)

	assert.Equal(t, 500.0, event.TotalAmount)
	assert.Equal(t, 300.0, event.Participants[0].AmountPaid)
	assert.Equal(t, 200.0, event.Participants[1].AmountPaid)
	assert.Zero(t, event.Participants[2].AmountPaid)

	event, err = svc.RemoveReceipt(ctx, "host-1", event.ID, event.Receipts[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, event.TotalAmount)
	assert.Zero(t, event.Participants[1].AmountPaid)
}

func TestAddReceiptValidation(t *testing.T) {
	ctx := context.Background()
	svc := newSplitService(store.NewMemoryStore())

	event, err := svc.CreateEvent(ctx, "host-1", houseTripInput())
	require.NoError(t, err)

	var verr *ValidationError
	_, err = svc.AddReceipt(ctx, "host-1", event.ID, ReceiptInput{Description: "x", Amount: -5, PaidByID: event.Participants[0].ID})
	require.ErrorAs(t, err, &verr)

	_, err = svc.AddReceipt(ctx, "host-1", event.ID, ReceiptInput{Description: "x", Amount: 10, PaidByID: "stranger"})
	require.ErrorAs(t, err, &verr)

	_, err = svc.SetStatus(ctx, "host-1", event.ID, model.EventSettled)
	require.NoError(t, err)
	_, err = svc.AddReceipt(ctx, "host-1", event.ID, ReceiptInput{Description: "late", Amount: 10, PaidByID: event.Participants[0].ID})
	require.ErrorAs(t, err, &verr)
}

func TestCalculateWeightedSplitAndSettlements(t *testing.T) {
	ctx := context.Background()
	svc := newSplitService(store.NewMemoryStore())

	event, err := svc.CreateEvent(ctx, "host-1", houseTripInput())
	require.NoError(t, err)

	purchase := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	_, err = svc.AddReceipt(ctx, "host-1", event.ID, ReceiptInput{
		Description: "Everything", Amount: 500, PaidByID: event.Participants[0].ID, PurchaseDate: purchase,
	})
	require.NoError(t, err)

	summary, err := svc.Calculate(ctx, "host-1", event.ID)
	require.NoError(t, err)
	require.Len(t, summary.Calculations, 3)
	assert.Equal(t, 500.0, summary.TotalAmount)

	// Base share 500/2.5 = 200; weights 1.0, 0.5, 1.0.
	assert.InDelta(t, 200.0, summary.Calculations[0].Share, 1e-9)
	assert.InDelta(t, 100.0, summary.Calculations[1].Share, 1e-9)
	assert.InDelta(t, 200.0, summary.Calculations[2].Share, 1e-9)
	assert.InDelta(t, 300.0, summary.Calculations[0].Balance, 1e-9)

	// Both debtors pay the single payer.
	require.Len(t, summary.Settlements, 2)
	for _, s := range summary.Settlements {
		assert.Equal(t, event.Participants[0].ID, s.ToID)
	}
	total := summary.Settlements[0].Amount + summary.Settlements[1].Amount
	assert.InDelta(t, 300.0, total, 1e-9)
}

func TestEventOwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newSplitService(st)

	event, err := svc.CreateEvent(ctx, "host-1", houseTripInput())
	require.NoError(t, err)

	_, err = svc.GetEvent(ctx, "host-2", event.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.Calculate(ctx, "host-2", event.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteEvent(ctx, "host-2", event.ID), store.ErrNotFound)

	events, err := svc.ListEvents(ctx, "host-2")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestUpdateEventRejectsOrphanedReceipts(t *testing.T) {
	ctx := context.Background()
	svc := newSplitService(store.NewMemoryStore())

	event, err := svc.CreateEvent(ctx, "host-1", houseTripInput())
	require.NoError(t, err)
	event, err = svc.AddReceipt(ctx, "host-1", event.ID, ReceiptInput{
		Description: "Groceries", Amount: 100, PaidByID: event.Participants[2].ID,
		PurchaseDate: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	smaller := houseTripInput()
	smaller.Participants = []model.Participant{
		{ID: event.Participants[0].ID, Name: "Ana & Bruno", Weight: 1.0, IsPayer: true},
		{ID: event.Participants[1].ID, Name: "Carla", Weight: 0.5},
	}
	_, err = svc.UpdateEvent(ctx, "host-1", event.ID, smaller)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
