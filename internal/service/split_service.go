package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/granaflow/backend/internal/model"
	"github.com/granaflow/backend/internal/split"
	"github.com/granaflow/backend/internal/store"
)

// SplitService manages split events, their receipts, and runs the
// settlement math.
type SplitService struct {
	store store.Store
	now   func() time.Time
}

func NewSplitService(st store.Store) *SplitService {
	return &SplitService{store: st, now: time.Now}
}

// EventInput carries the fields needed to create or replace an event's
// definition. Participant IDs are assigned on create when empty.
type EventInput struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	EventDate    time.Time           `json:"eventDate"`
	Participants []model.Participant `json:"participants"`
}

// ReceiptInput is one receipt to attach to an event.
type ReceiptInput struct {
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	PaidByID     string    `json:"paidById"`
	PurchaseDate time.Time `json:"purchaseDate"`
}

func validateParticipants(participants []model.Participant) error {
	if len(participants) == 0 {
		return Validationf("at least one participant is required")
	}
	payers := 0
	for _, p := range participants {
		if p.Name == "" {
			return Validationf("participant name is required")
		}
		if p.Weight <= 0 {
			return Validationf("participant %q weight must be positive", p.Name)
		}
		if p.IsPayer {
			payers++
		}
	}
	if payers != 1 {
		return Validationf("exactly one participant must be the payer, got %d", payers)
	}
	return nil
}

// CreateEvent stores a new open split event for the host.
func (s *SplitService) CreateEvent(ctx context.Context, hostUserID string, in EventInput) (*model.SplitEvent, error) {
	if in.Name == "" {
		return nil, Validationf("event name is required")
	}
	if err := validateParticipants(in.Participants); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	participants := make([]model.Participant, len(in.Participants))
	copy(participants, in.Participants)
	for i := range participants {
		if participants[i].ID == "" {
			participants[i].ID = uuid.New().String()
		}
	}
	event := &model.SplitEvent{
		ID:           uuid.New().String(),
		HostUserID:   hostUserID,
		Name:         in.Name,
		Description:  in.Description,
		EventDate:    in.EventDate,
		Status:       model.EventOpen,
		Participants: participants,
		Receipts:     []model.Receipt{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	event.RecomputeTotals()
	if err := s.store.CreateSplitEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("creating split event: %w", err)
	}
	return event, nil
}

// GetEvent returns an event owned by hostUserID.
func (s *SplitService) GetEvent(ctx context.Context, hostUserID, eventID string) (*model.SplitEvent, error) {
	event, err := s.store.GetSplitEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.HostUserID != hostUserID {
		return nil, store.ErrNotFound
	}
	return event, nil
}

// ListEvents returns the host's events, newest first.
func (s *SplitService) ListEvents(ctx context.Context, hostUserID string) ([]*model.SplitEvent, error) {
	return s.store.ListSplitEvents(ctx, hostUserID)
}

// UpdateEvent replaces an event's name, description, date and
// participants. Receipts referencing a removed participant block the
// update.
func (s *SplitService) UpdateEvent(ctx context.Context, hostUserID, eventID string, in EventInput) (*model.SplitEvent, error) {
	event, err := s.GetEvent(ctx, hostUserID, eventID)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, Validationf("event name is required")
	}
	if err := validateParticipants(in.Participants); err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(in.Participants))
	for i := range in.Participants {
		if in.Participants[i].ID == "" {
			in.Participants[i].ID = uuid.New().String()
		}
		ids[in.Participants[i].ID] = true
	}
	for _, r := range event.Receipts {
		if !ids[r.PaidByID] {
			return nil, Validationf("receipt %q is paid by a participant not in the event", r.Description)
		}
	}
	event.Name = in.Name
	event.Description = in.Description
	event.EventDate = in.EventDate
	event.Participants = in.Participants
	event.RecomputeTotals()
	event.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateSplitEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("updating split event: %w", err)
	}
	return event, nil
}

// SetStatus moves an event between open, settled and cancelled.
func (s *SplitService) SetStatus(ctx context.Context, hostUserID, eventID string, status model.EventStatus) (*model.SplitEvent, error) {
	switch status {
	case model.EventOpen, model.EventSettled, model.EventCancelled:
	default:
		return nil, Validationf("unknown event status %q", status)
	}
	event, err := s.GetEvent(ctx, hostUserID, eventID)
	if err != nil {
		return nil, err
	}
	event.Status = status
	event.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateSplitEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("updating split event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event and its receipts.
func (s *SplitService) DeleteEvent(ctx context.Context, hostUserID, eventID string) error {
	if _, err := s.GetEvent(ctx, hostUserID, eventID); err != nil {
		return err
	}
	return s.store.DeleteSplitEvent(ctx, eventID)
}

// AddReceipt attaches a receipt to an event and refreshes the cached
// totals.
func (s *SplitService) AddReceipt(ctx context.Context, hostUserID, eventID string, in ReceiptInput) (*model.SplitEvent, error) {
	event, err := s.GetEvent(ctx, hostUserID, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != model.EventOpen {
		return nil, Validationf("receipts can only be added to open events")
	}
	if in.Amount <= 0 {
		return nil, Validationf("receipt amount must be positive")
	}
	payerFound := false
	for _, p := range event.Participants {
		if p.ID == in.PaidByID {
			payerFound = true
			break
		}
	}
	if !payerFound {
		return nil, Validationf("paidById %q is not a participant in this event", in.PaidByID)
	}
	event.Receipts = append(event.Receipts, model.Receipt{
		ID:           uuid.New().String(),
		Description:  in.Description,
		Amount:       in.Amount,
		PaidByID:     in.PaidByID,
		PurchaseDate: in.PurchaseDate,
		CreatedAt:    s.now().UTC(),
	})
	event.RecomputeTotals()
	event.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateSplitEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("adding receipt: %w", err)
	}
	return event, nil
}

// RemoveReceipt detaches a receipt and refreshes the cached totals.
func (s *SplitService) RemoveReceipt(ctx context.Context, hostUserID, eventID, receiptID string) (*model.SplitEvent, error) {
	event, err := s.GetEvent(ctx, hostUserID, eventID)
	if err != nil {
		return nil, err
	}
	kept := event.Receipts[:0]
	found := false
	for _, r := range event.Receipts {
		if r.ID == receiptID {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return nil, store.ErrNotFound
	}
	event.Receipts = kept
	event.RecomputeTotals()
	event.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateSplitEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("removing receipt: %w", err)
	}
	return event, nil
}

// SplitSummary is the per-participant breakdown plus the transfers that
// settle the event.
type SplitSummary struct {
	EventID      string              `json:"eventId"`
	TotalAmount  float64             `json:"totalAmount"`
	Calculations []split.Calculation `json:"calculations"`
	Settlements  []split.Settlement  `json:"settlements"`
}

// Calculate runs the split and settlement math for an event. It does not
// mutate the event.
func (s *SplitService) Calculate(ctx context.Context, hostUserID, eventID string) (*SplitSummary, error) {
	event, err := s.GetEvent(ctx, hostUserID, eventID)
	if err != nil {
		return nil, err
	}
	event.RecomputeTotals()
	calcs := split.CalculateSplits(event.Participants, event.TotalAmount)
	settlements := split.CalculateSettlements(calcs)
	return &SplitSummary{
		EventID:      event.ID,
		TotalAmount:  event.TotalAmount,
		Calculations: calcs,
		Settlements:  settlements,
	}, nil
}
