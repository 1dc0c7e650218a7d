package model

import "time"

// EventStatus is the lifecycle state of a split event.
type EventStatus string

const (
	EventOpen      EventStatus = "open"
	EventSettled   EventStatus = "settled"
	EventCancelled EventStatus = "cancelled"
)

// Participant is one person (or household) in a split event. Weight scales
// their share of the pool: 1.0 for a couple, 0.5 for a single, by convention.
// AmountPaid is the sum of receipts they fronted.
type Participant struct {
	ID         string  `firestore:"id" json:"id"`
	Name       string  `firestore:"name" json:"name"`
	Weight     float64 `firestore:"weight" json:"weight"`
	IsPayer    bool    `firestore:"isPayer" json:"isPayer"`
	AmountPaid float64 `firestore:"amountPaid" json:"amountPaid"`
}

// Receipt is a single expense fronted by a participant within an event.
type Receipt struct {
	ID            string    `firestore:"id" json:"id"`
	Description   string    `firestore:"description" json:"description"`
	Amount        float64   `firestore:"amount" json:"amount"`
	PaidByID      string    `firestore:"paidById" json:"paidById"`
	PurchaseDate  time.Time `firestore:"purchaseDate" json:"purchaseDate"`
	CreatedAt     time.Time `firestore:"createdAt" json:"createdAt"`
}

// SplitEvent is a shared bill: a set of weighted participants, the receipts
// they fronted, and cached totals. TotalAmount and TotalWeights are recomputed
// whenever participants or receipts change.
type SplitEvent struct {
	ID           string        `firestore:"id" json:"id"`
	HostUserID   string        `firestore:"hostUserId" json:"hostUserId"`
	Name         string        `firestore:"name" json:"name"`
	Description  string        `firestore:"description" json:"description,omitempty"`
	EventDate    time.Time     `firestore:"eventDate" json:"eventDate"`
	Status       EventStatus   `firestore:"status" json:"status"`
	Participants []Participant `firestore:"participants" json:"participants"`
	Receipts     []Receipt     `firestore:"receipts" json:"receipts"`
	TotalAmount  float64       `firestore:"totalAmount" json:"totalAmount"`
	TotalWeights float64       `firestore:"totalWeights" json:"totalWeights"`
	CreatedAt    time.Time     `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `firestore:"updatedAt" json:"updatedAt"`
}

// RecomputeTotals refreshes the cached sums and each participant's AmountPaid
// from the receipt list.
func (e *SplitEvent) RecomputeTotals() {
	e.TotalAmount = 0
	e.TotalWeights = 0
	paid := make(map[string]float64, len(e.Participants))
	for _, r := range e.Receipts {
		e.TotalAmount += r.Amount
		paid[r.PaidByID] += r.Amount
	}
	for i := range e.Participants {
		e.TotalWeights += e.Participants[i].Weight
		e.Participants[i].AmountPaid = paid[e.Participants[i].ID]
	}
}
