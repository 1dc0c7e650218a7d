// Package split computes weighted shares and settlement transfers for a bill
// split among participants. Both functions are pure; callers decide what to do
// with the results.
package split

import (
	"sort"

	"github.com/granaflow/backend/internal/model"
)

// epsilon absorbs floating-point noise when comparing balances.
const epsilon = 0.01

// Calculation is one participant's slice of the pool.
type Calculation struct {
	ParticipantID string  `json:"participantId"`
	Name          string  `json:"name"`
	Weight        float64 `json:"weight"`
	AmountPaid    float64 `json:"amountPaid"`
	Share         float64 `json:"share"`
	Balance       float64 `json:"balance"` // AmountPaid - Share; positive = owed money
}

// Settlement is a single transfer in the plan that zeroes all balances.
type Settlement struct {
	FromID   string  `json:"fromId"`
	FromName string  `json:"fromName"`
	ToID     string  `json:"toId"`
	ToName   string  `json:"toName"`
	Amount   float64 `json:"amount"`
}

// CalculateSplits distributes totalAmount across participants in proportion to
// their weights. With no participants or an empty pool every share is zero and
// each balance equals what the participant already paid.
func CalculateSplits(participants []model.Participant, totalAmount float64) []Calculation {
	calcs := make([]Calculation, 0, len(participants))

	if len(participants) == 0 || totalAmount == 0 {
		for _, p := range participants {
			calcs = append(calcs, Calculation{
				ParticipantID: p.ID,
				Name:          p.Name,
				Weight:        p.Weight,
				AmountPaid:    p.AmountPaid,
				Share:         0,
				Balance:       p.AmountPaid,
			})
		}
		return calcs
	}

	var totalWeights float64
	for _, p := range participants {
		totalWeights += p.Weight
	}
	baseShare := totalAmount / totalWeights

	for _, p := range participants {
		share := baseShare * p.Weight
		calcs = append(calcs, Calculation{
			ParticipantID: p.ID,
			Name:          p.Name,
			Weight:        p.Weight,
			AmountPaid:    p.AmountPaid,
			Share:         share,
			Balance:       p.AmountPaid - share,
		})
	}
	return calcs
}

type party struct {
	id     string
	name   string
	amount float64
}

// CalculateSettlements produces a transfer plan from the balances in calcs.
// Creditors and debtors are each sorted by descending magnitude and greedily
// matched largest-against-largest, so the plan has at most
// min(len(creditors), len(debtors)) transfers and leaves every balance within
// epsilon of zero.
func CalculateSettlements(calcs []Calculation) []Settlement {
	var creditors, debtors []party
	for _, c := range calcs {
		switch {
		case c.Balance > epsilon:
			creditors = append(creditors, party{c.ParticipantID, c.Name, c.Balance})
		case c.Balance < -epsilon:
			debtors = append(debtors, party{c.ParticipantID, c.Name, -c.Balance})
		}
	}
	sort.Slice(creditors, func(i, j int) bool { return creditors[i].amount > creditors[j].amount })
	sort.Slice(debtors, func(i, j int) bool { return debtors[i].amount > debtors[j].amount })

	var settlements []Settlement
	ci, di := 0, 0
	for ci < len(creditors) && di < len(debtors) {
		creditor := &creditors[ci]
		debtor := &debtors[di]

		amount := creditor.amount
		if debtor.amount < amount {
			amount = debtor.amount
		}

		if amount > epsilon {
			settlements = append(settlements, Settlement{
				FromID:   debtor.id,
				FromName: debtor.name,
				ToID:     creditor.id,
				ToName:   creditor.name,
				Amount:   amount,
			})
		}

		creditor.amount -= amount
		debtor.amount -= amount

		if creditor.amount < epsilon {
			ci++
		}
		if debtor.amount < epsilon {
			di++
		}
	}

	return settlements
}
