package split

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granaflow/backend/internal/model"
)

func participant(id string, weight, paid float64) model.Participant {
	return model.Participant{ID: id, Name: "p-" + id, Weight: weight, AmountPaid: paid}
}

func TestCalculateSplits_WeightedShares(t *testing.T) {
	participants := []model.Participant{
		participant("a", 1.0, 150),
		participant("b", 0.5, 0),
	}

	calcs := CalculateSplits(participants, 150)
	require.Len(t, calcs, 2)

	assert.InDelta(t, 100, calcs[0].Share, 1e-9)
	assert.InDelta(t, 50, calcs[1].Share, 1e-9)
	assert.InDelta(t, 50, calcs[0].Balance, 1e-9)  // paid 150, owes 100
	assert.InDelta(t, -50, calcs[1].Balance, 1e-9) // paid 0, owes 50
}

func TestCalculateSplits_SharesSumToTotal(t *testing.T) {
	participants := []model.Participant{
		participant("a", 1.0, 20),
		participant("b", 0.5, 75.30),
		participant("c", 1.0, 0),
		participant("d", 0.5, 12.45),
	}
	total := 310.77

	calcs := CalculateSplits(participants, total)

	var shareSum, balanceSum, paidSum float64
	for _, c := range calcs {
		shareSum += c.Share
		balanceSum += c.Balance
		paidSum += c.AmountPaid
	}
	assert.InDelta(t, total, shareSum, 1e-9)
	assert.InDelta(t, paidSum-total, balanceSum, 1e-9)
}

func TestCalculateSplits_ZeroTotal(t *testing.T) {
	participants := []model.Participant{
		participant("a", 1.0, 42),
		participant("b", 1.0, 0),
	}

	calcs := CalculateSplits(participants, 0)
	require.Len(t, calcs, 2)
	assert.Zero(t, calcs[0].Share)
	assert.Equal(t, 42.0, calcs[0].Balance)
	assert.Zero(t, calcs[1].Share)
	assert.Zero(t, calcs[1].Balance)
}

func TestCalculateSplits_NoParticipants(t *testing.T) {
	assert.Empty(t, CalculateSplits(nil, 100))
}

func TestCalculateSettlements_TwoParty(t *testing.T) {
	calcs := []Calculation{
		{ParticipantID: "a", Name: "p-a", Balance: 30},
		{ParticipantID: "b", Name: "p-b", Balance: -30},
	}

	settlements := CalculateSettlements(calcs)
	require.Len(t, settlements, 1)
	assert.Equal(t, "b", settlements[0].FromID)
	assert.Equal(t, "a", settlements[0].ToID)
	assert.InDelta(t, 30, settlements[0].Amount, epsilon)
}

func TestCalculateSettlements_ZeroesAllBalances(t *testing.T) {
	participants := []model.Participant{
		participant("a", 1.0, 200),
		participant("b", 1.0, 50),
		participant("c", 0.5, 0),
		participant("d", 0.5, 25),
	}
	calcs := CalculateSplits(participants, 275)

	settlements := CalculateSettlements(calcs)
	assert.LessOrEqual(t, len(settlements), 3) // min(|creditors|, |debtors|)

	// Apply each transfer and verify every residual balance is ~0.
	residual := make(map[string]float64)
	for _, c := range calcs {
		residual[c.ParticipantID] = c.Balance
	}
	for _, s := range settlements {
		residual[s.FromID] += s.Amount
		residual[s.ToID] -= s.Amount
	}
	for id, r := range residual {
		assert.Less(t, math.Abs(r), 2*epsilon, "participant %s not settled", id)
	}
}

func TestCalculateSettlements_DebtorPaysOutExactBalance(t *testing.T) {
	calcs := []Calculation{
		{ParticipantID: "a", Name: "p-a", Balance: 80},
		{ParticipantID: "b", Name: "p-b", Balance: 20},
		{ParticipantID: "c", Name: "p-c", Balance: -60},
		{ParticipantID: "d", Name: "p-d", Balance: -40},
	}

	settlements := CalculateSettlements(calcs)

	paidOut := make(map[string]float64)
	for _, s := range settlements {
		paidOut[s.FromID] += s.Amount
	}
	assert.InDelta(t, 60, paidOut["c"], epsilon)
	assert.InDelta(t, 40, paidOut["d"], epsilon)
}

func TestCalculateSettlements_AllEven(t *testing.T) {
	calcs := []Calculation{
		{ParticipantID: "a", Balance: 0},
		{ParticipantID: "b", Balance: 0.004}, // inside epsilon
	}
	assert.Empty(t, CalculateSettlements(calcs))
}
