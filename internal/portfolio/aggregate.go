// Package portfolio summarises a learner's plan records for the dashboard.
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sipcourse-backend/internal/records"
)

var hundred = decimal.NewFromInt(100)

// Summary is the dashboard view over every record of one owner.
type Summary struct {
	TotalPrincipal       decimal.Decimal `json:"totalPrincipal"`
	TotalProjectedReward decimal.Decimal `json:"totalProjectedReward"`
	FinalValue           decimal.Decimal `json:"finalValue"`
	ROSPercentage        string          `json:"rosPercentage"`
	Count                int             `json:"count"`
	Active               int             `json:"active"`
}

// Aggregate summarises records as of now.
func Aggregate(recs []records.PlanRecord) Summary {
	return AggregateAt(recs, time.Now())
}

// AggregateAt never fails. Principal is recomputed from each record's inputs,
// the reward comes from its frozen snapshot, and malformed records are
// skipped. A record is active while its maturity date is after now.
func AggregateAt(recs []records.PlanRecord, now time.Time) Summary {
	summary, maturities := fold(recs)
	summary.Active = countActive(maturities, now)
	return summary
}

// fold sums the well formed records and returns their maturity dates. The
// result has no Active count since that depends on the read time.
func fold(recs []records.PlanRecord) (Summary, []time.Time) {
	principal := decimal.Zero
	reward := decimal.Zero
	maturities := make([]time.Time, 0, len(recs))

	for _, r := range recs {
		if !r.Duration.IsValid() || !r.DailyAmount.IsPositive() || r.RewardAmount.IsNegative() {
			continue
		}
		principal = principal.Add(r.Principal())
		reward = reward.Add(r.RewardAmount)
		maturities = append(maturities, r.MaturityDate())
	}

	return Summary{
		TotalPrincipal:       principal,
		TotalProjectedReward: reward,
		FinalValue:           principal.Add(reward),
		ROSPercentage:        returnOnSavings(principal, reward),
		Count:                len(maturities),
	}, maturities
}

func countActive(maturities []time.Time, now time.Time) int {
	active := 0
	for _, m := range maturities {
		if m.After(now) {
			active++
		}
	}
	return active
}

func returnOnSavings(principal, reward decimal.Decimal) string {
	if principal.IsZero() {
		return "0.0"
	}
	return reward.Div(principal).Mul(hundred).StringFixed(1)
}
