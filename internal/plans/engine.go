package plans

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sipcourse-backend/pkg/enums"
)

// Duration is a plan length in months. Only the values in the tier table are
// valid; durations are categorical, not a continuous range.
type Duration int

const (
	Duration3  Duration = 3
	Duration6  Duration = 6
	Duration9  Duration = 9
	Duration12 Duration = 12
)

// daysPerMonth is the flat month length used for principal.
const daysPerMonth = 30

var (
	MinDailyAmount = decimal.NewFromInt(1)
	MaxDailyAmount = decimal.NewFromInt(100)
)

// Tier is one row of the reward table.
type Tier struct {
	Duration              Duration
	RewardRate            decimal.Decimal
	AdsVisible            bool
	CertificationIncluded bool
	DomainAccess          enums.DomainAccessTier
}

var tierTable = []Tier{
	{Duration: Duration3, RewardRate: decimal.Zero, AdsVisible: true, CertificationIncluded: false, DomainAccess: enums.DomainAccessSingle},
	{Duration: Duration6, RewardRate: decimal.RequireFromString("0.01"), AdsVisible: true, CertificationIncluded: true, DomainAccess: enums.DomainAccessTwo},
	{Duration: Duration9, RewardRate: decimal.RequireFromString("0.02"), AdsVisible: false, CertificationIncluded: true, DomainAccess: enums.DomainAccessAll},
	{Duration: Duration12, RewardRate: decimal.RequireFromString("0.04"), AdsVisible: false, CertificationIncluded: true, DomainAccess: enums.DomainAccessAll},
}

// TierTable returns a copy of the reward table ordered by duration.
func TierTable() []Tier {
	out := make([]Tier, len(tierTable))
	copy(out, tierTable)
	return out
}

// Durations lists the selectable plan lengths.
func Durations() []Duration {
	out := make([]Duration, 0, len(tierTable))
	for _, tier := range tierTable {
		out = append(out, tier.Duration)
	}
	return out
}

// MaxRewardRate is the rate of the top tier.
func MaxRewardRate() decimal.Decimal {
	top := decimal.Zero
	for _, tier := range tierTable {
		if tier.RewardRate.GreaterThan(top) {
			top = tier.RewardRate
		}
	}
	return top
}

func tierFor(d Duration) (Tier, bool) {
	for _, tier := range tierTable {
		if tier.Duration == d {
			return tier, true
		}
	}
	return Tier{}, false
}

// ParseDuration validates a raw month count.
func ParseDuration(months int) (Duration, error) {
	d := Duration(months)
	if !d.IsValid() {
		return 0, &InvalidDurationError{Months: months}
	}
	return d, nil
}

func (d Duration) IsValid() bool {
	_, ok := tierFor(d)
	return ok
}

func (d Duration) Months() int {
	return int(d)
}

// Label renders the duration the way the plan picker shows it.
func (d Duration) Label() string {
	return fmt.Sprintf("%d Months", int(d))
}

// Projection is the derived view of a plan input. It is recomputed on every
// input change and never stored as-is.
type Projection struct {
	Duration              Duration
	DailyAmount           decimal.Decimal
	Principal             decimal.Decimal
	RewardRate            decimal.Decimal
	RewardAmount          decimal.Decimal
	FinalValue            decimal.Decimal
	AdsVisible            bool
	DomainAccessTier      enums.DomainAccessTier
	CertificationIncluded bool
}

// DomainAccessLabel returns the display copy for the access tier.
func (p Projection) DomainAccessLabel() string {
	return p.DomainAccessTier.Label()
}

// Features lists the plan perks in the order the plan picker shows them.
func (p Projection) Features() []string {
	features := make([]string, 0, 3)
	if p.AdsVisible {
		features = append(features, "Ads in lectures")
	} else {
		features = append(features, "No ads in lectures")
	}
	if p.DomainAccessTier == enums.DomainAccessAll {
		features = append(features, "Access to all lectures")
	} else {
		features = append(features, "Access to selected domain lectures")
	}
	if p.CertificationIncluded {
		features = append(features, "University certified courses")
	}
	return features
}

// Principal is the nominal amount contributed over the plan, without compounding.
func Principal(d Duration, dailyAmount decimal.Decimal) decimal.Decimal {
	return dailyAmount.Mul(decimal.NewFromInt(int64(daysPerMonth * d.Months())))
}

// ComputeProjection maps a duration and daily amount to the full projection.
// It never clamps: out of range input is an error.
func ComputeProjection(d Duration, dailyAmount decimal.Decimal) (Projection, error) {
	tier, ok := tierFor(d)
	if !ok {
		return Projection{}, &InvalidDurationError{Months: int(d)}
	}
	if err := ValidateDailyAmount(dailyAmount); err != nil {
		return Projection{}, err
	}

	principal := Principal(d, dailyAmount)
	reward := principal.Mul(tier.RewardRate).Round(2)

	return Projection{
		Duration:              d,
		DailyAmount:           dailyAmount,
		Principal:             principal,
		RewardRate:            tier.RewardRate,
		RewardAmount:          reward,
		FinalValue:            principal.Add(reward),
		AdsVisible:            tier.AdsVisible,
		DomainAccessTier:      tier.DomainAccess,
		CertificationIncluded: tier.CertificationIncluded,
	}, nil
}

// ValidateDailyAmount checks the amount sits inside [MinDailyAmount, MaxDailyAmount].
func ValidateDailyAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinDailyAmount) || amount.GreaterThan(MaxDailyAmount) {
		return &InvalidAmountError{Amount: amount}
	}
	return nil
}

// MaturityDate is the start date plus the plan length.
func MaturityDate(start time.Time, d Duration) time.Time {
	return start.AddDate(0, d.Months(), 0)
}
