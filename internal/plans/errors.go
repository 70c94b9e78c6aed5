package plans

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InvalidDurationError means a month count outside the tier table reached the engine.
type InvalidDurationError struct {
	Months int
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid plan duration %d: must be one of 3, 6, 9 or 12 months", e.Months)
}

// InvalidAmountError means a daily amount outside [1, 100] reached the engine.
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid daily amount %s: must be between %s and %s", e.Amount.String(), MinDailyAmount, MaxDailyAmount)
}

// DomainSelectionError reports a domain selection that breaks the access rules.
// It is recoverable: the user adjusts the selection and resubmits.
type DomainSelectionError struct {
	Duration Duration
	Reason   string
	Domains  []string
}

func (e *DomainSelectionError) Error() string {
	if len(e.Domains) == 0 {
		return fmt.Sprintf("domain selection for %d month plan: %s", e.Duration, e.Reason)
	}
	return fmt.Sprintf("domain selection for %d month plan: %s (%s)", e.Duration, e.Reason, strings.Join(e.Domains, ", "))
}

// EmptyDomainSelectionError is returned when a plan that requires picking
// domains is submitted with none.
type EmptyDomainSelectionError struct {
	Duration Duration
}

func (e *EmptyDomainSelectionError) Error() string {
	return fmt.Sprintf("a %d month plan requires at least one selected domain", e.Duration)
}
