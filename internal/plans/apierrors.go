package plans

import (
	"errors"

	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
)

// ToAPIError maps engine and resolver errors onto the typed API errors.
// Input errors become validation failures, selection errors become
// unprocessable plans. Other errors are returned untouched.
func ToAPIError(err error) error {
	if err == nil {
		return nil
	}

	var durationErr *InvalidDurationError
	if errors.As(err, &durationErr) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, durationErr.Error()).
			WithDetails(map[string]any{"field": "duration", "allowed": Durations()})
	}
	var amountErr *InvalidAmountError
	if errors.As(err, &amountErr) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, amountErr.Error()).
			WithDetails(map[string]any{"field": "amount", "min": MinDailyAmount.String(), "max": MaxDailyAmount.String()})
	}
	var emptyErr *EmptyDomainSelectionError
	if errors.As(err, &emptyErr) {
		return pkgerrors.Wrap(pkgerrors.CodeUnprocessable, err, emptyErr.Error()).
			WithDetails(map[string]any{"field": "domains", "reason": "empty selection"})
	}
	var selectionErr *DomainSelectionError
	if errors.As(err, &selectionErr) {
		return pkgerrors.Wrap(pkgerrors.CodeUnprocessable, err, selectionErr.Error()).
			WithDetails(map[string]any{"field": "domains", "reason": selectionErr.Reason, "domains": selectionErr.Domains})
	}
	return err
}

// FailureReason is a short metrics label for a plan error.
func FailureReason(err error) string {
	var (
		durationErr  *InvalidDurationError
		amountErr    *InvalidAmountError
		emptyErr     *EmptyDomainSelectionError
		selectionErr *DomainSelectionError
	)
	switch {
	case errors.As(err, &durationErr):
		return "invalid_duration"
	case errors.As(err, &amountErr):
		return "invalid_amount"
	case errors.As(err, &emptyErr), errors.As(err, &selectionErr):
		return "domain_selection"
	}
	return "other"
}
