package enums

import (
	"fmt"
	"strings"
)

// PlanType distinguishes a daily-contribution plan from an upfront purchase.
type PlanType string

const (
	PlanTypeSIP  PlanType = "sip"
	PlanTypeFull PlanType = "full"
)

var validPlanTypes = []PlanType{
	PlanTypeSIP,
	PlanTypeFull,
}

// String implements fmt.Stringer.
func (p PlanType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanType.
func (p PlanType) IsValid() bool {
	for _, candidate := range validPlanTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanType converts raw input into a PlanType. Empty input defaults to sip.
func ParsePlanType(value string) (PlanType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return PlanTypeSIP, nil
	}
	for _, candidate := range validPlanTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan type %q", value)
}
