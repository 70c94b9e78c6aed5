package enums

import "fmt"

// DomainAccessTier describes how much of the catalog a plan unlocks.
type DomainAccessTier string

const (
	DomainAccessSingle DomainAccessTier = "single_domain"
	DomainAccessTwo    DomainAccessTier = "two_domains"
	DomainAccessAll    DomainAccessTier = "all_domains"
)

var validDomainAccessTiers = []DomainAccessTier{
	DomainAccessSingle,
	DomainAccessTwo,
	DomainAccessAll,
}

var domainAccessLabels = map[DomainAccessTier]string{
	DomainAccessSingle: "Selected domain only",
	DomainAccessTwo:    "Two domains",
	DomainAccessAll:    "All domains",
}

// String implements fmt.Stringer.
func (d DomainAccessTier) String() string {
	return string(d)
}

// Label returns the customer facing copy for the tier.
func (d DomainAccessTier) Label() string {
	return domainAccessLabels[d]
}

// IsValid reports whether the value is a known DomainAccessTier.
func (d DomainAccessTier) IsValid() bool {
	for _, candidate := range validDomainAccessTiers {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDomainAccessTier converts raw input into a DomainAccessTier.
func ParseDomainAccessTier(value string) (DomainAccessTier, error) {
	for _, candidate := range validDomainAccessTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid domain access tier %q", value)
}
