package plans

import (
	"slices"
	"strings"
)

// selectionThreshold is the longest duration that still requires explicit domain picks.
const selectionThreshold = Duration6

// RequiresSelection reports whether the user must pick domains for d.
func RequiresSelection(d Duration) bool {
	return d <= selectionThreshold
}

// MaxDomainsFor returns how many domains a plan of length d may select.
// Above the threshold every available domain is granted.
func MaxDomainsFor(d Duration, available int) int {
	switch d {
	case Duration3:
		return 1
	case Duration6:
		return 2
	default:
		return available
	}
}

// ValidateSelection checks a submitted domain selection. Durations above the
// threshold accept any selection, including none.
func ValidateSelection(d Duration, selected, available []string) error {
	if !d.IsValid() {
		return &InvalidDurationError{Months: int(d)}
	}
	if !RequiresSelection(d) {
		return nil
	}
	if len(selected) == 0 {
		return &EmptyDomainSelectionError{Duration: d}
	}
	if limit := MaxDomainsFor(d, len(available)); len(selected) > limit {
		return &DomainSelectionError{Duration: d, Reason: "too many domains selected", Domains: selected}
	}

	seen := make(map[string]struct{}, len(selected))
	var unknown []string
	for _, domain := range selected {
		key := normalizeDomain(domain)
		if _, dup := seen[key]; dup {
			return &DomainSelectionError{Duration: d, Reason: "duplicate domain", Domains: []string{domain}}
		}
		seen[key] = struct{}{}
		if !ContainsDomain(available, domain) {
			unknown = append(unknown, domain)
		}
	}
	if len(unknown) > 0 {
		return &DomainSelectionError{Duration: d, Reason: "unknown domain", Domains: unknown}
	}
	return nil
}

// AccessibleDomains returns the catalog domains a plan unlocks.
func AccessibleDomains(d Duration, selected, available []string) []string {
	if !RequiresSelection(d) {
		return slices.Clone(available)
	}
	out := make([]string, 0, len(selected))
	for _, domain := range selected {
		if ContainsDomain(available, domain) {
			out = append(out, domain)
		}
	}
	return out
}

// Selection is an ordered set of chosen domains, oldest first. When the cap is
// reached, adding a domain evicts the oldest one.
type Selection struct {
	cap     int
	domains []string
}

// NewSelection builds an empty selection with the supplied cap. A cap of zero
// or less means unlimited.
func NewSelection(cap int) *Selection {
	return &Selection{cap: cap}
}

// Toggle removes domain if present, otherwise adds it, evicting the oldest
// selection first when full.
func (s *Selection) Toggle(domain string) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return
	}
	if idx := s.indexOf(domain); idx >= 0 {
		s.domains = slices.Delete(s.domains, idx, idx+1)
		return
	}
	if s.cap > 0 && len(s.domains) >= s.cap {
		s.domains = s.domains[len(s.domains)-s.cap+1:]
	}
	s.domains = append(s.domains, domain)
}

// SetCap changes the cap and trims the oldest entries if needed.
func (s *Selection) SetCap(cap int) {
	s.cap = cap
	if cap > 0 && len(s.domains) > cap {
		s.domains = slices.Clone(s.domains[len(s.domains)-cap:])
	}
}

func (s *Selection) Cap() int {
	return s.cap
}

func (s *Selection) Len() int {
	return len(s.domains)
}

func (s *Selection) Contains(domain string) bool {
	return s.indexOf(domain) >= 0
}

// Domains returns a copy of the selection, oldest first.
func (s *Selection) Domains() []string {
	return slices.Clone(s.domains)
}

func (s *Selection) Clear() {
	s.domains = nil
}

func (s *Selection) indexOf(domain string) int {
	key := normalizeDomain(domain)
	for i, existing := range s.domains {
		if normalizeDomain(existing) == key {
			return i
		}
	}
	return -1
}

// ContainsDomain reports whether domain is in available, ignoring case and
// surrounding space.
func ContainsDomain(available []string, domain string) bool {
	key := normalizeDomain(domain)
	for _, candidate := range available {
		if normalizeDomain(candidate) == key {
			return true
		}
	}
	return false
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
