package enums

import "testing"

func TestParsePlanType(t *testing.T) {
	cases := map[string]PlanType{
		"":      PlanTypeSIP,
		"sip":   PlanTypeSIP,
		" FULL": PlanTypeFull,
	}
	for raw, want := range cases {
		got, err := ParsePlanType(raw)
		if err != nil {
			t.Fatalf("ParsePlanType(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParsePlanType(%q) = %q want %q", raw, got, want)
		}
	}
	if _, err := ParsePlanType("lease"); err == nil {
		t.Fatal("expected error for unknown plan type")
	}
}

func TestDomainAccessTierLabels(t *testing.T) {
	for _, tier := range validDomainAccessTiers {
		if !tier.IsValid() {
			t.Fatalf("tier %q should be valid", tier)
		}
		if tier.Label() == "" {
			t.Fatalf("tier %q missing label", tier)
		}
	}
	if DomainAccessSingle.Label() != "Selected domain only" {
		t.Fatalf("unexpected label %q", DomainAccessSingle.Label())
	}
	if _, err := ParseDomainAccessTier("some_domains"); err == nil {
		t.Fatal("expected parse error")
	}
	if DomainAccessTier("bogus").IsValid() {
		t.Fatal("bogus tier should be invalid")
	}
}
