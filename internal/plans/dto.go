package plans

import "github.com/shopspring/decimal"

// QuoteRequest is the body of the quote endpoint.
type QuoteRequest struct {
	Duration int             `json:"duration" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
}

// ProjectionDTO is the public view of a Projection. Money is rendered with
// two decimals.
type ProjectionDTO struct {
	Duration              int      `json:"duration"`
	Label                 string   `json:"label"`
	DailyAmount           string   `json:"dailyAmount"`
	Principal             string   `json:"principal"`
	RewardRate            string   `json:"rewardRate"`
	RewardAmount          string   `json:"rewardAmount"`
	FinalValue            string   `json:"finalValue"`
	AdsVisible            bool     `json:"adsVisible"`
	DomainAccess          string   `json:"domainAccess"`
	DomainAccessLabel     string   `json:"domainAccessLabel"`
	CertificationIncluded bool     `json:"certificationIncluded"`
	MaxDomains            int      `json:"maxDomains"`
	Features              []string `json:"features"`
}

// TierDTO is one row of the public tier table.
type TierDTO struct {
	Duration              int    `json:"duration"`
	Label                 string `json:"label"`
	RewardRate            string `json:"rewardRate"`
	AdsVisible            bool   `json:"adsVisible"`
	CertificationIncluded bool   `json:"certificationIncluded"`
	DomainAccess          string `json:"domainAccess"`
	DomainAccessLabel     string `json:"domainAccessLabel"`
	RequiresSelection     bool   `json:"requiresSelection"`
}

// ToDTO renders the projection. available is the catalog domain count used
// to size the selection cap.
func (p Projection) ToDTO(available int) ProjectionDTO {
	return ProjectionDTO{
		Duration:              p.Duration.Months(),
		Label:                 p.Duration.Label(),
		DailyAmount:           p.DailyAmount.StringFixed(2),
		Principal:             p.Principal.StringFixed(2),
		RewardRate:            p.RewardRate.String(),
		RewardAmount:          p.RewardAmount.StringFixed(2),
		FinalValue:            p.FinalValue.StringFixed(2),
		AdsVisible:            p.AdsVisible,
		DomainAccess:          p.DomainAccessTier.String(),
		DomainAccessLabel:     p.DomainAccessLabel(),
		CertificationIncluded: p.CertificationIncluded,
		MaxDomains:            MaxDomainsFor(p.Duration, available),
		Features:              p.Features(),
	}
}

// TierDTOs renders the full tier table.
func TierDTOs() []TierDTO {
	out := make([]TierDTO, 0, len(tierTable))
	for _, tier := range tierTable {
		out = append(out, TierDTO{
			Duration:              tier.Duration.Months(),
			Label:                 tier.Duration.Label(),
			RewardRate:            tier.RewardRate.String(),
			AdsVisible:            tier.AdsVisible,
			CertificationIncluded: tier.CertificationIncluded,
			DomainAccess:          tier.DomainAccess.String(),
			DomainAccessLabel:     tier.DomainAccess.Label(),
			RequiresSelection:     RequiresSelection(tier.Duration),
		})
	}
	return out
}
