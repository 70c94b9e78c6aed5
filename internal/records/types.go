package records

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sipcourse-backend/internal/plans"
	"github.com/angelmondragon/sipcourse-backend/pkg/db/models"
	"github.com/angelmondragon/sipcourse-backend/pkg/enums"
)

const dateLayout = "2006-01-02"

// PlanRecord is an immutable submitted plan with its frozen reward snapshot.
type PlanRecord struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	CourseID        uuid.UUID
	Type            enums.PlanType
	Duration        plans.Duration
	DailyAmount     decimal.Decimal
	SelectedDomains []string
	StartDate       time.Time
	RewardRate      decimal.Decimal
	RewardAmount    decimal.Decimal
	CreatedAt       time.Time
}

// MaturityDate is when the plan completes.
func (r PlanRecord) MaturityDate() time.Time {
	return plans.MaturityDate(r.StartDate, r.Duration)
}

// Principal recomputes the contributed amount from the stored inputs.
func (r PlanRecord) Principal() decimal.Decimal {
	return plans.Principal(r.Duration, r.DailyAmount)
}

// CreateInput is everything needed to persist a plan. Snapshot, when set, is
// the projection the learner saw; it must agree with a fresh computation.
type CreateInput struct {
	OwnerID         uuid.UUID
	CourseID        uuid.UUID
	Type            enums.PlanType
	Duration        plans.Duration
	DailyAmount     decimal.Decimal
	SelectedDomains []string
	StartDate       time.Time
	Snapshot        *plans.Projection
}

// Page is one cursor page of records, newest first.
type Page struct {
	Records    []PlanRecord
	NextCursor string
}

// RecordDTO is the JSON shape of a plan record.
type RecordDTO struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"ownerId"`
	CourseID     uuid.UUID `json:"courseId"`
	Amount       string    `json:"amount"`
	Duration     int       `json:"duration"`
	Domain       *string   `json:"domain,omitempty"`
	Domains      []string  `json:"domains"`
	Type         string    `json:"type"`
	StartDate    string    `json:"startDate"`
	MaturityDate string    `json:"maturityDate"`
	RewardRate   string    `json:"rewardRate"`
	RewardAmount string    `json:"rewardAmount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToDTO renders the record for API responses. The single domain field is
// only populated for plans that required a selection.
func (r PlanRecord) ToDTO() RecordDTO {
	domains := r.SelectedDomains
	if domains == nil {
		domains = []string{}
	}
	dto := RecordDTO{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		CourseID:     r.CourseID,
		Amount:       r.DailyAmount.StringFixed(2),
		Duration:     r.Duration.Months(),
		Domains:      domains,
		Type:         r.Type.String(),
		StartDate:    r.StartDate.Format(dateLayout),
		MaturityDate: r.MaturityDate().Format(dateLayout),
		RewardRate:   r.RewardRate.String(),
		RewardAmount: r.RewardAmount.StringFixed(2),
		CreatedAt:    r.CreatedAt,
	}
	if plans.RequiresSelection(r.Duration) && len(domains) > 0 {
		first := domains[0]
		dto.Domain = &first
	}
	return dto
}

// ToDTOs renders a slice of records.
func ToDTOs(rows []PlanRecord) []RecordDTO {
	out := make([]RecordDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDTO())
	}
	return out
}

func fromModel(m *models.PlanRecord) PlanRecord {
	return PlanRecord{
		ID:              m.ID,
		OwnerID:         m.OwnerID,
		CourseID:        m.CourseID,
		Type:            m.Type,
		Duration:        plans.Duration(m.DurationMonths),
		DailyAmount:     m.DailyAmount,
		SelectedDomains: m.SelectedDomains,
		StartDate:       m.StartDate.UTC(),
		RewardRate:      m.RewardRateSnapshot,
		RewardAmount:    m.RewardAmountSnapshot,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

func fromModels(rows []models.PlanRecord) []PlanRecord {
	out := make([]PlanRecord, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out
}

func (r PlanRecord) toModel() *models.PlanRecord {
	return &models.PlanRecord{
		ID:                   r.ID,
		OwnerID:              r.OwnerID,
		CourseID:             r.CourseID,
		Type:                 r.Type,
		DurationMonths:       r.Duration.Months(),
		DailyAmount:          r.DailyAmount,
		SelectedDomains:      r.SelectedDomains,
		StartDate:            r.StartDate,
		RewardRateSnapshot:   r.RewardRate,
		RewardAmountSnapshot: r.RewardAmount,
		CreatedAt:            r.CreatedAt,
	}
}
