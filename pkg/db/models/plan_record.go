package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sipcourse-backend/pkg/enums"
)

// PlanRecord is a submitted plan. Rows are written once and never updated;
// the reward columns freeze the projection at submission time.
type PlanRecord struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID              uuid.UUID       `gorm:"column:owner_id;type:uuid;not null"`
	CourseID             uuid.UUID       `gorm:"column:course_id;type:uuid;not null"`
	Type                 enums.PlanType  `gorm:"column:type;not null"`
	DurationMonths       int             `gorm:"column:duration_months;not null"`
	DailyAmount          decimal.Decimal `gorm:"column:daily_amount;type:numeric(12,2);not null"`
	SelectedDomains      []string        `gorm:"column:selected_domains;type:text;serializer:json"`
	StartDate            time.Time       `gorm:"column:start_date;type:date;not null"`
	RewardRateSnapshot   decimal.Decimal `gorm:"column:reward_rate_snapshot;type:numeric(6,4);not null"`
	RewardAmountSnapshot decimal.Decimal `gorm:"column:reward_amount_snapshot;type:numeric(12,2);not null"`
	CreatedAt            time.Time       `gorm:"column:created_at;not null"`
}
