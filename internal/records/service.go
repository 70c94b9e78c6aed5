package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/sipcourse-backend/internal/catalog"
	"github.com/angelmondragon/sipcourse-backend/internal/plans"
	"github.com/angelmondragon/sipcourse-backend/pkg/db"
	"github.com/angelmondragon/sipcourse-backend/pkg/db/models"
	"github.com/angelmondragon/sipcourse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
	"github.com/angelmondragon/sipcourse-backend/pkg/metrics"
	"github.com/angelmondragon/sipcourse-backend/pkg/pagination"
)

// Service is the record store: it validates, persists and reads plan records.
type Service interface {
	CreatePlanRecord(ctx context.Context, input CreateInput) (*PlanRecord, error)
	ListPlanRecords(ctx context.Context, ownerID uuid.UUID) ([]PlanRecord, error)
	ListPlanRecordsPage(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (Page, error)
	GetPlanRecord(ctx context.Context, ownerID, id uuid.UUID) (*PlanRecord, error)
}

type recordRepository interface {
	Create(ctx context.Context, record *models.PlanRecord) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.PlanRecord, error)
	ListAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.PlanRecord, error)
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*models.PlanRecord, error)
}

type courseCatalog interface {
	GetCourse(ctx context.Context, id uuid.UUID) (*catalog.CourseDTO, error)
	AvailableDomains(ctx context.Context) ([]string, error)
}

// ServiceParams bundles the record service dependencies.
type ServiceParams struct {
	Repo              recordRepository
	Catalog           courseCatalog
	Metrics           *metrics.Recorder
	Logger            *logger.Logger
	AllowFullPurchase bool
	DefaultPageLimit  int
	Now               func() time.Time
}

type service struct {
	repo         recordRepository
	catalog      courseCatalog
	metrics      *metrics.Recorder
	logg         *logger.Logger
	allowFull    bool
	defaultLimit int
	now          func() time.Time
}

// NewService constructs the record service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("record repository is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:         params.Repo,
		catalog:      params.Catalog,
		metrics:      params.Metrics,
		logg:         logg,
		allowFull:    params.AllowFullPurchase,
		defaultLimit: params.DefaultPageLimit,
		now:          now,
	}, nil
}

func (s *service) CreatePlanRecord(ctx context.Context, input CreateInput) (*PlanRecord, error) {
	ctx = s.logg.WithPlan(ctx, input.CourseID.String(), int(input.Duration))

	record, reason, err := s.build(ctx, input)
	if err != nil {
		s.metrics.IncRecordFailure(reason)
		return nil, err
	}

	if err := s.repo.Create(ctx, record.toModel()); err != nil {
		s.metrics.IncRecordFailure("store")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist plan record")
	}

	s.metrics.IncRecordCreated(record.Duration.Months(), record.Type.String())
	s.logg.Info(s.logg.WithField(ctx, "plan_id", record.ID.String()), "plans.record.created")
	return record, nil
}

// build re-derives the record from raw input. The engine and resolver are
// the only source of truth for rates and selection rules.
func (s *service) build(ctx context.Context, input CreateInput) (*PlanRecord, string, error) {
	if input.OwnerID == uuid.Nil {
		return nil, "owner", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing owner")
	}
	planType := input.Type
	if planType == "" {
		planType = enums.PlanTypeSIP
	}
	if !planType.IsValid() {
		return nil, "invalid_type", pkgerrors.Newf(pkgerrors.CodeValidation, "invalid plan type %q", planType)
	}
	if planType == enums.PlanTypeFull && !s.allowFull {
		return nil, "invalid_type", pkgerrors.New(pkgerrors.CodeValidation, "full purchase plans are disabled")
	}

	projection, err := plans.ComputeProjection(input.Duration, input.DailyAmount)
	if err != nil {
		return nil, plans.FailureReason(err), plans.ToAPIError(err)
	}
	if snap := input.Snapshot; snap != nil {
		if snap.Duration != projection.Duration ||
			!snap.RewardRate.Equal(projection.RewardRate) ||
			!snap.RewardAmount.Equal(projection.RewardAmount) {
			return nil, "stale_projection", pkgerrors.New(pkgerrors.CodeUnprocessable, "projection does not match plan input").
				WithDetails(map[string]any{"rewardAmount": projection.RewardAmount.StringFixed(2)})
		}
	}

	if _, err := s.catalog.GetCourse(ctx, input.CourseID); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			return nil, "unknown_course", pkgerrors.New(pkgerrors.CodeValidation, "unknown course")
		}
		return nil, "catalog", err
	}

	available, err := s.catalog.AvailableDomains(ctx)
	if err != nil {
		return nil, "catalog", err
	}
	if err := plans.ValidateSelection(input.Duration, input.SelectedDomains, available); err != nil {
		return nil, plans.FailureReason(err), plans.ToAPIError(err)
	}

	now := s.now().UTC()
	start := input.StartDate
	if start.IsZero() {
		start = now
	}

	return &PlanRecord{
		ID:              uuid.New(),
		OwnerID:         input.OwnerID,
		CourseID:        input.CourseID,
		Type:            planType,
		Duration:        projection.Duration,
		DailyAmount:     projection.DailyAmount,
		SelectedDomains: canonicalSelection(input.Duration, input.SelectedDomains, available),
		StartDate:       truncateToDate(start),
		RewardRate:      projection.RewardRate,
		RewardAmount:    projection.RewardAmount,
		CreatedAt:       now,
	}, "", nil
}

func (s *service) ListPlanRecords(ctx context.Context, ownerID uuid.UUID) ([]PlanRecord, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing owner")
	}
	rows, err := s.repo.ListAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plan records")
	}
	return fromModels(rows), nil
}

func (s *service) ListPlanRecordsPage(ctx context.Context, ownerID uuid.UUID, params pagination.Params) (Page, error) {
	if ownerID == uuid.Nil {
		return Page{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing owner")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	limit = pagination.NormalizeLimit(limit)

	rows, err := s.repo.ListByOwner(ctx, ownerID, cursor, limit)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plan records")
	}

	rows, next := pagination.Trim(rows, limit, func(row models.PlanRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.CreatedAt, ID: row.ID}
	})
	return Page{Records: fromModels(rows), NextCursor: next}, nil
}

func (s *service) GetPlanRecord(ctx context.Context, ownerID, id uuid.UUID) (*PlanRecord, error) {
	row, err := s.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan record")
	}
	record := fromModel(row)
	return &record, nil
}

// canonicalSelection stores catalog casing for plans that use a selection and
// nothing for plans that unlock every domain.
func canonicalSelection(d plans.Duration, selected, available []string) []string {
	if !plans.RequiresSelection(d) {
		return []string{}
	}
	out := make([]string, 0, len(selected))
	for _, domain := range selected {
		for _, candidate := range available {
			if strings.EqualFold(strings.TrimSpace(domain), candidate) {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
