package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sipcourse-backend/api/middleware"
	"github.com/angelmondragon/sipcourse-backend/api/responses"
	"github.com/angelmondragon/sipcourse-backend/api/validators"
	"github.com/angelmondragon/sipcourse-backend/internal/builder"
	"github.com/angelmondragon/sipcourse-backend/internal/catalog"
	"github.com/angelmondragon/sipcourse-backend/internal/plans"
	"github.com/angelmondragon/sipcourse-backend/internal/portfolio"
	"github.com/angelmondragon/sipcourse-backend/internal/records"
	"github.com/angelmondragon/sipcourse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
	"github.com/angelmondragon/sipcourse-backend/pkg/metrics"
)

type createPlanRequest struct {
	CourseID uuid.UUID       `json:"courseId"`
	Type     string          `json:"type" validate:"omitempty,oneof=sip full"`
	Duration int             `json:"duration" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Domains  []string        `json:"domains" validate:"omitempty,max=20,dive,required,max=60"`
}

// PlanDeps groups what the plan endpoints need.
type PlanDeps struct {
	Catalog   catalog.Service
	Records   records.Service
	Portfolio portfolio.Service
	Metrics   *metrics.Recorder
	Logger    *logger.Logger
}

func PlanTiers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, plans.TierDTOs())
	}
}

// PlanQuote returns the projection for a duration and daily amount without
// persisting anything.
func PlanQuote(deps PlanDeps) http.HandlerFunc {
	logg := deps.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		var body plans.QuoteRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		d, err := plans.ParseDuration(body.Duration)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, plans.ToAPIError(err))
			return
		}
		projection, err := plans.ComputeProjection(d, body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, plans.ToAPIError(err))
			return
		}
		deps.Metrics.IncQuote(d.Months())

		available := 0
		if deps.Catalog != nil {
			domains, err := deps.Catalog.AvailableDomains(r.Context())
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "plans.quote.domains_unavailable")
				}
			} else {
				available = len(domains)
			}
		}
		responses.WriteSuccess(w, projection.ToDTO(available))
	}
}

// PlanCreate runs the builder workflow for the authenticated learner and
// persists the plan through the record store.
func PlanCreate(deps PlanDeps) http.HandlerFunc {
	logg := deps.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Records == nil || deps.Catalog == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan services unavailable"))
			return
		}
		ownerID := middleware.UserIDFromContext(r.Context())
		if ownerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var body createPlanRequest
		if err := validators.DecodeJSONBody(w, r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		planType, err := enums.ParsePlanType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error()))
			return
		}

		available, err := deps.Catalog.AvailableDomains(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var onCompleted builder.Invalidator
		if deps.Portfolio != nil {
			onCompleted = deps.Portfolio.Invalidate
		}
		wf, err := builder.New(builder.Params{
			OwnerID:          ownerID,
			AvailableDomains: available,
			Store:            deps.Records,
			OnCompleted:      onCompleted,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "start plan"))
			return
		}

		if err := applyPlanInput(wf, body, planType); err != nil {
			deps.Metrics.IncRecordFailure(plans.FailureReason(err))
			responses.WriteError(r.Context(), logg, w, plans.ToAPIError(err))
			return
		}

		record, err := wf.Submit(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, plans.ToAPIError(err))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record.ToDTO())
	}
}

func applyPlanInput(wf *builder.Workflow, body createPlanRequest, planType enums.PlanType) error {
	d, err := plans.ParseDuration(body.Duration)
	if err != nil {
		return err
	}
	steps := []func() (plans.Projection, error){
		func() (plans.Projection, error) { return wf.SetCourse(body.CourseID) },
		func() (plans.Projection, error) { return wf.SetType(planType) },
		func() (plans.Projection, error) { return wf.SetDailyAmount(body.Amount) },
		func() (plans.Projection, error) { return wf.SetDuration(d) },
		func() (plans.Projection, error) { return wf.SetDomains(trimmed(body.Domains)) },
	}
	for _, step := range steps {
		if _, err := step(); err != nil {
			return err
		}
	}
	return nil
}

// PlanList pages through the learner's records, newest first.
func PlanList(svc records.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "record service unavailable"))
			return
		}
		ownerID := middleware.UserIDFromContext(r.Context())
		if ownerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListPlanRecordsPage(r.Context(), ownerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, records.ToDTOs(page.Records), page.NextCursor)
	}
}

func PlanGet(svc records.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "record service unavailable"))
			return
		}
		ownerID := middleware.UserIDFromContext(r.Context())
		if ownerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "planId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.GetPlanRecord(r.Context(), ownerID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record.ToDTO())
	}
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
