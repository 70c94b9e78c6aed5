package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/sipcourse-backend/api/middleware"
	"github.com/angelmondragon/sipcourse-backend/api/responses"
	"github.com/angelmondragon/sipcourse-backend/internal/portfolio"
	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
)

// PortfolioSummary returns the dashboard totals for the learner.
func PortfolioSummary(svc portfolio.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "portfolio service unavailable"))
			return
		}
		ownerID := middleware.UserIDFromContext(r.Context())
		if ownerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		summary, err := svc.Summary(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
