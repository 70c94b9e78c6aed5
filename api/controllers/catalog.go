package controllers

import (
	"net/http"

	"github.com/angelmondragon/sipcourse-backend/api/responses"
	"github.com/angelmondragon/sipcourse-backend/api/validators"
	"github.com/angelmondragon/sipcourse-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
)

// CatalogCourses lists courses, optionally narrowed with ?domain=.
func CatalogCourses(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var (
			courses []catalog.CourseDTO
			err     error
		)
		if domain := validators.SanitizeString(r.URL.Query().Get("domain"), 60); domain != "" {
			courses, err = svc.ListCoursesByDomain(r.Context(), domain)
		} else {
			courses, err = svc.ListCourses(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, courses)
	}
}

func CatalogCourse(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "courseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		course, err := svc.GetCourse(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, course)
	}
}

func CatalogDomains(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		domains, err := svc.AvailableDomains(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if domains == nil {
			domains = []string{}
		}
		responses.WriteSuccess(w, domains)
	}
}
