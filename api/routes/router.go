package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/sipcourse-backend/api/controllers"
	"github.com/angelmondragon/sipcourse-backend/api/middleware"
	"github.com/angelmondragon/sipcourse-backend/internal/catalog"
	"github.com/angelmondragon/sipcourse-backend/internal/identity"
	"github.com/angelmondragon/sipcourse-backend/internal/portfolio"
	"github.com/angelmondragon/sipcourse-backend/internal/records"
	"github.com/angelmondragon/sipcourse-backend/pkg/auth/session"
	"github.com/angelmondragon/sipcourse-backend/pkg/config"
	"github.com/angelmondragon/sipcourse-backend/pkg/logger"
	"github.com/angelmondragon/sipcourse-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/sipcourse-backend/pkg/redis"
)

// RedisClient is the slice of the redis client the HTTP layer needs. A nil
// value disables rate limiting and idempotency.
type RedisClient interface {
	pkgredis.IdempotencyStore
	middleware.RateLimiter
	controllers.Pinger
}

// Dependencies carries everything cmd/api wires into the router.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisClient
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Recorder

	Identity  identity.Service
	Catalog   catalog.Service
	Records   records.Service
	Portfolio portfolio.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg, deps.Metrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var (
		limiter     middleware.RateLimiter
		idempotency pkgredis.IdempotencyStore
	)
	pingers := map[string]controllers.Pinger{}
	if deps.DB != nil {
		pingers["db"] = deps.DB
	}
	if deps.Redis != nil {
		limiter = deps.Redis
		idempotency = deps.Redis
		pingers["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, pingers, logg))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	authenticated := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	planDeps := controllers.PlanDeps{
		Catalog:   deps.Catalog,
		Records:   deps.Records,
		Portfolio: deps.Portfolio,
		Metrics:   deps.Metrics,
		Logger:    logg,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(deps.Identity, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.AuthRegister(deps.Identity, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Identity, logg))
			r.With(authenticated).Post("/logout", controllers.AuthLogout(deps.Identity, logg))
		})

		r.Get("/courses", controllers.CatalogCourses(deps.Catalog, logg))
		r.Get("/courses/{courseId}", controllers.CatalogCourse(deps.Catalog, logg))
		r.Get("/domains", controllers.CatalogDomains(deps.Catalog, logg))

		r.Get("/plans/tiers", controllers.PlanTiers())
		r.Post("/plans/quote", controllers.PlanQuote(planDeps))

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(middleware.Idempotency(idempotency, logg))

			r.Get("/me", controllers.MeGet(deps.Identity, logg))
			r.Post("/me/interests", controllers.MeToggleInterest(deps.Identity, logg))

			r.Post("/plans", controllers.PlanCreate(planDeps))
			r.Get("/plans", controllers.PlanList(deps.Records, logg))
			r.Get("/plans/{planId}", controllers.PlanGet(deps.Records, logg))

			r.Get("/portfolio/summary", controllers.PortfolioSummary(deps.Portfolio, logg))
		})
	})

	return r
}
