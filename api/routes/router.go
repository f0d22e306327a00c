package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sarisari/backoffice/api/controllers"
	authcontrollers "github.com/sarisari/backoffice/api/controllers/auth"
	"github.com/sarisari/backoffice/api/middleware"
	"github.com/sarisari/backoffice/internal/auth"
	"github.com/sarisari/backoffice/internal/earnings"
	"github.com/sarisari/backoffice/internal/stores"
	"github.com/sarisari/backoffice/pkg/auth/session"
	"github.com/sarisari/backoffice/pkg/config"
	"github.com/sarisari/backoffice/pkg/enums"
	"github.com/sarisari/backoffice/pkg/logger"
	"github.com/sarisari/backoffice/pkg/metrics"
	pkgredis "github.com/sarisari/backoffice/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type redisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

type currentUserResolver interface {
	CurrentUser(ctx context.Context) (*auth.CurrentUser, error)
}

// Deps carries everything the router hands to middleware and controllers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Location *time.Location

	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Readiness   map[string]controllers.Pinger

	Redis    redisStore
	Sessions sessionManager

	AuthService     auth.Service
	RegisterService auth.RegisterService
	SwitchService   auth.SwitchStoreService
	CurrentUser     currentUserResolver
	StoreService    stores.Service
	Memberships     middleware.MembershipChecker

	Earnings      *earnings.Service
	EarningsCache *earnings.Cache
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, d.HTTPMetrics),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	loginPolicy := middleware.LoginRateLimit(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimit(cfg.AuthRateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.Readiness, logg))
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	authMW := middleware.Auth(cfg.JWT, d.Sessions, logg)

	// Idempotency runs inline on the endpoint so the full route pattern and
	// the caller identity are known when the scope is built.
	idempotency := passthrough
	if d.Redis != nil {
		idempotency = middleware.Idempotency(d.Redis, logg)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
				Post("/login", authcontrollers.AuthLogin(d.AuthService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg), idempotency).
				Post("/register", authcontrollers.AuthRegister(d.RegisterService, d.AuthService, logg))
			r.Post("/logout", controllers.AuthLogout(d.Sessions, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(d.Sessions, cfg.JWT, logg))

			r.Group(func(r chi.Router) {
				r.Use(authMW)
				r.Get("/current-user", authcontrollers.CurrentUser(d.CurrentUser, logg))
				r.Post("/switch-store", authcontrollers.AuthSwitchStore(d.SwitchService, logg))
			})
		})

		r.Route("/stores/me", func(r chi.Router) {
			r.Use(authMW)
			r.Use(middleware.StoreContext(d.Memberships, logg))
			r.Get("/", controllers.StoreProfile(d.StoreService, logg))
			r.With(middleware.RequireStoreRoles(d.Memberships, logg, enums.MemberRoleOwner, enums.MemberRoleAdmin)).
				Put("/", controllers.StoreUpdate(d.StoreService, logg))
		})

		r.Route("/gcash-earning", func(r chi.Router) {
			r.Use(authMW)
			svc, cache := earningsDeps(d)
			r.Get("/", controllers.GCashEarningList(svc, cache, logg))
			r.With(idempotency).Post("/", controllers.GCashEarningCreate(svc, cache, d.Location, logg))
			r.Put("/", controllers.GCashEarningUpdate(svc, cache, d.Location, logg))
			r.Delete("/", controllers.GCashEarningDelete(svc, cache, logg))
		})
	})

	return r
}

// earningsDeps converts typed nil pointers into nil interfaces so handlers
// can detect a missing service or cache.
func earningsDeps(d Deps) (controllers.EarningService, controllers.EarningsCache) {
	var (
		svc   controllers.EarningService
		cache controllers.EarningsCache
	)
	if d.Earnings != nil {
		svc = d.Earnings
	}
	if d.EarningsCache != nil {
		cache = d.EarningsCache
	}
	return svc, cache
}

func passthrough(next http.Handler) http.Handler {
	return next
}
