package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/api/http/handler"
	"github.com/Alijeyrad/simorq_portal/internal/api/http/middleware"
	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/service/activation"
	"github.com/Alijeyrad/simorq_portal/internal/service/auth"
	"github.com/Alijeyrad/simorq_portal/internal/service/content"
	"github.com/Alijeyrad/simorq_portal/internal/service/notification"
	"github.com/Alijeyrad/simorq_portal/internal/service/patient"
	"github.com/Alijeyrad/simorq_portal/internal/service/share"
	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client
	Auth            authorize.IAuthorization
	DB              *repo.Client
	AuthSvc         auth.Service
	PatientSvc      patient.Service
	ActivationSvc   activation.Service
	ShareSvc        share.Service
	ContentSvc      content.Service
	NotificationSvc notification.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

// handlers is one instance of every HTTP handler.
type handlers struct {
	auth         *handler.AuthHandler
	activation   *handler.ActivationHandler
	patient      *handler.PatientHandler
	share        *handler.ShareHandler
	content      *handler.ContentHandler
	notification *handler.NotificationHandler
}

// guards are the middleware route groups put in front of handlers.
type guards struct {
	session fiber.Handler // open staff or patient session
	public  fiber.Handler // per-IP throttle on bearer-token endpoints
}

// can requires the session's login to hold a staff permission.
func (r *Router) can(res authorize.Resource, act authorize.Action) fiber.Handler {
	return middleware.RequirePermission(r.p.Auth, res, act)
}

func (r *Router) Register(app *fiber.App) {
	r.registerSystemRoutes(app)

	h := handlers{
		auth:         handler.NewAuthHandler(r.p.AuthSvc),
		activation:   handler.NewActivationHandler(r.p.ActivationSvc),
		patient:      handler.NewPatientHandler(r.p.PatientSvc, r.p.ActivationSvc),
		share:        handler.NewShareHandler(r.p.ShareSvc),
		content:      handler.NewContentHandler(r.p.ContentSvc),
		notification: handler.NewNotificationHandler(r.p.NotificationSvc),
	}
	g := guards{
		session: middleware.AuthRequired(r.p.AuthSvc),
		public:  middleware.NewLimiterWithRedis(r.p.Redis, r.p.Cfg.Server.PublicRateLimit, "public:"),
	}

	api := app.Group("/api/v1")
	r.registerAuthRoutes(api, h, g)
	r.registerPublicRoutes(api, h, g)
	r.registerPatientRoutes(api, h, g)
	r.registerContentRoutes(api, h, g)
	r.registerNotificationRoutes(api, h, g)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	checkPolicies := r.p.Cfg.Authorization.HealthCheckEnabled
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			if checkPolicies && !authorize.IsPolicyHealthy() {
				return false
			}
			return r.p.DB.Ping(c.Context()) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}
