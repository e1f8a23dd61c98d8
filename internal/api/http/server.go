package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/api/http/middleware"
	"github.com/Alijeyrad/simorq_portal/internal/api/http/router"
	"github.com/Alijeyrad/simorq_portal/internal/service/content"
	"github.com/Alijeyrad/simorq_portal/pkg/observability"
)

var Module = fx.Module("http", fx.Provide(NewServer))

// route, not url: public paths and queries carry bearer tokens.
const accessLogFormat = "${ip} - [${time}] [req_id=${respHeader:X-Request-Id}] ${method} ${route} ${status} ${latency}\n"

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Redis     *redis.Client
	Router    *router.Router
	OTel      *observability.Provider `optional:"true"`
}

func NewServer(p Params) *fiber.App {
	timeout := time.Duration(p.Cfg.Server.TimeoutSeconds) * time.Second
	app := fiber.New(fiber.Config{
		AppName:      p.Cfg.Observability.ServiceName,
		BodyLimit:    content.MaxExamFileSize + 1<<20,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		ErrorHandler: errorHandler,
	})

	// Spans read the request id, so RequestID goes first.
	app.Use(middleware.RequestID())
	if p.OTel != nil {
		app.Use(observability.FiberMiddleware(
			p.Cfg.Observability.Metrics.Path,
			healthcheck.LivenessEndpoint,
			healthcheck.ReadinessEndpoint,
			healthcheck.StartupEndpoint,
		))
	}
	useGlobalMiddleware(app, p.Cfg.Server, p.Redis)
	p.Router.Register(app)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Bind synchronously so a taken port fails startup.
			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", p.Cfg.Server.Port))
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			go func() {
				if err := app.Listener(ln, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
					slog.Error("http: server stopped", "err", err)
				}
			}()
			slog.Info("http: listening", "addr", ln.Addr().String())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
	return app
}

func useGlobalMiddleware(app *fiber.App, cfg config.ServerConfig, rdb *redis.Client) {
	app.Use(recoverer.New())

	if cfg.Environment == "production" {
		app.Use(helmet.New())
		app.Use(middleware.NewLimiterWithRedis(rdb, cfg.RateLimit, "global:"))
	}
	if cfg.CORS.Enabled {
		c := cfg.CORS
		app.Use(cors.New(cors.Config{
			AllowOrigins:     c.AllowOrigins,
			AllowMethods:     c.AllowMethods,
			AllowHeaders:     c.AllowHeaders,
			ExposeHeaders:    c.ExposeHeaders,
			AllowCredentials: c.AllowCredentials,
			MaxAge:           c.MaxAgeSeconds,
		}))
	}

	app.Use(logger.New(logger.Config{Format: accessLogFormat}))
}

// errorHandler renders errors that escape handlers (routing misses, body
// limits, panics turned into errors) in the same shape handlers use.
func errorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status, msg = fe.Code, fe.Message
	} else {
		slog.ErrorContext(c.Context(), "http: unhandled error", "err", err, "route", c.Route().Path)
	}
	return c.Status(status).JSON(fiber.Map{
		"error":   strings.ToLower(strings.ReplaceAll(nethttp.StatusText(status), " ", "_")),
		"message": msg,
	})
}
