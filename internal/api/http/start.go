package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/api/http/router"
	"github.com/Alijeyrad/simorq_portal/internal/app"
)

// Start blocks until the process is signalled, then shuts down within timeout.
func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// Pulling *fiber.App is what makes NewServer run and register its hooks.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
		fx.WithLogger(func() fxevent.Logger {
			// fx lifecycle events only show at debug level.
			l := &fxevent.SlogLogger{Logger: slog.Default()}
			l.UseLogLevel(slog.LevelDebug)
			return l
		}),
	).Run()
}
