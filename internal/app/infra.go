package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
	"github.com/Alijeyrad/simorq_portal/pkg/database"
	"github.com/Alijeyrad/simorq_portal/pkg/email"
	"github.com/Alijeyrad/simorq_portal/pkg/observability"
	redispkg "github.com/Alijeyrad/simorq_portal/pkg/redis"
	s3pkg "github.com/Alijeyrad/simorq_portal/pkg/s3"
	"github.com/Alijeyrad/simorq_portal/pkg/sms"
)

// InfraModule provides connections to everything outside the process.
var InfraModule = fx.Module("infra",
	fx.Provide(
		ProvideEntClient,
		ProvideRedis,
		ProvideAuthorization,
		ProvideEmailClient,
		ProvideSMSClient,
		ProvideOTel,
		ProvideS3Client,
		ProvideNatsClient,
	),
)

// onStop releases a resource when the app stops, logging what it closes.
func onStop(lc fx.Lifecycle, what string, fn func(context.Context) error) {
	lc.Append(fx.StopHook(func(ctx context.Context) error {
		slog.Debug("infra: closing", "resource", what)
		return fn(ctx)
	}))
}

func ProvideEntClient(lc fx.Lifecycle, cfg *config.Config) (*repo.Client, error) {
	client, err := database.NewEntClient(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("portal db: %w", err)
	}
	onStop(lc, "portal db", func(context.Context) error { return client.Close() })
	return client, nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	onStop(lc, "redis", func(context.Context) error { return rdb.Close() })
	return rdb, nil
}

// ProvideAuthorization wraps the enforcer in the audit logger when enabled.
func ProvideAuthorization(lc fx.Lifecycle, cfg *config.Config) (authorize.IAuthorization, error) {
	enforcer, cleanup, err := authorize.NewEnforcer(
		authorize.FromCentralConfig(cfg.Authorization),
		database.NewDSN(cfg.CasbinDatabase),
	)
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer, cfg.Authorization.SuperadminBypass)
	if err != nil {
		cleanup(context.Background())
		return nil, err
	}
	onStop(lc, "casbin watcher", func(ctx context.Context) error { cleanup(ctx); return nil })

	if cfg.Authorization.EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	return auth, nil
}

func ProvideEmailClient(cfg *config.Config) (*email.Client, error) {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	return s3pkg.New(cfg.S3)
}

// ProvideNatsClient connects only for the nats transport and provides nil
// otherwise. Reconnects are unbounded; published events are buffered by the
// client while disconnected.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Notification.Transport != config.TransportNats {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL,
		nats.Name(cfg.Observability.ServiceName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats: disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats: reconnected", "url", c.ConnectedUrlRedacted())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	onStop(lc, "nats", func(context.Context) error { return nc.Drain() })
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability: ready",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	onStop(lc, "telemetry", provider.Shutdown)
	return provider, nil
}
