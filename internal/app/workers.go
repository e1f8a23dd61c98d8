package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/service/notification"
)

// WorkerModule registers the NATS notification dispatch worker.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	NC       *nats.Conn `optional:"true"`
	NotifSvc notification.Service
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		slog.Debug("dispatch_worker: in-process transport, no subscription")
		return
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = startDispatchWorker(p.NC, p.NotifSvc, p.Cfg.Notification)
			return err
		},
		OnStop: func(ctx context.Context) error {
			// Connection drain is handled by ProvideNatsClient
			if sub == nil {
				return nil
			}
			return sub.Unsubscribe()
		},
	})
}

// ---------------------------------------------------------------------------
// dispatch_worker
// ---------------------------------------------------------------------------

// startDispatchWorker joins a queue group so each event is dispatched by one
// replica only.
func startDispatchWorker(nc *nats.Conn, svc notification.Service, cfg config.NotificationConfig) (*nats.Subscription, error) {
	subject := notification.SubjectWildcard(cfg.SubjectPrefix)
	sub, err := nc.QueueSubscribe(subject, cfg.QueueGroup, notification.Handler(svc, dispatchTimeout))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	slog.Info("dispatch_worker: started", "subject", subject, "queue", cfg.QueueGroup)
	return sub, nil
}
