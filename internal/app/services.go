package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/internal/repo"
	"github.com/Alijeyrad/simorq_portal/internal/service/activation"
	"github.com/Alijeyrad/simorq_portal/internal/service/auth"
	"github.com/Alijeyrad/simorq_portal/internal/service/content"
	"github.com/Alijeyrad/simorq_portal/internal/service/identity"
	"github.com/Alijeyrad/simorq_portal/internal/service/notification"
	"github.com/Alijeyrad/simorq_portal/internal/service/patient"
	"github.com/Alijeyrad/simorq_portal/internal/service/share"
	"github.com/Alijeyrad/simorq_portal/internal/service/token"
	"github.com/Alijeyrad/simorq_portal/pkg/email"
	pasetotoken "github.com/Alijeyrad/simorq_portal/pkg/paseto"
	s3pkg "github.com/Alijeyrad/simorq_portal/pkg/s3"
	"github.com/Alijeyrad/simorq_portal/pkg/sms"
	"github.com/Alijeyrad/simorq_portal/pkg/util/codes"
	"github.com/Alijeyrad/simorq_portal/pkg/util/password"
)

// dispatchTimeout bounds one whole in-process dispatch, all recipients included.
const dispatchTimeout = 5 * time.Minute

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideTokenService,
		ProvideIdentityService,
		ProvideAuthService,
		ProvidePatientService,
		ProvideActivationService,
		ProvideShareService,
		ProvideNotificationService,
		ProvideNotificationPublisher,
		ProvideContentService,
		ProvidePasetoManager,
	),
)

func ProvideTokenService(db *repo.Client, cfg *config.Config) token.Service {
	return token.New(db, codes.NewGenerator(codes.FromCentralConfig(cfg.Codes)))
}

func ProvideIdentityService(db *repo.Client, cfg *config.Config) identity.Service {
	return identity.New(db, password.NewHasher(password.FromCentralConfig(cfg.Password)))
}

func ProvideAuthService(rdb *redis.Client, identities identity.Service, paseto *pasetotoken.Manager) auth.Service {
	return auth.New(rdb, identities, paseto)
}

func ProvidePatientService(db *repo.Client, cfg *config.Config) patient.Service {
	return patient.New(db, cfg.SMS.DefaultRegion)
}

func ProvideActivationService(
	db *repo.Client,
	rdb *redis.Client,
	tokens token.Service,
	identities identity.Service,
	mail *email.Client,
	cfg *config.Config,
) activation.Service {
	return activation.New(db, rdb, tokens, identities, mail, cfg)
}

func ProvideShareService(db *repo.Client, tokens token.Service, s3 *s3pkg.Client, cfg *config.Config) share.Service {
	return share.New(db, tokens, s3, cfg)
}

func ProvideNotificationService(
	db *repo.Client,
	mail *email.Client,
	smsCli *sms.Client,
	cfg *config.Config,
) notification.Service {
	var channels []notification.Channel
	for _, name := range cfg.Notification.Channels {
		switch name {
		case config.ChannelEmail:
			channels = append(channels, notification.NewEmailChannel(mail, cfg.Email))
		case config.ChannelSMS:
			channels = append(channels, notification.NewSMSChannel(smsCli))
		}
	}
	return notification.New(db, channels, cfg)
}

// ProvideNotificationPublisher picks the hand-off: in-process, or NATS with the
// dispatch worker on the other side.
func ProvideNotificationPublisher(
	lc fx.Lifecycle,
	svc notification.Service,
	nc *nats.Conn,
	cfg *config.Config,
) notification.Publisher {
	if cfg.Notification.Transport == config.TransportNats && nc != nil {
		return notification.NewNatsPublisher(nc, cfg.Notification.SubjectPrefix)
	}

	pub := notification.NewLocalPublisher(svc, dispatchTimeout)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("waiting for in-flight notification dispatches")
			return pub.Close(ctx)
		},
	})
	return pub
}

func ProvideContentService(db *repo.Client, s3 *s3pkg.Client, pub notification.Publisher) content.Service {
	return content.New(db, s3, pub)
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}
