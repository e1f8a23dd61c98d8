package system

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/simorq_portal/config"
	"github.com/Alijeyrad/simorq_portal/pkg/authorize"
	"github.com/Alijeyrad/simorq_portal/pkg/database"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("read config flag: %w", err)
	}
	cfg, err := config.ReadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// commandContext bounds a maintenance command by server.timeout_seconds.
func commandContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	return context.WithTimeout(context.Background(), timeout)
}

// openAuthorization connects the casbin enforcer to the policy database.
// The returned func releases the watcher and the adapter connection.
func openAuthorization(cfg *config.Config) (authorize.IAuthorization, func(), error) {
	enforcer, cleanup, err := authorize.NewEnforcer(
		authorize.FromCentralConfig(cfg.Authorization),
		database.NewDSN(cfg.CasbinDatabase),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create enforcer: %w", err)
	}
	release := func() { cleanup(context.Background()) }

	auth, err := authorize.NewAuthorization(enforcer, cfg.Authorization.SuperadminBypass)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("create authorization: %w", err)
	}
	return auth, release, nil
}
