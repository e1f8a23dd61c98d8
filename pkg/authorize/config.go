package authorize

import "github.com/Alijeyrad/simorq_portal/config"

type Config struct {
	// CasbinModelPath is optional; empty selects the built-in model.
	CasbinModelPath string
	// PolicySyncEnabled reloads policies when another instance writes them.
	PolicySyncEnabled bool
}

func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{
		CasbinModelPath:   c.CasbinModelPath,
		PolicySyncEnabled: c.PolicySyncEnabled,
	}
}
