package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix namespaces environment overrides, e.g. PORTAL_DATABASE_HOST.
	EnvPrefix = "PORTAL"

	ServiceName = "simorq_portal"
)
