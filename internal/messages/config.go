package messages

// Config messages for configuration loading and validation.
const (
	ConfigErrValidation      = "config validation failed"
	ConfigReadFmt            = "failed to read config %s: %w"
	ConfigInvalidConfigFmt   = "invalid config %s: %w"
	ConfigUnknownKeysFmt     = "%w: unknown keys in %s: %v"
	ConfigValidationFmt      = "%w: %s: %s"
	ConfigDatabaseRequired   = "host.database is required"
	ConfigAdminThemeRequired = "host.admin_theme is required"
	ConfigLandingURLRequired = "host.landing_url is required"
	ConfigLanguageInvalidFmt = "ui.language %q is not supported (supported: %s)"
	ConfigLogLevelInvalidFmt = "log.level %q must be one of debug, info, warn, error"
	ConfigExpandPathFmt      = "expand %s: %w"
	ConfigRootRequired       = "config root path is required"
	ConfigResolveRootFmt     = "resolve root %s: %w"
	ConfigFlagsSource        = "command-line flags"
)
