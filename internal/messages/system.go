package messages

// System messages for internal operations.
const (
	LockOpenFmt    = "open lock %s: %w"
	LockAcquireFmt = "lock %s: %w"
	LockTimeoutFmt = "timed out waiting for lock after %s"

	StoreCreateDirFmt = "create store directory for %s: %w"
	StoreOpenFmt      = "open store %s: %w"
	StoreSchemaFmt    = "create schema in %s: %w"

	LogInvalidLevelFmt = "invalid log level %q"

	PromptRequiresTerminal = "interactive prompts require a terminal"
	PromptToggleOn         = "Yes"
	PromptToggleOff        = "No"

	VariantUnknownFmt = "%w %q (known: %s)"
	VariantErrUnknown = "unknown variant"
)

// Root discovery messages.
const (
	RootStartRequired = "root discovery requires a start path"
	RootSiteNotDirFmt = "%s exists but is not a directory"
	RootStatFmt       = "stat %s: %w"
)
