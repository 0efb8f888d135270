package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "sitesctl"
	// RootShort is the short description for the root command.
	RootShort       = "Install and clean up the Multi Sites and Sites Manager modules"
	RootVersionFlag = "Print version and exit"

	RootFlagRoot     = "Host application root directory (defaults to the working directory)"
	RootFlagConfig   = "Path to sitesctl.toml (defaults to <root>/sitesctl.toml)"
	RootFlagLang     = "Language for session messages (overrides [ui] language)"
	RootFlagLogLevel = "Log level: debug, info, warn or error (overrides [log] level)"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	HostUse         = "host"
	HostShort       = "Manage the host content store"
	HostInitUse     = "init"
	HostInitShort   = "Create the host store and register both modules"
	HostInitDoneFmt = "Host store ready at %s; registered %s\n"

	InstallUse      = "install <variant>"
	InstallShort    = "Provision fields, templates, pages and files for a module"
	InstallFlagMode = "Install mode; 1 skips the pre-flight collision checks"
	InstallDoneFmt  = "Installed %s: %d fields, %d templates, %d pages, %d files copied, %d files kept (run %s)\n"

	CleanupUse                   = "cleanup <variant>"
	CleanupShort                 = "Remove the records and files created by install"
	CleanupFlagYes               = "Confirm cleanup without prompting"
	CleanupFlagRemoveIndexConfig = "Also delete index.config.php from the host root"
	CleanupFlagRemoveSitesJSON   = "Also delete sites.json from the host root"
	CleanupRequiresConfirmation  = "cleanup requires confirmation; re-run in an interactive terminal or pass --yes"
	CleanupPromptTitleFmt        = "Clean up %s?"
	CleanupPromptDescription     = "Pages, templates, fieldgroups and fields created by install are deleted."
	CleanupPromptRemoveIndexFmt  = "Delete %s?"
	CleanupPromptRemoveSitesFmt  = "Delete %s?"
	CleanupDoneFmt               = "Cleaned up %s: %d pages, %d templates, %d fieldgroups, %d fields, %d files removed (run %s)\n"
	CleanupCancelled             = "Cleanup cancelled."

	VariantsUse     = "variants"
	VariantsShort   = "List the supported module variants"
	VariantsLineFmt = "%-14s %-14s %s\n"

	SessionMessagePrefix  = "✓ "
	SessionErrorPrefix    = "✗ "
	SessionRedirectFmt    = "→ redirect %s\n"
	SessionLineFmt        = "%s%s\n"
	CommandRequiresArgFmt = "%s requires exactly one variant argument (one of %s)"
)
