package messages

// Install and cleanup messages.
const (
	InstallRootRequired        = "root path is required"
	InstallSystemRequired      = "install system is required"
	InstallReposRequired       = "host repositories are required"
	InstallSessionRequired     = "session is required"
	InstallVariantRequired     = "variant is required"
	InstallStageFailedFmt      = "stage %s: %w"
	InstallInvalidModeFmt      = "invalid install mode %q"
	InstallFailedReadFmt       = "failed to read %s: %w"
	InstallFailedReadBundleFmt = "failed to read bundled file %s: %w"
	InstallFailedStatFmt       = "failed to stat %s: %w"
	InstallFailedWriteFmt      = "failed to write %s: %w"
	InstallFailedRemoveFmt     = "failed to remove %s: %w"
	InstallFailedCreateDirFmt  = "failed to create directory for %s: %w"

	InstallErrCollision            = "install targets already exist"
	InstallErrModulePageMissing    = "module page is missing"
	InstallErrBuiltinField         = "built-in field is missing"
	InstallErrAdminTemplate        = "admin template is missing"
	InstallModulePageMissingFmt    = "%w: %s (register the module with `sitesctl host init` first)"
	InstallBuiltinFieldMissingFmt  = "%w: %s"
	InstallAdminTemplateMissingFmt = "%w: %s"
	InstallCollisionSummaryFmt     = "%w: %d categories collide"

	InstallLookupFmt         = "look up %s %s: %w"
	InstallSaveFieldFmt      = "save field %s: %w"
	InstallSaveFieldgroupFmt = "save fieldgroup %s: %w"
	InstallSaveTemplateFmt   = "save template %s: %w"
	InstallSavePageFmt       = "save page %s: %w"
	InstallReadConfigFmt     = "read %s config: %w"
	InstallSaveConfigFmt     = "save %s config: %w"

	// Session text. These keys double as the English catalog entries.
	InstallCollisionPagesFmt     = "These pages already exist: %s"
	InstallCollisionFieldsFmt    = "These fields already exist: %s"
	InstallCollisionTemplatesFmt = "These templates already exist: %s"
	InstallCollisionFilesFmt     = "These files already exist in the root directory: %s"
	InstallSuccessFmt            = "%s installed successfully."

	InstallFileKeptFmt      = "Warning: keeping existing %s; it differs from the bundled copy:\n"
	InstallDiffTruncatedFmt = "... (truncated to %d lines)"
	InstallDiffFromSuffix   = " (current)"
	InstallDiffToSuffix     = " (bundled)"

	CleanupErrNotConfirmed     = "cleanup was not confirmed"
	CleanupFindPagesFmt        = "find %s pages: %w"
	CleanupDeletePageFmt       = "delete page %s: %w"
	CleanupDeleteTemplateFmt   = "delete template %s: %w"
	CleanupDeleteFieldgroupFmt = "delete fieldgroup %s: %w"
	CleanupDeleteFieldFmt      = "delete field %s: %w"
	CleanupResetConfigFmt      = "reset %s config: %w"

	CleanupSuccessFmt          = "%s cleaned up successfully."
	CleanupSuccessWithFilesFmt = "%s and Files cleaned up successfully."
)
