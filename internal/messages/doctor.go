package messages

// Doctor messages for the doctor command.
const (
	// DoctorUse is the doctor command name.
	DoctorUse   = "doctor <variant>"
	DoctorShort = "Report which install records and files exist for a module"

	DoctorHealthCheckFmt = "🏥 Checking %s in %s...\n"

	DoctorCheckNameModule    = "Module"
	DoctorCheckNameFields    = "Fields"
	DoctorCheckNameTemplates = "Templates"
	DoctorCheckNamePages     = "Pages"
	DoctorCheckNameFiles     = "Files"
	DoctorCheckNameInstalled = "Installed"

	DoctorModulePageFmt            = "Module page %s exists"
	DoctorModulePageMissingFmt     = "Module page %s is missing"
	DoctorModulePageRecommend      = "Run `sitesctl host init` to register the module."
	DoctorLookupFailedFmt          = "Lookup failed: %v"
	DoctorAllPresentFmt            = "All %d %s present"
	DoctorNonePresentFmt           = "None of the %d %s present"
	DoctorPartialFmt               = "Missing %s"
	DoctorPartialRecommendFmt      = "A previous run stopped part way. Run `sitesctl cleanup %s --yes`, then install again."
	DoctorFilesMissingRecommendFmt = "Run `sitesctl cleanup %s --yes`, then install again to restore the bundled files."
	DoctorFilesKeptFmt             = "%s kept in the root directory"
	DoctorFlagSetFmt               = "%s = %d"
	DoctorFlagUnsetFmt             = "%s is not set"
	DoctorFlagMismatchFmt          = "%s = %d but records are incomplete"
	DoctorFailureSummary           = "❌ Some checks failed or triggered warnings. Please address the items above."
	DoctorFailureError             = "doctor checks failed"
	DoctorSuccessSummary           = "✅ All checks passed."

	DoctorStatusOKLabel        = "[OK]  "
	DoctorStatusWarnLabel      = "[WARN]"
	DoctorStatusFailLabel      = "[FAIL]"
	DoctorResultLineFmt        = "%s %-10s %s\n"
	DoctorRecommendationPrefix = "       💡 "
	DoctorRecommendationIndent = "         "
)
