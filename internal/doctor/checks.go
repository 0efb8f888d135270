package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kongondo/SitesManager-sub001/internal/host"
	"github.com/kongondo/SitesManager-sub001/internal/install"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

// Options carries the host handles the checks read from.
type Options struct {
	Root   string
	Repos  host.Repositories
	System install.System
}

// Check runs every check for v in display order: module page, fields, templates,
// pages, files and the installed flag. It never writes.
func Check(ctx context.Context, v variant.Variant, opts Options) []Result {
	if opts.System == nil {
		opts.System = install.RealSystem{}
	}
	installed, flagResult := CheckInstalledFlag(ctx, v, opts.Repos)

	present, err := install.Verify(ctx, v, install.Options{
		Root:   opts.Root,
		Repos:  opts.Repos,
		System: opts.System,
	})
	if err != nil {
		return []Result{moduleFailure(v, err), flagResult}
	}

	results := []Result{{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameModule,
		Message:   fmt.Sprintf(messages.DoctorModulePageFmt, v.ModulePage),
	}}
	records := []struct {
		name     string
		noun     string
		expected []string
		present  []string
	}{
		{messages.DoctorCheckNameFields, "fields", v.FieldNames(), present.Fields},
		{messages.DoctorCheckNameTemplates, "templates", v.TemplateNames(), present.Templates},
		{messages.DoctorCheckNamePages, "pages", v.PageNames(), present.Pages},
	}
	complete := true
	for _, rec := range records {
		results = append(results, CheckPresence(v, rec.name, rec.noun, rec.expected, rec.present, installed))
		if len(rec.present) != len(rec.expected) {
			complete = false
		}
	}
	results = append(results, CheckFiles(v, present.Files, installed))

	if installed && !complete {
		flagResult = Result{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameInstalled,
			Message:        fmt.Sprintf(messages.DoctorFlagMismatchFmt, v.FullyInstalledKey(), 1),
			Recommendation: fmt.Sprintf(messages.DoctorPartialRecommendFmt, v.Key),
		}
	}
	return append(results, flagResult)
}

func moduleFailure(v variant.Variant, err error) Result {
	if errors.Is(err, install.ErrModulePageMissing) {
		return Result{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameModule,
			Message:        fmt.Sprintf(messages.DoctorModulePageMissingFmt, v.ModulePage),
			Recommendation: messages.DoctorModulePageRecommend,
		}
	}
	return Result{
		Status:    StatusFail,
		CheckName: messages.DoctorCheckNameModule,
		Message:   fmt.Sprintf(messages.DoctorLookupFailedFmt, err),
	}
}

// CheckInstalledFlag reads the module's fully installed flag. The returned result
// assumes the records are complete; Check downgrades it when they are not.
func CheckInstalledFlag(ctx context.Context, v variant.Variant, repos host.Repositories) (bool, Result) {
	key := v.FullyInstalledKey()
	if repos.Modules == nil {
		return false, Result{
			Status:    StatusFail,
			CheckName: messages.DoctorCheckNameInstalled,
			Message:   messages.InstallReposRequired,
		}
	}
	cfg, err := repos.Modules.GetConfig(ctx, v.ModuleClass)
	if err != nil {
		res := Result{
			Status:    StatusFail,
			CheckName: messages.DoctorCheckNameInstalled,
			Message:   fmt.Sprintf(messages.DoctorLookupFailedFmt, err),
		}
		if errors.Is(err, host.ErrNotFound) {
			res.Recommendation = messages.DoctorModulePageRecommend
		}
		return false, res
	}
	flag, ok := host.ConfigInt(cfg, key)
	if !ok {
		return false, Result{
			Status:         StatusWarn,
			CheckName:      messages.DoctorCheckNameInstalled,
			Message:        fmt.Sprintf(messages.DoctorFlagUnsetFmt, key),
			Recommendation: messages.DoctorModulePageRecommend,
		}
	}
	return flag == 1, Result{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameInstalled,
		Message:   fmt.Sprintf(messages.DoctorFlagSetFmt, key, flag),
	}
}

// CheckPresence compares the records found against the expected set. A complete
// set is healthy only when the module is flagged installed, an empty set only when
// it is not. Anything in between is left over from an interrupted run.
func CheckPresence(v variant.Variant, checkName, noun string, expected, present []string, installed bool) Result {
	res := Result{CheckName: checkName}
	switch {
	case len(present) == len(expected):
		res.Message = fmt.Sprintf(messages.DoctorAllPresentFmt, len(expected), noun)
		res.Status = StatusOK
		if !installed {
			res.Status = StatusWarn
			res.Recommendation = fmt.Sprintf(messages.DoctorPartialRecommendFmt, v.Key)
		}
	case len(present) == 0:
		res.Message = fmt.Sprintf(messages.DoctorNonePresentFmt, len(expected), noun)
		res.Status = StatusOK
		if installed {
			res.Status = StatusFail
			res.Recommendation = fmt.Sprintf(messages.DoctorPartialRecommendFmt, v.Key)
		}
	default:
		res.Message = fmt.Sprintf(messages.DoctorPartialFmt, strings.Join(missing(expected, present), ", "))
		res.Status = StatusWarn
		if installed {
			res.Status = StatusFail
		}
		res.Recommendation = fmt.Sprintf(messages.DoctorPartialRecommendFmt, v.Key)
	}
	return res
}

// CheckFiles reports the bundled files in the root. Cleanup may keep them on
// purpose, so files without an install are not a problem.
func CheckFiles(v variant.Variant, present []string, installed bool) Result {
	expected := v.DestFiles()
	res := Result{Status: StatusOK, CheckName: messages.DoctorCheckNameFiles}
	switch {
	case len(present) == len(expected):
		res.Message = fmt.Sprintf(messages.DoctorAllPresentFmt, len(expected), "files")
		if !installed {
			res.Message = fmt.Sprintf(messages.DoctorFilesKeptFmt, strings.Join(present, ", "))
		}
	case !installed && len(present) > 0:
		res.Message = fmt.Sprintf(messages.DoctorFilesKeptFmt, strings.Join(present, ", "))
	case !installed:
		res.Message = fmt.Sprintf(messages.DoctorNonePresentFmt, len(expected), "files")
	default:
		res.Status = StatusWarn
		res.Message = fmt.Sprintf(messages.DoctorPartialFmt, strings.Join(missing(expected, present), ", "))
		res.Recommendation = fmt.Sprintf(messages.DoctorFilesMissingRecommendFmt, v.Key)
	}
	return res
}

func missing(expected, present []string) []string {
	seen := make(map[string]struct{}, len(present))
	for _, name := range present {
		seen[name] = struct{}{}
	}
	var out []string
	for _, name := range expected {
		if _, ok := seen[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
