package install

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kongondo/SitesManager-sub001/internal/host"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

// CleanupReport lists what a cleanup removed.
type CleanupReport struct {
	Pages        []string
	Templates    []string
	Fieldgroups  []string
	Fields       []string
	RemovedFiles []string
}

// cleanupState is threaded through the cleanup stages.
type cleanupState struct {
	form              Form
	removeIndexConfig bool
	removeSitesJSON   bool
	report            CleanupReport
}

func (st *cleanupState) removeFile(dest string) bool {
	switch dest {
	case variant.IndexConfigDest:
		return st.removeIndexConfig
	case variant.SitesJSONDest:
		return st.removeSitesJSON
	default:
		return false
	}
}

func (r *runner) cleanupStages() []stage[cleanupState] {
	return []stage[cleanupState]{
		{name: "cleanUp", run: r.cleanUp},
		{name: "cleanUpPages", run: r.cleanUpPages},
		{name: "cleanUpTemplates", run: r.cleanUpTemplates},
		{name: "cleanUpFields", run: r.cleanUpFields},
		{name: "cleanUpFiles", run: r.cleanUpFiles},
		{name: "saveModuleConfigs", run: r.resetModuleConfig},
	}
}

// Cleanup removes what Install created and resets the module config to its
// defaults. It runs only when the form confirms it; the two file flags decide
// whether the copied files are deleted. Records that are already gone are skipped.
func Cleanup(ctx context.Context, v variant.Variant, form Form, opts Options) (CleanupReport, error) {
	r, err := newRunner(v, opts)
	if err != nil {
		return CleanupReport{}, err
	}
	st := &cleanupState{form: form}
	r.logger.Info("cleanup start")
	if err := runStages(ctx, r.logger, r.cleanupStages(), st); err != nil {
		return st.report, err
	}
	r.logger.Info("cleanup complete",
		"pages", len(st.report.Pages),
		"templates", len(st.report.Templates),
		"fields", len(st.report.Fields),
		"files", len(st.report.RemovedFiles),
	)
	return st.report, nil
}

func (r *runner) cleanUp(_ context.Context, st *cleanupState) error {
	if !FormBool(st.form, FormCleanupConfirm) {
		return ErrCleanupNotConfirmed
	}
	st.removeIndexConfig = FormBool(st.form, FormRemoveIndexConfig)
	st.removeSitesJSON = FormBool(st.form, FormRemoveSitesJSON)
	return nil
}

// cleanUpPages deletes each container page under the module page with its
// descendants, then sweeps trashed leaf pages left by earlier deletions.
func (r *runner) cleanUpPages(ctx context.Context, st *cleanupState) error {
	module, err := r.modulePage(ctx)
	switch {
	case errors.Is(err, ErrModulePageMissing):
		r.logger.Debug("module page missing; skipping container pages")
	case err != nil:
		return err
	default:
		for _, name := range r.v.ContainerTemplates() {
			tpl, ok, err := r.template(ctx, name)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			page, err := r.repos.Pages.FindOne(ctx, host.PageQuery{ParentID: module.ID, TemplateID: tpl.ID, IncludeTrashed: true})
			if errors.Is(err, host.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf(messages.CleanupFindPagesFmt, name, err)
			}
			if err := r.deletePage(ctx, page, true); err != nil {
				return err
			}
			st.report.Pages = append(st.report.Pages, page.Name)
		}
	}

	var leafIDs []int64
	for _, name := range r.v.LeafTemplates() {
		tpl, ok, err := r.template(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			leafIDs = append(leafIDs, tpl.ID)
		}
	}
	if len(leafIDs) == 0 {
		return nil
	}
	trashed, err := r.repos.Pages.Find(ctx, host.PageQuery{TemplateIDs: leafIDs, MinStatus: host.StatusTrash})
	if err != nil {
		return fmt.Errorf(messages.CleanupFindPagesFmt, "trashed", err)
	}
	for _, page := range trashed {
		if err := r.deletePage(ctx, page, false); err != nil {
			return err
		}
		st.report.Pages = append(st.report.Pages, page.Name)
	}
	return nil
}

func (r *runner) deletePage(ctx context.Context, page host.Page, recursive bool) error {
	err := r.repos.Pages.Delete(ctx, page.ID, recursive)
	if err != nil && !errors.Is(err, host.ErrNotFound) {
		return fmt.Errorf(messages.CleanupDeletePageFmt, page.Name, err)
	}
	return nil
}

func (r *runner) template(ctx context.Context, name string) (host.Template, bool, error) {
	tpl, err := r.repos.Templates.Get(ctx, name)
	if errors.Is(err, host.ErrNotFound) {
		return host.Template{}, false, nil
	}
	if err != nil {
		return host.Template{}, false, fmt.Errorf(messages.InstallLookupFmt, "template", name, err)
	}
	return tpl, true, nil
}

// cleanUpTemplates deletes each template before the fieldgroup it referenced.
func (r *runner) cleanUpTemplates(ctx context.Context, st *cleanupState) error {
	for _, name := range r.v.TemplateNames() {
		tpl, ok, err := r.template(ctx, name)
		if err != nil {
			return err
		}
		var groupID int64
		if ok {
			if err := r.repos.Templates.Delete(ctx, tpl.ID); err != nil && !errors.Is(err, host.ErrNotFound) {
				return fmt.Errorf(messages.CleanupDeleteTemplateFmt, name, err)
			}
			st.report.Templates = append(st.report.Templates, name)
			groupID = tpl.FieldgroupID
		}
		group, ok, err := r.fieldgroup(ctx, groupID, name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := r.repos.Fieldgroups.Delete(ctx, group.ID); err != nil && !errors.Is(err, host.ErrNotFound) {
			return fmt.Errorf(messages.CleanupDeleteFieldgroupFmt, group.Name, err)
		}
		st.report.Fieldgroups = append(st.report.Fieldgroups, group.Name)
	}
	return nil
}

// fieldgroup finds the group a deleted template referenced, falling back to the
// group sharing the template's name.
func (r *runner) fieldgroup(ctx context.Context, id int64, name string) (host.Fieldgroup, bool, error) {
	if id != 0 {
		group, err := r.repos.Fieldgroups.GetByID(ctx, id)
		if err == nil {
			return group, true, nil
		}
		if !errors.Is(err, host.ErrNotFound) {
			return host.Fieldgroup{}, false, fmt.Errorf(messages.InstallLookupFmt, "fieldgroup", name, err)
		}
	}
	group, err := r.repos.Fieldgroups.Get(ctx, name)
	if errors.Is(err, host.ErrNotFound) {
		return host.Fieldgroup{}, false, nil
	}
	if err != nil {
		return host.Fieldgroup{}, false, fmt.Errorf(messages.InstallLookupFmt, "fieldgroup", name, err)
	}
	return group, true, nil
}

func (r *runner) cleanUpFields(ctx context.Context, st *cleanupState) error {
	for _, name := range r.v.FieldNames() {
		field, err := r.repos.Fields.Get(ctx, name)
		if errors.Is(err, host.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf(messages.InstallLookupFmt, "field", name, err)
		}
		if err := r.repos.Fields.Delete(ctx, field.ID); err != nil && !errors.Is(err, host.ErrNotFound) {
			return fmt.Errorf(messages.CleanupDeleteFieldFmt, name, err)
		}
		st.report.Fields = append(st.report.Fields, name)
	}
	return nil
}

func (r *runner) cleanUpFiles(_ context.Context, st *cleanupState) error {
	for _, c := range r.v.Copies {
		if !st.removeFile(c.Dest) {
			continue
		}
		path := filepath.Join(r.root, c.Dest)
		exists, err := r.fileExists(path)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if err := r.sys.Remove(path); err != nil {
			return fmt.Errorf(messages.InstallFailedRemoveFmt, path, err)
		}
		st.report.RemovedFiles = append(st.report.RemovedFiles, c.Dest)
	}
	return nil
}

func (r *runner) resetModuleConfig(ctx context.Context, st *cleanupState) error {
	if err := r.repos.Modules.SaveConfig(ctx, r.v.ModuleClass, r.v.DefaultConfig()); err != nil {
		return fmt.Errorf(messages.CleanupResetConfigFmt, r.v.ModuleClass, err)
	}
	format := messages.CleanupSuccessFmt
	if len(st.report.RemovedFiles) > 0 {
		format = messages.CleanupSuccessWithFilesFmt
	}
	r.session.Message(r.localizer.Sprintf(format, r.v.Label))
	r.redirect()
	return nil
}
