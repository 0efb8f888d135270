package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kongondo/SitesManager-sub001/internal/host"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

// Field types of the two fields a module creates.
const (
	FieldtypeTextarea = "FieldtypeTextarea"
	FieldtypeFile     = "FieldtypeFile"
)

// NoParentsSingle limits a template to a single page.
const NoParentsSingle = -1

// InstallReport lists what an install created or left alone.
type InstallReport struct {
	Fields      []string
	Templates   []string
	Pages       []string
	CopiedFiles []string
	// KeptFiles are destinations that already existed and were not overwritten.
	KeptFiles []string
}

// Collisions lists the install targets that already exist, per category.
type Collisions struct {
	Pages     []string
	Fields    []string
	Templates []string
	Files     []string
}

// Categories returns the number of categories with at least one collision.
func (c Collisions) Categories() int {
	n := 0
	for _, names := range [][]string{c.Pages, c.Fields, c.Templates, c.Files} {
		if len(names) > 0 {
			n++
		}
	}
	return n
}

// installState is threaded through the installer stages.
type installState struct {
	mode       int
	admin      host.Template
	modulePage host.Page
	fields     map[variant.FieldRole]host.Field
	templates  map[string]host.Template
	report     InstallReport
}

func (r *runner) installStages() []stage[installState] {
	return []stage[installState]{
		{name: "verifyInstall", run: r.verifyInstall},
		{name: "createFields", run: r.createFields},
		{name: "createTemplates", run: r.createTemplates},
		{name: "extraTemplateSettings", run: r.extraTemplateSettings},
		{name: "createPages", run: r.createPages},
		{name: "copySitesFiles", run: r.copySitesFiles},
		{name: "saveModuleConfigs", run: r.saveInstalledConfig},
	}
}

// Install provisions the variant's fields, templates, pages and files and flags
// the module config as fully installed. The form's install_mode of 1 skips the
// collision checks. A collision aborts before anything is written.
func Install(ctx context.Context, v variant.Variant, form Form, opts Options) (InstallReport, error) {
	r, err := newRunner(v, opts)
	if err != nil {
		return InstallReport{}, err
	}
	mode, err := parseMode(form)
	if err != nil {
		return InstallReport{}, err
	}
	st := &installState{
		mode:      mode,
		fields:    map[variant.FieldRole]host.Field{},
		templates: map[string]host.Template{},
	}
	r.logger.Info("install start", "mode", mode)
	if err := runStages(ctx, r.logger, r.installStages(), st); err != nil {
		return st.report, err
	}
	r.logger.Info("install complete",
		"fields", len(st.report.Fields),
		"templates", len(st.report.Templates),
		"pages", len(st.report.Pages),
		"copied", len(st.report.CopiedFiles),
		"kept", len(st.report.KeptFiles),
	)
	return st.report, nil
}

// Verify reports which install targets already exist without writing anything or
// touching the session.
func Verify(ctx context.Context, v variant.Variant, opts Options) (Collisions, error) {
	if opts.Session == nil {
		opts.Session = discardSession{}
	}
	r, err := newRunner(v, opts)
	if err != nil {
		return Collisions{}, err
	}
	page, err := r.modulePage(ctx)
	if err != nil {
		return Collisions{}, err
	}
	return r.collisions(ctx, page)
}

func parseMode(form Form) (int, error) {
	if form == nil {
		return 0, nil
	}
	raw := strings.TrimSpace(form.Get(FormInstallMode))
	if raw == "" {
		return 0, nil
	}
	mode, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf(messages.InstallInvalidModeFmt, raw)
	}
	return mode, nil
}

// verifyInstall resolves the host prerequisites and, unless checks are skipped,
// reports one session error per colliding category.
func (r *runner) verifyInstall(ctx context.Context, st *installState) error {
	admin, err := r.repos.Templates.Get(ctx, host.AdminTemplate)
	if errors.Is(err, host.ErrNotFound) {
		return fmt.Errorf(messages.InstallAdminTemplateMissingFmt, ErrAdminTemplateMissing, host.AdminTemplate)
	}
	if err != nil {
		return fmt.Errorf(messages.InstallLookupFmt, "template", host.AdminTemplate, err)
	}
	st.admin = admin

	title, err := r.repos.Fields.Get(ctx, host.TitleField)
	if errors.Is(err, host.ErrNotFound) {
		return fmt.Errorf(messages.InstallBuiltinFieldMissingFmt, ErrBuiltinFieldMissing, host.TitleField)
	}
	if err != nil {
		return fmt.Errorf(messages.InstallLookupFmt, "field", host.TitleField, err)
	}
	st.fields[variant.FieldTitle] = title

	page, err := r.modulePage(ctx)
	if err != nil {
		return err
	}
	st.modulePage = page

	if st.mode == ModeSkipChecks {
		r.logger.Warn("collision checks skipped", "mode", st.mode)
		return nil
	}

	c, err := r.collisions(ctx, page)
	if err != nil {
		return err
	}
	report := func(format string, names []string) {
		if len(names) == 0 {
			return
		}
		r.session.Error(r.localizer.Sprintf(format, strings.Join(names, ", ")))
	}
	report(messages.InstallCollisionPagesFmt, c.Pages)
	report(messages.InstallCollisionFieldsFmt, c.Fields)
	report(messages.InstallCollisionTemplatesFmt, c.Templates)
	report(messages.InstallCollisionFilesFmt, c.Files)
	if n := c.Categories(); n > 0 {
		return fmt.Errorf(messages.InstallCollisionSummaryFmt, ErrInstallCollision, n)
	}
	return nil
}

func (r *runner) collisions(ctx context.Context, modulePage host.Page) (Collisions, error) {
	var c Collisions
	for _, name := range r.v.PageNames() {
		_, err := r.repos.Pages.FindOne(ctx, host.PageQuery{ParentID: modulePage.ID, Name: name, IncludeTrashed: true})
		if err == nil {
			c.Pages = append(c.Pages, name)
			continue
		}
		if !errors.Is(err, host.ErrNotFound) {
			return Collisions{}, fmt.Errorf(messages.InstallLookupFmt, "page", name, err)
		}
	}
	for _, name := range r.v.FieldNames() {
		_, err := r.repos.Fields.Get(ctx, name)
		if err == nil {
			c.Fields = append(c.Fields, name)
			continue
		}
		if !errors.Is(err, host.ErrNotFound) {
			return Collisions{}, fmt.Errorf(messages.InstallLookupFmt, "field", name, err)
		}
	}
	for _, name := range r.v.TemplateNames() {
		_, err := r.repos.Templates.Get(ctx, name)
		if err == nil {
			c.Templates = append(c.Templates, name)
			continue
		}
		if !errors.Is(err, host.ErrNotFound) {
			return Collisions{}, fmt.Errorf(messages.InstallLookupFmt, "template", name, err)
		}
	}
	for _, name := range r.v.DestFiles() {
		exists, err := r.fileExists(filepath.Join(r.root, name))
		if err != nil {
			return Collisions{}, err
		}
		if exists {
			c.Files = append(c.Files, name)
		}
	}
	return c, nil
}

func (r *runner) fileExists(path string) (bool, error) {
	_, err := r.sys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(messages.InstallFailedStatFmt, path, err)
}

type fieldSpec struct {
	role  variant.FieldRole
	field host.Field
}

func fieldSpecs(v variant.Variant) []fieldSpec {
	return []fieldSpec{
		{variant.FieldSettings, host.Field{
			Name:    v.SettingsField,
			Type:    FieldtypeTextarea,
			Label:   "Settings",
			Options: map[string]any{"rows": 10, "contentType": 0, "tags": v.Tag},
		}},
		{variant.FieldFiles, host.Field{
			Name:    v.FilesField,
			Type:    FieldtypeFile,
			Label:   "Files",
			Options: map[string]any{"extensions": "zip", "maxFiles": 1, "tags": v.Tag},
		}},
	}
}

func (r *runner) createFields(ctx context.Context, st *installState) error {
	for _, d := range fieldSpecs(r.v) {
		saved, err := r.repos.Fields.Save(ctx, d.field)
		if err != nil {
			return fmt.Errorf(messages.InstallSaveFieldFmt, d.field.Name, err)
		}
		st.fields[d.role] = saved
		st.report.Fields = append(st.report.Fields, saved.Name)
	}
	if _, ok := st.fields[variant.FieldTitle]; !ok {
		title, err := r.repos.Fields.Get(ctx, host.TitleField)
		if err != nil {
			return fmt.Errorf(messages.InstallBuiltinFieldMissingFmt, ErrBuiltinFieldMissing, host.TitleField)
		}
		st.fields[variant.FieldTitle] = title
	}
	return nil
}

func (r *runner) createTemplates(ctx context.Context, st *installState) error {
	for _, h := range r.v.Hierarchies {
		if err := r.createTemplate(ctx, st, h.Container, h.ContainerLabel, []variant.FieldRole{variant.FieldTitle}, true); err != nil {
			return err
		}
		if err := r.createTemplate(ctx, st, h.Leaf, h.LeafLabel, h.LeafFields, false); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) createTemplate(ctx context.Context, st *installState, name string, label string, roles []variant.FieldRole, container bool) error {
	ids := make([]int64, 0, len(roles))
	for _, role := range roles {
		field, ok := st.fields[role]
		if !ok {
			return fmt.Errorf(messages.InstallSaveFieldgroupFmt, name, fmt.Errorf(messages.InstallBuiltinFieldMissingFmt, host.ErrNotFound, r.v.FieldName(role)))
		}
		ids = append(ids, field.ID)
	}
	group, err := r.repos.Fieldgroups.Save(ctx, host.Fieldgroup{Name: name, FieldIDs: ids})
	if err != nil {
		return fmt.Errorf(messages.InstallSaveFieldgroupFmt, name, err)
	}
	tpl := host.Template{
		Name:         name,
		Label:        label,
		Tags:         r.v.Tag,
		FieldgroupID: group.ID,
		UseRoles:     true,
		NoChildren:   !container,
	}
	if container {
		tpl.NoParents = NoParentsSingle
	}
	saved, err := r.repos.Templates.Save(ctx, tpl)
	if err != nil {
		return fmt.Errorf(messages.InstallSaveTemplateFmt, name, err)
	}
	st.templates[name] = saved
	st.report.Templates = append(st.report.Templates, name)
	r.logger.Debug("template created", "template", name, "fields", len(ids))
	return nil
}

// extraTemplateSettings links each container to its leaf and to the admin
// template now that every template has an id.
func (r *runner) extraTemplateSettings(ctx context.Context, st *installState) error {
	for _, h := range r.v.Hierarchies {
		container, ok := st.templates[h.Container]
		if !ok {
			return fmt.Errorf(messages.InstallSaveTemplateFmt, h.Container, host.ErrNotFound)
		}
		leaf, ok := st.templates[h.Leaf]
		if !ok {
			return fmt.Errorf(messages.InstallSaveTemplateFmt, h.Leaf, host.ErrNotFound)
		}
		container.ChildTemplates = []int64{leaf.ID}
		container.ParentTemplates = []int64{st.admin.ID}
		leaf.ParentTemplates = []int64{container.ID}

		saved, err := r.repos.Templates.Save(ctx, container)
		if err != nil {
			return fmt.Errorf(messages.InstallSaveTemplateFmt, container.Name, err)
		}
		st.templates[h.Container] = saved
		saved, err = r.repos.Templates.Save(ctx, leaf)
		if err != nil {
			return fmt.Errorf(messages.InstallSaveTemplateFmt, leaf.Name, err)
		}
		st.templates[h.Leaf] = saved
	}
	return nil
}

func (r *runner) createPages(ctx context.Context, st *installState) error {
	if st.modulePage.ID == 0 {
		page, err := r.modulePage(ctx)
		if err != nil {
			return err
		}
		st.modulePage = page
	}
	for _, h := range r.v.Hierarchies {
		tpl, ok := st.templates[h.Container]
		if !ok {
			return fmt.Errorf(messages.InstallSavePageFmt, h.PageName, host.ErrNotFound)
		}
		page := host.Page{
			ParentID:   st.modulePage.ID,
			Name:       h.PageName,
			Title:      h.PageTitle,
			TemplateID: tpl.ID,
			Status:     host.StatusOn | host.StatusHidden,
			Meta:       map[string]string{MetaHideFromAdminTheme: r.adminTheme},
		}
		if _, err := r.repos.Pages.Save(ctx, page); err != nil {
			return fmt.Errorf(messages.InstallSavePageFmt, h.PageName, err)
		}
		st.report.Pages = append(st.report.Pages, h.PageName)
	}
	return nil
}

// copySitesFiles seeds the bundled files into the host root. Existing
// destinations are never overwritten; a differing one gets a diff warning.
func (r *runner) copySitesFiles(_ context.Context, st *installState) error {
	for _, c := range r.v.Copies {
		data, err := fs.ReadFile(r.bundle, c.Source)
		if err != nil {
			return fmt.Errorf(messages.InstallFailedReadBundleFmt, c.Source, err)
		}
		dest := filepath.Join(r.root, c.Dest)
		exists, err := r.fileExists(dest)
		if err != nil {
			return err
		}
		if exists {
			if err := r.keepFile(st, c.Dest, dest, data); err != nil {
				return err
			}
			continue
		}
		if err := r.sys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf(messages.InstallFailedCreateDirFmt, dest, err)
		}
		err = r.sys.WriteFileExclusive(dest, data, 0o644)
		if errors.Is(err, fs.ErrExist) {
			// Created after the existence check.
			if err := r.keepFile(st, c.Dest, dest, data); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return fmt.Errorf(messages.InstallFailedWriteFmt, dest, err)
		}
		st.report.CopiedFiles = append(st.report.CopiedFiles, c.Dest)
	}
	return nil
}

func (r *runner) keepFile(st *installState, name string, path string, bundled []byte) error {
	st.report.KeptFiles = append(st.report.KeptFiles, name)
	return r.warnIfDifferent(name, path, bundled)
}

func (r *runner) warnIfDifferent(name string, path string, bundled []byte) error {
	current, err := r.sys.ReadFile(path)
	if err != nil {
		return fmt.Errorf(messages.InstallFailedReadFmt, path, err)
	}
	if bytes.Equal(bytes.ReplaceAll(current, []byte("\r\n"), []byte("\n")), bundled) {
		return nil
	}
	preview := buildDiffPreview(name, current, bundled, r.diffMaxLines)
	// Warning output is best effort.
	_, _ = fmt.Fprintf(r.warnWriter, messages.InstallFileKeptFmt, name)
	_, _ = fmt.Fprint(r.warnWriter, preview.UnifiedDiff)
	r.logger.Warn("kept existing file", "file", name, "truncated", preview.Truncated)
	return nil
}

func (r *runner) saveInstalledConfig(ctx context.Context, _ *installState) error {
	cfg, err := r.repos.Modules.GetConfig(ctx, r.v.ModuleClass)
	if err != nil {
		return fmt.Errorf(messages.InstallReadConfigFmt, r.v.ModuleClass, err)
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	cfg[r.v.FullyInstalledKey()] = 1
	if err := r.repos.Modules.SaveConfig(ctx, r.v.ModuleClass, cfg); err != nil {
		return fmt.Errorf(messages.InstallSaveConfigFmt, r.v.ModuleClass, err)
	}
	r.session.Message(r.localizer.Sprintf(messages.InstallSuccessFmt, r.v.Label))
	r.redirect()
	return nil
}

type discardSession struct{}

func (discardSession) Message(string) {}
func (discardSession) Error(string) {}
func (discardSession) Redirect(string) {}
