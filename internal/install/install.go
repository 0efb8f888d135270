// Package install provisions and tears down the records, files and config flag
// of a module variant against a content host.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kongondo/SitesManager-sub001/internal/host"
	"github.com/kongondo/SitesManager-sub001/internal/i18n"
	"github.com/kongondo/SitesManager-sub001/internal/logging"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/templates"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

// Form keys read from the submitted admin form.
const (
	FormInstallMode       = "install_mode"
	FormCleanupConfirm    = "cleanup_btn"
	FormRemoveIndexConfig = "remove_index_config"
	FormRemoveSitesJSON   = "remove_sites_json"
)

// ModeSkipChecks skips the pre-flight collision checks.
const ModeSkipChecks = 1

var (
	// ErrInstallCollision reports that install targets already exist.
	ErrInstallCollision = errors.New(messages.InstallErrCollision)
	// ErrModulePageMissing reports that the module was never registered with the host.
	ErrModulePageMissing = errors.New(messages.InstallErrModulePageMissing)
	// ErrBuiltinFieldMissing reports that the host's title field is absent.
	ErrBuiltinFieldMissing = errors.New(messages.InstallErrBuiltinField)
	// ErrAdminTemplateMissing reports that the host's admin template is absent.
	ErrAdminTemplateMissing = errors.New(messages.InstallErrAdminTemplate)
	// ErrCleanupNotConfirmed reports a cleanup form submitted without confirmation.
	ErrCleanupNotConfirmed = errors.New(messages.CleanupErrNotConfirmed)
)

// Form exposes submitted form values. url.Values satisfies it.
type Form interface {
	Get(key string) string
}

// Localizer renders session text. *i18n.Localizer satisfies it.
type Localizer interface {
	Sprintf(key string, args ...any) string
}

// Options carries the collaborators of one install or cleanup run.
type Options struct {
	// Root is the host application root that receives the bundled files.
	Root    string
	Repos   host.Repositories
	Session host.Session
	System  System
	// Bundle holds the files copied into Root. Defaults to the embedded bundle.
	Bundle     fs.FS
	Logger     *log.Logger
	WarnWriter io.Writer
	Localizer  Localizer
	// AdminTheme is the admin theme the container pages are hidden from.
	AdminTheme string
	// LandingURL is the redirect target once a run completes.
	LandingURL   string
	DiffMaxLines int
	// RunID tags log lines of this run.
	RunID string
}

// Defaults used when Options leaves a value empty.
const (
	DefaultAdminTheme = "AdminThemeReno"
	DefaultLandingURL = "./"
)

// MetaHideFromAdminTheme is the page meta key naming the theme a page is hidden from.
const MetaHideFromAdminTheme = "hideFromAdminTheme"

// runner holds the injected collaborators shared by every stage of a run.
type runner struct {
	v            variant.Variant
	root         string
	repos        host.Repositories
	session      host.Session
	sys          System
	bundle       fs.FS
	logger       *log.Logger
	warnWriter   io.Writer
	localizer    Localizer
	adminTheme   string
	landingURL   string
	diffMaxLines int
}

func newRunner(v variant.Variant, opts Options) (*runner, error) {
	if strings.TrimSpace(opts.Root) == "" {
		return nil, errors.New(messages.InstallRootRequired)
	}
	if v.Key == "" {
		return nil, errors.New(messages.InstallVariantRequired)
	}
	if opts.Repos.Fields == nil || opts.Repos.Fieldgroups == nil || opts.Repos.Templates == nil ||
		opts.Repos.Pages == nil || opts.Repos.Modules == nil {
		return nil, errors.New(messages.InstallReposRequired)
	}
	if opts.Session == nil {
		return nil, errors.New(messages.InstallSessionRequired)
	}
	if opts.System == nil {
		return nil, errors.New(messages.InstallSystemRequired)
	}
	r := &runner{
		v:            v,
		root:         opts.Root,
		repos:        opts.Repos,
		session:      opts.Session,
		sys:          opts.System,
		bundle:       opts.Bundle,
		warnWriter:   opts.WarnWriter,
		localizer:    opts.Localizer,
		adminTheme:   opts.AdminTheme,
		landingURL:   opts.LandingURL,
		diffMaxLines: normalizeDiffMaxLines(opts.DiffMaxLines),
	}
	if r.bundle == nil {
		r.bundle = templates.FS()
	}
	if r.warnWriter == nil {
		r.warnWriter = os.Stderr
	}
	if r.localizer == nil {
		r.localizer = i18n.New(i18n.DefaultLanguage)
	}
	if r.adminTheme == "" {
		r.adminTheme = DefaultAdminTheme
	}
	if r.landingURL == "" {
		r.landingURL = DefaultLandingURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	r.logger = logger.With("variant", v.Key)
	if opts.RunID != "" {
		r.logger = r.logger.With("run", opts.RunID)
	}
	return r, nil
}

// stage is one named step of a pipeline operating on the run state S.
type stage[S any] struct {
	name string
	run  func(ctx context.Context, st *S) error
}

// runStages executes stages in order and stops at the first failure, wrapping it
// with the stage name. There is no rollback.
func runStages[S any](ctx context.Context, logger *log.Logger, stages []stage[S], st *S) error {
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf(messages.InstallStageFailedFmt, s.name, err)
		}
		logger.Debug("stage start", "stage", s.name)
		if err := s.run(ctx, st); err != nil {
			logger.Debug("stage failed", "stage", s.name, "err", err)
			return fmt.Errorf(messages.InstallStageFailedFmt, s.name, err)
		}
	}
	return nil
}

func stageNames[S any](stages []stage[S]) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

// InstallStages lists the installer stages in execution order.
func InstallStages() []string {
	return stageNames((&runner{}).installStages())
}

// CleanupStages lists the cleanup stages in execution order.
func CleanupStages() []string {
	return stageNames((&runner{}).cleanupStages())
}

// FormBool reports whether a form value is set. 1, true, on and yes count as set.
func FormBool(form Form, key string) bool {
	if form == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(form.Get(key))) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// modulePage locates the admin page the host created when registering the module.
func (r *runner) modulePage(ctx context.Context) (host.Page, error) {
	page, err := host.ResolvePath(ctx, r.repos.Pages, host.HomePageName, host.AdminPageName, host.SetupPageName, r.v.ModulePage)
	if errors.Is(err, host.ErrNotFound) {
		return host.Page{}, fmt.Errorf(messages.InstallModulePageMissingFmt, ErrModulePageMissing, r.v.ModulePage)
	}
	if err != nil {
		return host.Page{}, err
	}
	return page, nil
}

func (r *runner) redirect() {
	r.logger.Debug("redirect", "url", r.landingURL)
	r.session.Redirect(r.landingURL)
}
