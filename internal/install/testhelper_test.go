package install

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kongondo/SitesManager-sub001/internal/host"
	"github.com/kongondo/SitesManager-sub001/internal/host/memstore"
	"github.com/kongondo/SitesManager-sub001/internal/i18n"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

// faultSystem injects errors per path into the installer System interface.
type faultSystem struct {
	base       System
	statErrs   map[string]error
	readErrs   map[string]error
	mkdirErrs  map[string]error
	removeErrs map[string]error
	writeErrs  map[string]error
}

func newFaultSystem(base System) *faultSystem {
	return &faultSystem{
		base:       base,
		statErrs:   map[string]error{},
		readErrs:   map[string]error{},
		mkdirErrs:  map[string]error{},
		removeErrs: map[string]error{},
		writeErrs:  map[string]error{},
	}
}

func normalizePath(path string) string {
	return filepath.Clean(path)
}

func (f *faultSystem) Stat(name string) (os.FileInfo, error) {
	if err, ok := f.statErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.Stat(name)
}

func (f *faultSystem) ReadFile(name string) ([]byte, error) {
	if err, ok := f.readErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.ReadFile(name)
}

func (f *faultSystem) MkdirAll(path string, perm os.FileMode) error {
	if err, ok := f.mkdirErrs[normalizePath(path)]; ok {
		return err
	}
	return f.base.MkdirAll(path, perm)
}

func (f *faultSystem) Remove(name string) error {
	if err, ok := f.removeErrs[normalizePath(name)]; ok {
		return err
	}
	return f.base.Remove(name)
}

func (f *faultSystem) WriteFileExclusive(filename string, data []byte, perm os.FileMode) error {
	if err, ok := f.writeErrs[normalizePath(filename)]; ok {
		return err
	}
	return f.base.WriteFileExclusive(filename, data, perm)
}

// recordingSession captures session output.
type recordingSession struct {
	messages  []string
	errors    []string
	redirects []string
}

func (s *recordingSession) Message(text string) { s.messages = append(s.messages, text) }
func (s *recordingSession) Error(text string) { s.errors = append(s.errors, text) }
func (s *recordingSession) Redirect(target string) { s.redirects = append(s.redirects, target) }

// faultTemplates fails Save for selected template names.
type faultTemplates struct {
	host.Templates
	saveErrs map[string]error
}

func (f faultTemplates) Save(ctx context.Context, tpl host.Template) (host.Template, error) {
	if err, ok := f.saveErrs[tpl.Name]; ok {
		return host.Template{}, err
	}
	return f.Templates.Save(ctx, tpl)
}

// faultFields fails Get for selected field names.
type faultFields struct {
	host.Fields
	getErrs map[string]error
}

func (f faultFields) Get(ctx context.Context, name string) (host.Field, error) {
	if err, ok := f.getErrs[name]; ok {
		return host.Field{}, err
	}
	return f.Fields.Get(ctx, name)
}

type testEnv struct {
	t       *testing.T
	root    string
	store   *memstore.Store
	repos   host.Repositories
	session *recordingSession
	warn    *bytes.Buffer
	sys     System
	v       variant.Variant
	lang    string
}

// newTestEnv returns a bootstrapped host with the variant's module registered.
func newTestEnv(t *testing.T, key string) *testEnv {
	t.Helper()
	v, err := variant.Lookup(key)
	require.NoError(t, err)
	store := memstore.New()
	repos := store.Repositories()
	ctx := context.Background()
	require.NoError(t, host.Bootstrap(ctx, repos))
	_, err = host.RegisterModule(ctx, repos, v.ModuleClass, v.ModulePage, v.Label, v.DefaultConfig())
	require.NoError(t, err)
	return &testEnv{
		t:       t,
		root:    t.TempDir(),
		store:   store,
		repos:   repos,
		session: &recordingSession{},
		warn:    &bytes.Buffer{},
		sys:     RealSystem{},
		v:       v,
		lang:    "en",
	}
}

func (e *testEnv) options() Options {
	return Options{
		Root:       e.root,
		Repos:      e.repos,
		Session:    e.session,
		System:     e.sys,
		WarnWriter: e.warn,
		Localizer:  i18n.New(e.lang),
		RunID:      "test-run",
	}
}

func (e *testEnv) install(form url.Values) (InstallReport, error) {
	e.t.Helper()
	return Install(context.Background(), e.v, form, e.options())
}

func (e *testEnv) cleanup(form url.Values) (CleanupReport, error) {
	e.t.Helper()
	return Cleanup(context.Background(), e.v, form, e.options())
}

func (e *testEnv) mustInstall() InstallReport {
	e.t.Helper()
	report, err := e.install(nil)
	require.NoError(e.t, err)
	return report
}

func (e *testEnv) modulePage() host.Page {
	e.t.Helper()
	page, err := host.ResolvePath(context.Background(), e.repos.Pages, host.HomePageName, host.AdminPageName, host.SetupPageName, e.v.ModulePage)
	require.NoError(e.t, err)
	return page
}

func (e *testEnv) config() map[string]any {
	e.t.Helper()
	cfg, err := e.repos.Modules.GetConfig(context.Background(), e.v.ModuleClass)
	require.NoError(e.t, err)
	return cfg
}

func (e *testEnv) installedFlag() int {
	e.t.Helper()
	n, _ := host.ConfigInt(e.config(), e.v.FullyInstalledKey())
	return n
}

func (e *testEnv) writeRootFile(name string, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(filepath.Join(e.root, name), []byte(content), 0o644))
}

func (e *testEnv) rootFileExists(name string) bool {
	_, err := os.Stat(filepath.Join(e.root, name))
	return err == nil
}

func confirmForm(removeIndexConfig bool, removeSitesJSON bool) url.Values {
	form := url.Values{FormCleanupConfirm: {"1"}}
	if removeIndexConfig {
		form.Set(FormRemoveIndexConfig, "1")
	}
	if removeSitesJSON {
		form.Set(FormRemoveSitesJSON, "on")
	}
	return form
}
