package doctor

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kongondo/SitesManager-sub001/internal/host"
	"github.com/kongondo/SitesManager-sub001/internal/host/memstore"
	"github.com/kongondo/SitesManager-sub001/internal/install"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

type nopSession struct{}

func (nopSession) Message(string) {}
func (nopSession) Error(string) {}
func (nopSession) Redirect(string) {}

type doctorEnv struct {
	t     *testing.T
	root  string
	repos host.Repositories
	v     variant.Variant
}

func newDoctorEnv(t *testing.T, register bool) *doctorEnv {
	t.Helper()
	v, err := variant.Lookup("multisites")
	require.NoError(t, err)
	repos := memstore.New().Repositories()
	ctx := context.Background()
	require.NoError(t, host.Bootstrap(ctx, repos))
	if register {
		_, err = host.RegisterModule(ctx, repos, v.ModuleClass, v.ModulePage, v.Label, v.DefaultConfig())
		require.NoError(t, err)
	}
	return &doctorEnv{t: t, root: t.TempDir(), repos: repos, v: v}
}

func (e *doctorEnv) installOptions() install.Options {
	return install.Options{
		Root:       e.root,
		Repos:      e.repos,
		Session:    nopSession{},
		System:     install.RealSystem{},
		WarnWriter: io.Discard,
	}
}

func (e *doctorEnv) install() {
	e.t.Helper()
	_, err := install.Install(context.Background(), e.v, nil, e.installOptions())
	require.NoError(e.t, err)
}

func (e *doctorEnv) check() map[string]Result {
	e.t.Helper()
	results := Check(context.Background(), e.v, Options{Root: e.root, Repos: e.repos})
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.CheckName] = r
	}
	require.Len(e.t, byName, len(results))
	return byName
}

func TestCheckUnregisteredModule(t *testing.T) {
	env := newDoctorEnv(t, false)
	results := Check(context.Background(), env.v, Options{Root: env.root, Repos: env.repos})
	require.Len(t, results, 2)

	assert.Equal(t, StatusFail, results[0].Status)
	assert.Equal(t, "Module", results[0].CheckName)
	assert.Equal(t, "Module page multi-sites is missing", results[0].Message)
	assert.NotEmpty(t, results[0].Recommendation)

	assert.Equal(t, StatusWarn, results[1].Status)
	assert.Equal(t, "multiSitesFullyInstalled is not set", results[1].Message)
	assert.True(t, HasFailure(results))
}

func TestCheckRegisteredNotInstalled(t *testing.T) {
	env := newDoctorEnv(t, true)
	results := Check(context.Background(), env.v, Options{Root: env.root, Repos: env.repos})

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.CheckName)
		assert.Equal(t, StatusOK, r.Status, r.CheckName)
	}
	assert.Equal(t, []string{"Module", "Fields", "Templates", "Pages", "Files", "Installed"}, names)
	assert.False(t, HasFailure(results))

	byName := env.check()
	assert.Equal(t, "None of the 2 fields present", byName["Fields"].Message)
	assert.Equal(t, "None of the 2 files present", byName["Files"].Message)
	assert.Equal(t, "multiSitesFullyInstalled = 0", byName["Installed"].Message)
}

func TestCheckInstalled(t *testing.T) {
	env := newDoctorEnv(t, true)
	env.install()

	byName := env.check()
	for name, r := range byName {
		assert.Equal(t, StatusOK, r.Status, name)
		assert.Empty(t, r.Recommendation, name)
	}
	assert.Equal(t, "Module page multi-sites exists", byName["Module"].Message)
	assert.Equal(t, "All 2 fields present", byName["Fields"].Message)
	assert.Equal(t, "All 8 templates present", byName["Templates"].Message)
	assert.Equal(t, "All 4 pages present", byName["Pages"].Message)
	assert.Equal(t, "All 2 files present", byName["Files"].Message)
	assert.Equal(t, "multiSitesFullyInstalled = 1", byName["Installed"].Message)
}

func TestCheckAfterCleanupKeepingFiles(t *testing.T) {
	env := newDoctorEnv(t, true)
	env.install()
	_, err := install.Cleanup(context.Background(), env.v, url.Values{install.FormCleanupConfirm: {"1"}}, env.installOptions())
	require.NoError(t, err)

	byName := env.check()
	for name, r := range byName {
		assert.Equal(t, StatusOK, r.Status, name)
	}
	assert.Equal(t, "sites.json, index.config.php kept in the root directory", byName["Files"].Message)
}

func TestCheckInterruptedInstall(t *testing.T) {
	ctx := context.Background()
	env := newDoctorEnv(t, true)
	env.install()
	tpl, err := env.repos.Templates.Get(ctx, "multi-sites-wire-file")
	require.NoError(t, err)
	require.NoError(t, env.repos.Templates.Delete(ctx, tpl.ID))

	byName := env.check()
	assert.Equal(t, StatusFail, byName["Templates"].Status)
	assert.Equal(t, "Missing multi-sites-wire-file", byName["Templates"].Message)
	assert.Contains(t, byName["Templates"].Recommendation, "sitesctl cleanup multisites --yes")
	assert.Equal(t, StatusFail, byName["Installed"].Status)
	assert.Equal(t, "multiSitesFullyInstalled = 1 but records are incomplete", byName["Installed"].Message)
	assert.Equal(t, StatusOK, byName["Fields"].Status)
}

func TestCheckRecordsWithoutFlag(t *testing.T) {
	ctx := context.Background()
	env := newDoctorEnv(t, true)
	env.install()
	require.NoError(t, env.repos.Modules.SaveConfig(ctx, env.v.ModuleClass, env.v.DefaultConfig()))

	byName := env.check()
	assert.Equal(t, StatusWarn, byName["Fields"].Status)
	assert.Equal(t, "All 2 fields present", byName["Fields"].Message)
	assert.NotEmpty(t, byName["Fields"].Recommendation)
	assert.Equal(t, StatusOK, byName["Installed"].Status)
}

func TestCheckInstalledWithFileRemoved(t *testing.T) {
	env := newDoctorEnv(t, true)
	env.install()
	require.NoError(t, os.Remove(filepath.Join(env.root, variant.IndexConfigDest)))

	byName := env.check()
	assert.Equal(t, StatusWarn, byName["Files"].Status)
	assert.Equal(t, "Missing index.config.php", byName["Files"].Message)
	assert.Equal(t, StatusOK, byName["Installed"].Status)
}

func TestCheckPresence(t *testing.T) {
	v, err := variant.Lookup("sitesmanager")
	require.NoError(t, err)
	expected := []string{"a", "b", "c"}

	cases := []struct {
		name      string
		present   []string
		installed bool
		want      Status
		message   string
	}{
		{name: "all installed", present: expected, installed: true, want: StatusOK, message: "All 3 widgets present"},
		{name: "all not installed", present: expected, want: StatusWarn, message: "All 3 widgets present"},
		{name: "none installed", installed: true, want: StatusFail, message: "None of the 3 widgets present"},
		{name: "none not installed", want: StatusOK, message: "None of the 3 widgets present"},
		{name: "partial installed", present: []string{"b"}, installed: true, want: StatusFail, message: "Missing a, c"},
		{name: "partial not installed", present: []string{"a", "c"}, want: StatusWarn, message: "Missing b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := CheckPresence(v, "Widgets", "widgets", expected, tc.present, tc.installed)
			assert.Equal(t, tc.want, res.Status)
			assert.Equal(t, tc.message, res.Message)
			if tc.want == StatusOK {
				assert.Empty(t, res.Recommendation)
			} else {
				assert.Contains(t, res.Recommendation, "sitesmanager")
			}
		})
	}
}
