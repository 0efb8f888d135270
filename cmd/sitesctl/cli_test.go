package main

// NOTE: Tests in this file mutate package-level globals (isInteractive, cleanupUI,
// newRunID, installRun, lockTimeout). Do not use t.Parallel(); restore via t.Cleanup().

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kongondo/SitesManager-sub001/internal/config"
	"github.com/kongondo/SitesManager-sub001/internal/install"
	"github.com/kongondo/SitesManager-sub001/internal/lock"
	"github.com/kongondo/SitesManager-sub001/internal/prompt"
	"github.com/kongondo/SitesManager-sub001/internal/testutil"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

type fakeUI struct {
	answers prompt.CleanupAnswers
	err     error
	calls   int
	request prompt.CleanupRequest
}

func (f *fakeUI) ConfirmCleanup(req prompt.CleanupRequest, answers *prompt.CleanupAnswers) error {
	f.calls++
	f.request = req
	if f.err != nil {
		return f.err
	}
	*answers = f.answers
	return nil
}

func stubInteractive(t *testing.T, interactive bool, ui prompt.UI) {
	t.Helper()
	origInteractive, origUI := isInteractive, cleanupUI
	isInteractive = func() bool { return interactive }
	cleanupUI = ui
	t.Cleanup(func() {
		isInteractive = origInteractive
		cleanupUI = origUI
	})
}

func stubRunID(t *testing.T, id string) {
	t.Helper()
	orig := newRunID
	newRunID = func() string { return id }
	t.Cleanup(func() { newRunID = orig })
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(append([]string{"sitesctl"}, args...), &out, &out)
	return out.String(), err
}

// initHost prepares a temp host root with both modules registered.
func initHost(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	out, err := runCLI(t, "host", "init", "--root", root)
	require.NoError(t, err, out)
	return root
}

func TestHostInitCreatesStore(t *testing.T) {
	root := t.TempDir()
	out, err := runCLI(t, "host", "init", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Host store ready at "+filepath.Join(root, config.DefaultDatabase))
	assert.Contains(t, out, "registered ProcessMultiSites, ProcessSitesManager")
	assert.True(t, testutil.Exists(root, config.DefaultDatabase))

	// Running it again is harmless.
	_, err = runCLI(t, "host", "init", "--root", root)
	require.NoError(t, err)
}

func TestVariantsCommand(t *testing.T) {
	out, err := runCLI(t, "variants")
	require.NoError(t, err)
	assert.Contains(t, out, "multisites")
	assert.Contains(t, out, "ProcessSitesManager")
	assert.Contains(t, out, "Sites Manager")
}

func TestInstallDoctorCleanupEndToEnd(t *testing.T) {
	stubRunID(t, "run-1")
	stubInteractive(t, false, &fakeUI{})
	root := initHost(t)

	out, err := runCLI(t, "install", "multisites", "--root", root)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ Multi Sites installed successfully.")
	assert.Contains(t, out, "→ redirect ./")
	assert.Contains(t, out, "Installed Multi Sites: 2 fields, 8 templates, 4 pages, 2 files copied, 0 files kept (run run-1)")
	assert.True(t, testutil.Exists(root, variant.SitesJSONDest))
	assert.True(t, testutil.Exists(root, variant.IndexConfigDest))

	out, err = runCLI(t, "doctor", "multisites", "--root", root)
	require.NoError(t, err, out)
	assert.Contains(t, out, "All 8 templates present")
	assert.Contains(t, out, "multiSitesFullyInstalled = 1")
	assert.Contains(t, out, "All checks passed")

	out, err = runCLI(t, "install", "multisites", "--root", root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, install.ErrInstallCollision))
	assert.Contains(t, out, "✗ These pages already exist: site-profiles, installed-sites, wire-files, install-configurations")
	assert.Contains(t, out, "✗ These files already exist in the root directory: sites.json, index.config.php")

	_, err = runCLI(t, "cleanup", "multisites", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cleanup requires confirmation")

	out, err = runCLI(t, "cleanup", "multisites", "--root", root, "--yes", "--remove-index-config", "--remove-sites-json")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ Multi Sites and Files cleaned up successfully.")
	assert.Contains(t, out, "Cleaned up Multi Sites: 4 pages, 8 templates, 8 fieldgroups, 2 fields, 2 files removed (run run-1)")
	assert.False(t, testutil.Exists(root, variant.SitesJSONDest))
	assert.False(t, testutil.Exists(root, variant.IndexConfigDest))

	out, err = runCLI(t, "doctor", "multisites", "--root", root)
	require.NoError(t, err, out)
	assert.Contains(t, out, "multiSitesFullyInstalled = 0")

	// A clean host accepts a fresh install.
	out, err = runCLI(t, "install", "multisites", "--root", root)
	require.NoError(t, err, out)
}

func TestInstallSecondVariantNeedsModeOne(t *testing.T) {
	root := initHost(t)
	_, err := runCLI(t, "install", "multisites", "--root", root)
	require.NoError(t, err)

	out, err := runCLI(t, "install", "sitesmanager", "--root", root)
	require.Error(t, err)
	assert.Contains(t, out, "These files already exist in the root directory")

	out, err = runCLI(t, "install", "sitesmanager", "--root", root, "--mode", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "0 files copied, 2 files kept")

	out, err = runCLI(t, "doctor", "sitesmanager", "--root", root)
	require.NoError(t, err, out)
}

func TestInstallModeFlagReachesForm(t *testing.T) {
	root := initHost(t)
	orig := installRun
	var mode string
	installRun = func(ctx context.Context, v variant.Variant, form install.Form, opts install.Options) (install.InstallReport, error) {
		mode = form.Get(install.FormInstallMode)
		return install.InstallReport{}, nil
	}
	t.Cleanup(func() { installRun = orig })

	_, err := runCLI(t, "install", "multisites", "--root", root, "--mode", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", mode)

	_, err = runCLI(t, "install", "multisites", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "", mode)
}

func TestCleanupPromptsWhenInteractive(t *testing.T) {
	root := initHost(t)
	_, err := runCLI(t, "install", "multisites", "--root", root)
	require.NoError(t, err)

	ui := &fakeUI{answers: prompt.CleanupAnswers{Confirm: true, RemoveSitesJSON: true}}
	stubInteractive(t, true, ui)

	out, err := runCLI(t, "cleanup", "multisites", "--root", root)
	require.NoError(t, err, out)
	assert.Equal(t, 1, ui.calls)
	assert.Equal(t, "Multi Sites", ui.request.ModuleLabel)
	assert.Equal(t, variant.IndexConfigDest, ui.request.IndexConfigFile)
	assert.Contains(t, out, "Multi Sites and Files cleaned up successfully.")
	assert.False(t, testutil.Exists(root, variant.SitesJSONDest))
	assert.True(t, testutil.Exists(root, variant.IndexConfigDest))
}

func TestCleanupPromptCancelled(t *testing.T) {
	root := initHost(t)
	_, err := runCLI(t, "install", "multisites", "--root", root)
	require.NoError(t, err)
	stubInteractive(t, true, &fakeUI{err: prompt.ErrCancelled})

	out, err := runCLI(t, "cleanup", "multisites", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleanup cancelled.")

	out, err = runCLI(t, "doctor", "multisites", "--root", root)
	require.NoError(t, err, out)
	assert.Contains(t, out, "multiSitesFullyInstalled = 1")
}

func TestCleanupPromptDeclined(t *testing.T) {
	root := initHost(t)
	stubInteractive(t, true, &fakeUI{answers: prompt.CleanupAnswers{}})

	_, err := runCLI(t, "cleanup", "multisites", "--root", root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, install.ErrCleanupNotConfirmed))
}

func TestDoctorFailsOnUninitializedHost(t *testing.T) {
	root := t.TempDir()
	out, err := runCLI(t, "doctor", "multisites", "--root", root)
	require.Error(t, err)
	assert.Contains(t, out, "[FAIL] Module")
	assert.Contains(t, out, "Module page multi-sites is missing")
	assert.Contains(t, out, "💡 Run `sitesctl host init` to register the module.")
	assert.Contains(t, out, "Some checks failed")
}

func TestLanguageFlagLocalizesSession(t *testing.T) {
	root := initHost(t)
	out, err := runCLI(t, "install", "sitesmanager", "--root", root, "--lang", "de")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Sites Manager wurde erfolgreich installiert.")
}

func TestConfigFileShapesRun(t *testing.T) {
	root := initHost(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte(`
[host]
landing_url = "/admin/setup/"

[ui]
language = "de"
`), 0o644))

	out, err := runCLI(t, "install", "multisites", "--root", root)
	require.NoError(t, err, out)
	assert.Contains(t, out, "→ redirect /admin/setup/")
	assert.Contains(t, out, "Multi Sites wurde erfolgreich installiert.")
}

func TestConfigErrors(t *testing.T) {
	root := t.TempDir()

	_, err := runCLI(t, "doctor", "multisites", "--root", root, "--lang", "fr")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigValidation))

	_, err = runCLI(t, "doctor", "multisites", "--root", root, "--log-level", "chatty")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigValidation))

	_, err = runCLI(t, "doctor", "multisites", "--root", root, "--config", filepath.Join(root, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.toml")
}

func TestVariantArgument(t *testing.T) {
	_, err := runCLI(t, "install")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install requires exactly one variant argument (one of multisites, sitesmanager)")

	_, err = runCLI(t, "cleanup", "nope", "--yes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, variant.ErrUnknownVariant))
}

func TestInstallWaitsForLock(t *testing.T) {
	root := initHost(t)
	held, err := lock.Acquire(lock.Path(root), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Release() })

	orig := lockTimeout
	lockTimeout = 250 * time.Millisecond
	t.Cleanup(func() { lockTimeout = orig })

	_, err = runCLI(t, "install", "multisites", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out waiting for lock")
	assert.False(t, testutil.Exists(root, variant.SitesJSONDest))
}

func TestRootDiscoveredFromWorkingDir(t *testing.T) {
	root := testutil.HostTree(t)
	testutil.WriteFile(t, root, "site/templates/home.php", "<?php\n")
	_, err := runCLI(t, "host", "init", "--root", root)
	require.NoError(t, err)

	var out string
	testutil.WithWorkingDir(t, filepath.Join(root, "site", "templates"), func() {
		out, err = runCLI(t, "install", "multisites")
	})
	require.NoError(t, err, out)
	assert.True(t, testutil.Exists(root, variant.SitesJSONDest))
	assert.True(t, testutil.Exists(root, variant.IndexConfigDest))
	assert.False(t, testutil.Exists(root, "site/templates/"+variant.SitesJSONDest))
}
