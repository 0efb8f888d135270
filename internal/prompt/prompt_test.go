package prompt

import (
	"errors"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRunForm(t *testing.T, fn func(form *huh.Form) error) {
	t.Helper()
	orig := runFormFunc
	runFormFunc = fn
	t.Cleanup(func() { runFormFunc = orig })
}

func TestConfirmCleanupRequiresTerminal(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return false }}
	var answers CleanupAnswers
	err := ui.ConfirmCleanup(CleanupRequest{ModuleLabel: "Multi Sites"}, &answers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal")
}

func TestConfirmCleanupUserAbort(t *testing.T) {
	stubRunForm(t, func(*huh.Form) error { return huh.ErrUserAborted })
	ui := &HuhUI{isTerminal: func() bool { return true }}
	answers := CleanupAnswers{Confirm: true, RemoveSitesJSON: true}

	err := ui.ConfirmCleanup(CleanupRequest{ModuleLabel: "Multi Sites"}, &answers)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, CleanupAnswers{}, answers)
}

func TestConfirmCleanupDeclinedClearsFiles(t *testing.T) {
	stubRunForm(t, func(*huh.Form) error { return nil })
	ui := &HuhUI{isTerminal: func() bool { return true }}
	answers := CleanupAnswers{Confirm: false, RemoveIndexConfig: true, RemoveSitesJSON: true}

	require.NoError(t, ui.ConfirmCleanup(CleanupRequest{ModuleLabel: "Sites Manager"}, &answers))
	assert.Equal(t, CleanupAnswers{}, answers)
}

func TestConfirmCleanupKeepsAnswers(t *testing.T) {
	stubRunForm(t, func(*huh.Form) error { return nil })
	ui := &HuhUI{isTerminal: func() bool { return true }}
	answers := CleanupAnswers{Confirm: true, RemoveSitesJSON: true}

	require.NoError(t, ui.ConfirmCleanup(CleanupRequest{ModuleLabel: "Sites Manager"}, &answers))
	assert.Equal(t, CleanupAnswers{Confirm: true, RemoveSitesJSON: true}, answers)
}

func TestConfirmCleanupPropagatesErrors(t *testing.T) {
	want := errors.New("tty lost")
	stubRunForm(t, func(*huh.Form) error { return want })
	ui := &HuhUI{isTerminal: func() bool { return true }}
	var answers CleanupAnswers
	assert.ErrorIs(t, ui.ConfirmCleanup(CleanupRequest{}, &answers), want)
}

func TestNewHuhUIUsesTerminalCheck(t *testing.T) {
	ui := NewHuhUI()
	require.NotNil(t, ui.isTerminal)
}
