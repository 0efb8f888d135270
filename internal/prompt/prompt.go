// Package prompt collects the cleanup form values interactively.
package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/terminal"
)

// ErrCancelled is returned when the user aborts a form with Esc or Ctrl+C.
var ErrCancelled = errors.New(messages.CleanupCancelled)

// IsInteractive reports whether the prompt can be shown.
func IsInteractive() bool {
	return terminal.IsInteractive()
}

// CleanupRequest describes the cleanup form shown to the user.
type CleanupRequest struct {
	ModuleLabel     string
	IndexConfigFile string
	SitesJSONFile   string
}

// CleanupAnswers holds the three cleanup form values.
type CleanupAnswers struct {
	Confirm           bool
	RemoveIndexConfig bool
	RemoveSitesJSON   bool
}

// UI asks for cleanup confirmation.
type UI interface {
	ConfirmCleanup(req CleanupRequest, answers *CleanupAnswers) error
}

// HuhUI implements UI using charmbracelet/huh.
type HuhUI struct {
	isTerminal func() bool
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// NewHuhUI creates a HuhUI that checks the real terminal.
func NewHuhUI() *HuhUI {
	return &HuhUI{isTerminal: IsInteractive}
}

func (ui *HuhUI) ensureInteractive() error {
	checker := ui.isTerminal
	if checker == nil {
		checker = IsInteractive
	}
	if checker() {
		return nil
	}
	return errors.New(messages.PromptRequiresTerminal)
}

func keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"))
	return km
}

// ConfirmCleanup renders the confirmation and the two file checkboxes in one form.
// The file questions are only meaningful when Confirm is set; a declined form
// clears them.
func (ui *HuhUI) ConfirmCleanup(req CleanupRequest, answers *CleanupAnswers) error {
	if err := ui.ensureInteractive(); err != nil {
		return err
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf(messages.CleanupPromptTitleFmt, req.ModuleLabel)).
				Description(messages.CleanupPromptDescription).
				Affirmative(messages.PromptToggleOn).
				Negative(messages.PromptToggleOff).
				Value(&answers.Confirm),
			huh.NewConfirm().
				Title(fmt.Sprintf(messages.CleanupPromptRemoveIndexFmt, req.IndexConfigFile)).
				Affirmative(messages.PromptToggleOn).
				Negative(messages.PromptToggleOff).
				Value(&answers.RemoveIndexConfig),
			huh.NewConfirm().
				Title(fmt.Sprintf(messages.CleanupPromptRemoveSitesFmt, req.SitesJSONFile)).
				Affirmative(messages.PromptToggleOn).
				Negative(messages.PromptToggleOff).
				Value(&answers.RemoveSitesJSON),
		),
	)
	form.WithKeyMap(keyMap())
	form.WithProgramOptions(tea.WithOutput(os.Stderr))

	err := runFormFunc(form)
	if errors.Is(err, huh.ErrUserAborted) {
		*answers = CleanupAnswers{}
		return ErrCancelled
	}
	if err != nil {
		return err
	}
	if !answers.Confirm {
		answers.RemoveIndexConfig = false
		answers.RemoveSitesJSON = false
	}
	return nil
}
