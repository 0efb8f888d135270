package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/kongondo/SitesManager-sub001/internal/install"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/prompt"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

var (
	isInteractive           = prompt.IsInteractive
	cleanupUI     prompt.UI = prompt.NewHuhUI()
)

func newCleanupCmd(opts *globalOptions) *cobra.Command {
	var answers prompt.CleanupAnswers

	cmd := &cobra.Command{
		Use:   messages.CleanupUse,
		Short: messages.CleanupShort,
		Args:  variantArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			v, err := variant.Lookup(args[0])
			if err != nil {
				return err
			}
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(env, &err)

			out := cmd.OutOrStdout()
			if !answers.Confirm {
				if !isInteractive() {
					return errors.New(messages.CleanupRequiresConfirmation)
				}
				req := prompt.CleanupRequest{
					ModuleLabel:     v.Label,
					IndexConfigFile: variant.IndexConfigDest,
					SitesJSONFile:   variant.SitesJSONDest,
				}
				if err := cleanupUI.ConfirmCleanup(req, &answers); err != nil {
					if errors.Is(err, prompt.ErrCancelled) {
						_, _ = fmt.Fprintln(out, messages.CleanupCancelled)
						return nil
					}
					return err
				}
			}

			session := newConsoleSession(out, cmd.ErrOrStderr())
			runID := newRunID()
			var report install.CleanupReport
			err = env.withLock(func() error {
				var runErr error
				report, runErr = install.Cleanup(cmd.Context(), v, cleanupForm(answers), env.installOptions(session, runID, cmd.ErrOrStderr()))
				return runErr
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, messages.CleanupDoneFmt, v.Label,
				len(report.Pages), len(report.Templates), len(report.Fieldgroups),
				len(report.Fields), len(report.RemovedFiles), runID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&answers.Confirm, "yes", "y", false, messages.CleanupFlagYes)
	cmd.Flags().BoolVar(&answers.RemoveIndexConfig, "remove-index-config", false, messages.CleanupFlagRemoveIndexConfig)
	cmd.Flags().BoolVar(&answers.RemoveSitesJSON, "remove-sites-json", false, messages.CleanupFlagRemoveSitesJSON)
	return cmd
}

// cleanupForm encodes the answers as the admin form the cleanup expects.
func cleanupForm(answers prompt.CleanupAnswers) url.Values {
	form := url.Values{}
	if answers.Confirm {
		form.Set(install.FormCleanupConfirm, "1")
	}
	if answers.RemoveIndexConfig {
		form.Set(install.FormRemoveIndexConfig, "1")
	}
	if answers.RemoveSitesJSON {
		form.Set(install.FormRemoveSitesJSON, "1")
	}
	return form
}
