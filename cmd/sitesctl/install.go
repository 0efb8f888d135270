package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kongondo/SitesManager-sub001/internal/install"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

var installRun = install.Install

func newInstallCmd(opts *globalOptions) *cobra.Command {
	var mode int

	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
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

			form := url.Values{}
			if cmd.Flags().Changed("mode") {
				form.Set(install.FormInstallMode, strconv.Itoa(mode))
			}
			out := cmd.OutOrStdout()
			session := newConsoleSession(out, cmd.ErrOrStderr())
			runID := newRunID()

			var report install.InstallReport
			err = env.withLock(func() error {
				var runErr error
				report, runErr = installRun(cmd.Context(), v, form, env.installOptions(session, runID, cmd.ErrOrStderr()))
				return runErr
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, messages.InstallDoneFmt, v.Label,
				len(report.Fields), len(report.Templates), len(report.Pages),
				len(report.CopiedFiles), len(report.KeptFiles), runID)
			return nil
		},
	}
	cmd.Flags().IntVar(&mode, "mode", 0, messages.InstallFlagMode)
	return cmd
}
