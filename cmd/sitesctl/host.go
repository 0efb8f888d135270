package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kongondo/SitesManager-sub001/internal/host"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

func newHostCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.HostUse,
		Short: messages.HostShort,
	}
	cmd.AddCommand(newHostInitCmd(opts))
	return cmd
}

// newHostInitCmd creates the host's own records and registers every module
// variant, the way the host does before a module's install runs.
func newHostInitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.HostInitUse,
		Short: messages.HostInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeEnv(env, &err)

			ctx := cmd.Context()
			var classes []string
			err = env.withLock(func() error {
				repos := env.repos()
				if err := host.Bootstrap(ctx, repos); err != nil {
					return err
				}
				for _, v := range variant.All() {
					if _, err := host.RegisterModule(ctx, repos, v.ModuleClass, v.ModulePage, v.Label, v.DefaultConfig()); err != nil {
						return err
					}
					classes = append(classes, v.ModuleClass)
				}
				return nil
			})
			if err != nil {
				return err
			}
			env.logger.Info("host initialized", "modules", len(classes))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.HostInitDoneFmt, env.store.Path(), strings.Join(classes, ", "))
			return nil
		},
	}
}
