package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.VariantsUse,
		Short: messages.VariantsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, v := range variant.All() {
				_, _ = fmt.Fprintf(out, messages.VariantsLineFmt, v.Key, v.ModuleClass, v.Label)
			}
			return nil
		},
	}
}
