package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kongondo/SitesManager-sub001/internal/doctor"
	"github.com/kongondo/SitesManager-sub001/internal/install"
	"github.com/kongondo/SitesManager-sub001/internal/messages"
	"github.com/kongondo/SitesManager-sub001/internal/variant"
)

func newDoctorCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DoctorUse,
		Short: messages.DoctorShort,
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
			_, _ = fmt.Fprintf(out, messages.DoctorHealthCheckFmt, v.Label, env.root)

			results := doctor.Check(cmd.Context(), v, doctor.Options{
				Root:   env.root,
				Repos:  env.repos(),
				System: install.RealSystem{},
			})
			for _, r := range results {
				printResult(out, r)
			}
			if doctor.HasFailure(results) {
				_, _ = fmt.Fprintln(out, color.RedString(messages.DoctorFailureSummary))
				return errors.New(messages.DoctorFailureError)
			}
			_, _ = fmt.Fprintln(out, color.GreenString(messages.DoctorSuccessSummary))
			return nil
		},
	}
}

func printResult(out io.Writer, r doctor.Result) {
	var status string
	switch r.Status {
	case doctor.StatusOK:
		status = color.GreenString(messages.DoctorStatusOKLabel)
	case doctor.StatusWarn:
		status = color.YellowString(messages.DoctorStatusWarnLabel)
	case doctor.StatusFail:
		status = color.RedString(messages.DoctorStatusFailLabel)
	}

	_, _ = fmt.Fprintf(out, messages.DoctorResultLineFmt, status, r.CheckName, r.Message)
	if r.Recommendation != "" {
		printRecommendation(out, r.Recommendation)
	}
}

// printRecommendation renders a multi-line recommendation with consistent indentation.
func printRecommendation(out io.Writer, recommendation string) {
	lines := strings.Split(recommendation, "\n")
	for i, line := range lines {
		if i == 0 {
			_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationPrefix, line)
			continue
		}
		if line == "" {
			_, _ = fmt.Fprintf(out, "%s\n", messages.DoctorRecommendationIndent)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationIndent, line)
	}
}
