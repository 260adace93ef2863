package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vinyl/internal/preflight"
	"vinyl/internal/store"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external binaries, directories, and the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			failures := 0

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := mark("ok", ansiGreen, colorize)
				detail := status.Description
				if !status.Available {
					state = mark("missing", ansiRed, colorize)
					if status.Detail != "" {
						detail = status.Detail
					}
					if !status.Optional {
						failures++
					}
				}
				rows = append(rows, []string{status.Name, state, status.Version, detail})
			}
			fmt.Fprintln(out, "System dependencies")
			fmt.Fprintln(out, renderTable(
				[]string{"Binary", "Status", "Version", "Notes"}, rows, nil))

			st, storeErr := store.Open(cfg)
			if storeErr == nil {
				defer st.Close()
			} else {
				st = nil
			}
			results := preflight.RunAll(cmd.Context(), cfg, st)
			if storeErr != nil {
				results = append(results, preflight.Result{
					Name:   "Database",
					Detail: storeErr.Error(),
				})
			}
			checkRows := make([][]string, 0, len(results))
			for _, result := range results {
				state := mark("ok", ansiGreen, colorize)
				if !result.Passed {
					state = mark("fail", ansiRed, colorize)
					failures++
				}
				checkRows = append(checkRows, []string{result.Name, state, result.Detail})
			}
			fmt.Fprintln(out, "Environment")
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Status", "Detail"}, checkRows, nil))

			if failures > 0 {
				return fmt.Errorf("%d check(s) failed", failures)
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
