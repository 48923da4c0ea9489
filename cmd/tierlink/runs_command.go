package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tierlink/internal/store"
	"tierlink/internal/textutil"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded link runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.requireStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.Duration().Round(time.Millisecond).String(),
					run.PlanPath,
					strconv.Itoa(run.Matched),
					strconv.Itoa(run.LeftoverA),
					strconv.Itoa(run.LeftoverB),
					textutil.Ternary(run.ErrorMessage == "", "ok", "failed"),
				})
			}
			newReport(out).table(
				[]string{"ID", "Started", "Elapsed", "Plan", "Matched", "Left A", "Left B", "Status"},
				rows, 2, 4, 5, 6,
			)
			return nil
		},
	}
	runsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	runsCmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")

	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsPruneCommand(ctx))
	return runsCmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its tier breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.requireStore()
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.GetRun(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, run)
			}

			out := cmd.OutOrStdout()
			r := newReport(out)
			r.section("Run " + run.ID)
			r.fields(
				toned("Status", textutil.FirstNonEmpty(run.ErrorMessage, "completed"), textutil.Ternary(run.ErrorMessage == "", toneGood, toneBad)),
				plain("Started", run.StartedAt.Local().Format(time.RFC3339)),
				plain("Elapsed", run.Duration().Round(time.Millisecond).String()),
				plain("Plan", run.PlanPath),
				plain("Source A", fmt.Sprintf("%s (%d rows)", run.SourceA, run.RowsA)),
				plain("Source B", fmt.Sprintf("%s (%d rows)", run.SourceB, run.RowsB)),
				plain("Scorer", run.Scorer),
				plain("Shared B", yesNo(run.AllowSharedB)),
				plain("Output", textutil.FirstNonEmpty(run.Output, "-")),
			)
			if len(run.Tiers) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(run.Tiers))
			for i, t := range run.Tiers {
				rows = append(rows, []string{
					strconv.Itoa(i),
					strconv.Itoa(t.Confidence),
					strconv.Itoa(t.Matched),
					strconv.Itoa(t.RemainingA),
					strconv.Itoa(t.RemainingB),
				})
			}
			r.table([]string{"Tier", "Confidence", "Matched", "Remaining A", "Remaining B"}, rows, 0, 1, 2, 3, 4)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

func newRunsPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a given age",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			st, err := ctx.requireStore()
			if err != nil {
				return err
			}
			defer st.Close()

			removed, err := st.DeleteRunsBefore(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Minimum age of runs to delete")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
