package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tierlink/internal/config"
	"tierlink/internal/plan"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	planCmd := &cobra.Command{
		Use:         "plan",
		Short:       "Create and check match plans",
		Annotations: map[string]string{skipConfigLoad: "true"},
	}
	planCmd.AddCommand(newPlanInitCommand())
	planCmd.AddCommand(newPlanValidateCommand())
	return planCmd
}

func newPlanInitCommand() *cobra.Command {
	var counts []int
	var offset int
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a plan skeleton with empty comparator slots",
		Example: "  tierlink plan init --counts 2,1 --path plan.toml\n" +
			"  tierlink plan init --counts 1,1,1 --offset 10",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(counts) == 0 {
				return errors.New("--counts is required")
			}
			for i, n := range counts {
				if n <= 0 {
					return fmt.Errorf("tier %d: comparison count must be positive, got %d", i, n)
				}
			}
			body, err := plan.Skeleton(counts, offset)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(targetPath)
			if target == "" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			target, err = config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve plan path: %w", err)
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("plan file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check plan path: %w", err)
				}
			}
			if err := plan.WriteFile(target, plan.Build(counts, offset)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote plan skeleton with %d tiers to %s\n", len(counts), target)
			fmt.Fprintln(cmd.OutOrStdout(), "Fill in the a/b column names of every compare entry before running `tierlink link`.")
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&counts, "counts", nil, "Comparisons per tier, e.g. 2,1")
	cmd.Flags().IntVar(&offset, "offset", 0, "Confidence offset; the first tier gets offset+1")
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination file (stdout when empty)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing plan file")
	return cmd
}

func newPlanValidateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate <plan.toml>",
		Short: "Check a plan file and print its tiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.Load(args[0])
			if err != nil {
				return err
			}
			for i, tier := range p.Tiers {
				for j, c := range tier.Comparators {
					if !c.Filled() {
						return fmt.Errorf("tier %d comparator %d: column names are not filled in", i, j)
					}
				}
			}
			if asJSON {
				return writeJSON(cmd, p)
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, p.Len())
			for i, tier := range p.Tiers {
				comps := make([]string, len(tier.Comparators))
				for j, c := range tier.Comparators {
					comps[j] = c.String()
				}
				rows = append(rows, []string{strconv.Itoa(i), strconv.Itoa(tier.Confidence), strings.Join(comps, "\n")})
			}
			newReport(out).table([]string{"Tier", "Confidence", "Comparators"}, rows, 0, 1)
			fmt.Fprintf(out, "Plan valid: %d tiers\n", p.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}
