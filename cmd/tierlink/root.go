package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{configFlag: new(string), databaseFlag: new(string)}

	root := &cobra.Command{
		Use:   "tierlink",
		Short: "Tiered record linkage for CSV files and SQLite tables",
		Long: `tierlink joins two record sets through a plan of ordered tiers. Each tier
compares columns exactly or approximately; rows matched by an earlier tier
are withdrawn before the next one runs, and every pair is stamped with the
confidence level of the tier that produced it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(ctx.configFlag, "config", "c", "", "Configuration file path (default $TIERLINK_CONFIG or ~/.config/tierlink/config.toml)")
	flags.StringVar(ctx.databaseFlag, "db", "", "SQLite database path (overrides storage.database_path)")

	root.AddCommand(
		newLinkCommand(ctx),
		newPlanCommand(ctx),
		newNormalizeCommand(ctx),
		newRunsCommand(ctx),
		newConfigCommand(ctx),
	)
	return root
}
