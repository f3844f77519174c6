package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	ctx := newCommandContext(opts)

	rootCmd := &cobra.Command{
		Use:           "shelfctl",
		Short:         "Manage a shelfmatch book catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx.stderr = cmd.ErrOrStderr()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", "", "Directory holding the catalog")
	flags.StringVar(&opts.driver, "storage-driver", "", "Storage driver (sqlite, badger)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Path to .env file")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.json, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newBooksCommand(ctx))
	rootCmd.AddCommand(newConflictsCommand(ctx))
	rootCmd.AddCommand(newConfirmCommand(ctx))
	rootCmd.AddCommand(newRecommendCommand(ctx))

	return rootCmd
}
