package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	config   string
	locale   string
	logLevel string
	format   string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	app := newAppContext(flags)

	rootCmd := &cobra.Command{
		Use:           "imdbsync",
		Short:         "Resolve IMDb lists and searches into TMDb and TVDb ids",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch flags.format {
			case formatTable, formatJSON, formatCompact:
			default:
				return fmt.Errorf("invalid --format %q (must be %s)", flags.format,
					strings.Join([]string{formatTable, formatJSON, formatCompact}, ", "))
			}
			return app.init(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Configuration file path (default ~/.imdbsync/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.locale, "locale", "", "Locale for Accept-Language (overrides settings.language)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.format, "format", formatTable, "Output format (table, json, compact)")

	rootCmd.AddCommand(newListCommand(app))
	rootCmd.AddCommand(newIDCommand(app))
	rootCmd.AddCommand(newValidateCommand(app))
	rootCmd.AddCommand(newRunCommand(app))

	return rootCmd
}
