// Package cli implements the lazyscan command line.
package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
}

// NewRootCommand creates the root command for the lazyscan CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lazyscan",
		Short: "Lazy predicate-pushdown scans for dataframe engines",
		Long: `lazyscan translates Polars predicate expressions, runs lazy scans
over Arrow IPC files and DuckDB tables, and serves them over Arrow Flight.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseLevel(opts.LogLevel); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// logger returns a text logger writing to the command's stderr.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level, _ := parseLevel(o.LogLevel)
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
	return level, nil
}
