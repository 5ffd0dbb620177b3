// Package cli implements the throttledbatch command tree.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MasterOfBinary/throttledbatch/batch"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the throttledbatch CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "throttledbatch",
		Short: "Staggered batch submission and identifier coalescing",
		Long: `throttledbatch submits queued calls to a batch endpoint in fixed-size
chunks spaced by a stagger delay, and canonicalizes lists of candidate
identifiers.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, ok := batch.ParseLogLevel(opts.LogLevel); !ok {
				return fmt.Errorf("invalid log level %q", opts.LogLevel)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "minimum log level (debug|info|warn|error)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewCoalesceCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger builds the diagnostic logger for a command. Logs always go to w
// so they never mix with command output.
func newLogger(opts *RootOptions, w io.Writer) batch.Logger {
	level, ok := batch.ParseLogLevel(opts.LogLevel)
	if !ok {
		level = batch.LogLevelWarn
	}
	if opts.Verbose {
		level = batch.LogLevelDebug
	}
	return batch.NewWriterLogger(w, level)
}
