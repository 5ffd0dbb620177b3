package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MasterOfBinary/throttledbatch/coalesce"
)

// CoalesceOptions holds flags for the coalesce command.
type CoalesceOptions struct {
	File      string
	NFC       bool
	Fold      bool
	MaxHops   int
	ShowTable bool
}

// CoalesceReport is the data printed by the coalesce command. Canonical has
// one entry per input line; "" means every candidate on the line was absent.
type CoalesceReport struct {
	Canonical []string          `json:"canonical"`
	Table     map[string]string `json:"table,omitempty"`
}

// NewCoalesceCommand creates the coalesce command.
func NewCoalesceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CoalesceOptions{}

	cmd := &cobra.Command{
		Use:   "coalesce [--file <candidates>]",
		Short: "Resolve lines of candidate identifiers to canonical values",
		Long: `Read lines of comma-separated candidate identifiers and print the canonical
identifier for each line. Empty fields are absent candidates. Lines are
processed in order against one shared resolution table, so earlier lines
decide the canonical value of later ones.

Blank lines and lines starting with '#' are skipped.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoalesce(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read candidates from a file instead of stdin")
	cmd.Flags().BoolVar(&opts.NFC, "nfc", false, "normalize candidates to Unicode NFC")
	cmd.Flags().BoolVar(&opts.Fold, "fold", false, "normalize candidates to trimmed lower-case NFC")
	cmd.Flags().IntVar(&opts.MaxHops, "max-hops", coalesce.DefaultMaxHops, "redirect chain length treated as a cycle")
	cmd.Flags().BoolVar(&opts.ShowTable, "table", false, "print the resolution table after the results")

	return cmd
}

func runCoalesce(rootOpts *RootOptions, opts *CoalesceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	in := cmd.InOrStdin()
	if opts.File != "" {
		f, err := os.Open(opts.File)
		if err != nil {
			return WrapExitError(ExitCommandError, "open candidates", err)
		}
		defer f.Close()
		in = f
	}

	normalizer := coalesce.Identity
	switch {
	case opts.Fold:
		normalizer = coalesce.Fold
	case opts.NFC:
		normalizer = coalesce.NFC
	}

	c := coalesce.New(
		coalesce.WithNormalizer(normalizer),
		coalesce.WithMaxHops(opts.MaxHops),
		coalesce.WithLogger(newLogger(rootOpts, formatter.errWriter())),
	)

	report := CoalesceReport{Canonical: []string{}}
	lineErr := eachCandidateLine(in, func(line int, candidates []string) error {
		canonical, err := c.Coalesce(candidates...)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("line %d", line), err)
		}
		formatter.VerboseLog("line %d: %q -> %q", line, candidates, canonical)
		report.Canonical = append(report.Canonical, canonical)
		return nil
	})
	if opts.ShowTable {
		report.Table = c.Snapshot()
	}

	if err := writeCoalesceReport(formatter, report, lineErr); err != nil {
		return err
	}
	return lineErr
}

// eachCandidateLine calls fn with the fields of every non-blank,
// non-comment line. Fields are trimmed; empty fields stay in place as "".
func eachCandidateLine(r io.Reader, fn func(line int, candidates []string) error) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return WrapExitError(ExitCommandError, "read candidates", err)
	}
	return nil
}

func writeCoalesceReport(f *OutputFormatter, report CoalesceReport, err error) error {
	if f.Format == "json" {
		return f.JSON(report, err)
	}

	for _, canonical := range report.Canonical {
		if canonical == "" {
			canonical = "-"
		}
		fmt.Fprintln(f.Writer, canonical)
	}

	if report.Table != nil {
		aliases := make([]string, 0, len(report.Table))
		for alias := range report.Table {
			aliases = append(aliases, alias)
		}
		sort.Strings(aliases)

		fmt.Fprintln(f.Writer, "table:")
		for _, alias := range aliases {
			fmt.Fprintf(f.Writer, "  %s -> %s\n", alias, report.Table[alias])
		}
	}
	return nil
}
