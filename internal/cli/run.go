package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/MasterOfBinary/throttledbatch/batch"
	"github.com/MasterOfBinary/throttledbatch/executor"
	"github.com/MasterOfBinary/throttledbatch/internal/plan"
)

// RunOptions holds flags for the run command. Zero values defer to the plan
// file.
type RunOptions struct {
	PlanPath    string
	URL         string
	MaxPerBatch int
	Stagger     time.Duration
	Timeout     time.Duration
}

// RunReport is the data printed by the run command.
type RunReport struct {
	Results      batch.Results `json:"results"`
	Calls        int           `json:"calls"`
	Chunks       uint64        `json:"chunks"`
	FailedChunks uint64        `json:"failed_chunks"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run --plan <plan.yaml>",
		Short: "Submit the calls in a plan to a batch endpoint",
		Long: `Queue every call in a YAML plan and submit them to an HTTP batch endpoint
in chunks of at most max_per_batch calls, chunk i being sent after
i * stagger_delay. Prints the merged results keyed by call id.

Flags override the values in the plan.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("stagger") {
				opts.Stagger = -1
			}
			return runRun(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.PlanPath, "plan", "p", "", "path to the plan file (required)")
	cmd.Flags().StringVar(&opts.URL, "url", "", "batch endpoint URL")
	cmd.Flags().IntVar(&opts.MaxPerBatch, "max-per-batch", 0, "maximum calls per chunk")
	cmd.Flags().DurationVar(&opts.Stagger, "stagger", 0, "delay between chunk submissions")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "overall timeout passed to the endpoint requests (0 for none)")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func runRun(rootOpts *RootOptions, opts *RunOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	p, err := plan.Load(opts.PlanPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load plan", err)
	}

	url := p.URL
	if opts.URL != "" {
		url = opts.URL
	}
	if url == "" {
		return NewExitError(ExitCommandError, "no batch endpoint: set url in the plan or pass --url")
	}

	values := p.ConfigValues()
	if opts.MaxPerBatch > 0 {
		values.MaxPerBatch = opts.MaxPerBatch
	}
	if opts.Stagger >= 0 {
		values.StaggerDelay = opts.Stagger
	}

	header := make(http.Header, len(p.Headers))
	for k, v := range p.Headers {
		header.Set(k, v)
	}

	logger := newLogger(rootOpts, formatter.errWriter())
	stats := batch.NewBasicStatsCollector()
	exec := executor.WithLogging(&executor.HTTP{URL: url, Header: header}, logger, url)

	b := batch.New(batch.NewConstantConfig(&values)).
		WithExecutor(exec).
		WithLogger(logger).
		WithStats(stats)
	p.Queue(b)

	formatter.VerboseLog("Loaded %d call(s) from %s: %v", len(p.Calls), opts.PlanPath, b)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	results, execErr := b.Execute(ctx)
	if execErr != nil {
		// Report every chunk, not just those settled before the failure.
		b.Wait()
		results = b.Results()
	}

	s := stats.GetStats()
	report := RunReport{
		Results:      results,
		Calls:        b.Len(),
		Chunks:       s.ChunksSubmitted,
		FailedChunks: s.ChunksFailed,
	}

	if err := writeRunReport(formatter, report, execErr); err != nil {
		return err
	}
	if execErr != nil {
		return WrapExitError(ExitFailure, "run failed", execErr)
	}
	return nil
}

func writeRunReport(f *OutputFormatter, report RunReport, execErr error) error {
	if f.Format == "json" {
		return f.JSON(report, execErr)
	}

	ids := make([]string, 0, len(report.Results))
	for id := range report.Results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		value, err := json.Marshal(report.Results[id])
		if err != nil {
			return fmt.Errorf("encode result %s: %w", id, err)
		}
		fmt.Fprintf(f.Writer, "%s = %s\n", id, value)
	}

	if report.FailedChunks > 0 {
		fmt.Fprintf(f.Writer, "%d of %d results from %d chunks (%d failed)\n",
			len(report.Results), report.Calls, report.Chunks, report.FailedChunks)
	} else {
		fmt.Fprintf(f.Writer, "%d of %d results from %d chunks\n",
			len(report.Results), report.Calls, report.Chunks)
	}
	return nil
}
