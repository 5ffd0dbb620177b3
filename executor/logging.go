package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/MasterOfBinary/throttledbatch/batch"
)

// Logging wraps another Executor and logs every chunk it submits, along with
// how long the wrapped Executor took and whether it failed.
type Logging struct {
	// Executor is the wrapped executor that does the actual work.
	Executor batch.Executor

	// Logger is used to log submissions. If nil, no logging occurs.
	Logger batch.Logger

	// Name is an optional name used in log messages. If empty, the wrapped
	// executor's type name is used.
	Name string
}

// ExecuteBatch implements the batch.Executor interface by delegating to the
// wrapped Executor.
func (e *Logging) ExecuteBatch(ctx context.Context, reqs []batch.Request) (map[string]interface{}, error) {
	if e.Executor == nil {
		return nil, batch.ErrNoExecutor
	}
	if e.Logger == nil {
		return e.Executor.ExecuteBatch(ctx, reqs)
	}

	name := e.Name
	if name == "" {
		name = fmt.Sprintf("%T", e.Executor)
	}

	start := time.Now()
	e.Logger.Debug("Executor '%s' submitting %d calls", name, len(reqs))

	results, err := e.Executor.ExecuteBatch(ctx, reqs)

	duration := time.Since(start)
	if err != nil {
		e.Logger.Error("Executor '%s' failed after %v: %v", name, duration, err)
		return results, err
	}

	missing := 0
	for _, r := range reqs {
		if _, ok := results[r.ID]; !ok {
			missing++
		}
	}
	if missing > 0 {
		e.Logger.Warn("Executor '%s' returned no result for %d of %d calls", name, missing, len(reqs))
	}
	e.Logger.Debug("Executor '%s' completed in %v: %d results", name, duration, len(results))

	return results, nil
}

// WithLogging wraps an executor with logging.
//
//	logger := batch.NewSimpleLogger(batch.LogLevelDebug)
//	exec := executor.WithLogging(&executor.HTTP{URL: url}, logger, "api")
func WithLogging(exec batch.Executor, logger batch.Logger, name string) *Logging {
	return &Logging{
		Executor: exec,
		Logger:   logger,
		Name:     name,
	}
}
