package executor

import (
	"context"
	"time"

	"github.com/MasterOfBinary/throttledbatch/batch"
)

// Nil is an Executor that waits for Duration and then resolves every request
// with a nil result. It can be used as a mock Executor.
type Nil struct {
	Duration time.Duration
}

// ExecuteBatch implements the batch.Executor interface. If ctx is done before
// Duration elapses, ctx.Err() is returned.
func (e *Nil) ExecuteBatch(ctx context.Context, reqs []batch.Request) (map[string]interface{}, error) {
	if e.Duration > 0 {
		timer := time.NewTimer(e.Duration)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	out := make(map[string]interface{}, len(reqs))
	for _, r := range reqs {
		out[r.ID] = nil
	}
	return out, nil
}
