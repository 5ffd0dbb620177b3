package executor

import (
	"context"

	"github.com/MasterOfBinary/throttledbatch/batch"
)

// Error is an Executor that rejects every chunk with Err.
type Error struct {
	Err error
}

// ExecuteBatch implements the batch.Executor interface.
func (e *Error) ExecuteBatch(_ context.Context, _ []batch.Request) (map[string]interface{}, error) {
	return nil, e.Err
}
