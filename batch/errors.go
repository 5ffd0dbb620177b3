package batch

import (
	"errors"
	"fmt"
)

// ErrNoExecutor is returned by Execute when no Executor has been set.
var ErrNoExecutor = errors.New("batch: no executor configured")

// ChunkError is returned when the Executor rejects a single chunk.
type ChunkError struct {
	// Index is the 0-based position of the chunk in its Execute run.
	Index int

	// IDs are the call ids that were submitted in the chunk.
	IDs []string

	Err error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%d calls): %v", e.Index, len(e.IDs), e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// ExecuteError is returned by Execute when any chunk fails. It wraps the first
// ChunkError observed; chunks that completed before or after the failure are
// not rolled back.
type ExecuteError struct {
	// RunID identifies the Execute call in log output.
	RunID string

	// Chunks is the total number of chunks scheduled by the run.
	Chunks int

	Err error
}

func (e *ExecuteError) Error() string {
	return fmt.Sprintf("execute %s failed (%d chunks): %v", e.RunID, e.Chunks, e.Err)
}

func (e *ExecuteError) Unwrap() error {
	return e.Err
}
