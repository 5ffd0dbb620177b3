package batch

import "time"

// Defaults applied when no Config is given or a value is out of range.
const (
	// DefaultMaxPerBatch is the default number of calls submitted in one chunk.
	DefaultMaxPerBatch = 25

	// DefaultStaggerDelay is the default delay between consecutive chunk
	// submissions.
	DefaultStaggerDelay = time.Second
)
