// Package throttledbatch contains client-side helpers for talking to a remote
// batching API. It has no code of its own; the work is done in the
// subpackages.
//
// Package batch provides ThrottledBatch, which queues calls under string ids
// and, on Execute, splits them into chunks of at most MaxPerBatch calls.
// Chunk i is handed to an Executor after i*StaggerDelay, so a large queue
// never reaches the remote service as a single burst. Chunks run
// concurrently and their results are merged into one mapping keyed by call
// id:
//
//	b := batch.New(batch.NewConstantConfig(&batch.ConfigValues{
//		MaxPerBatch:  25,
//		StaggerDelay: time.Second,
//	})).WithExecutor(&executor.HTTP{URL: "https://api.example.com/batch"})
//
//	b.Add(call, "user-1")
//	results, err := b.Execute(ctx)
//
// A chunk that fails makes Execute return an error right away, but chunks
// already scheduled are still submitted. Wait blocks until they settle, and
// their results are then available from Results. Nothing is retried.
//
// Package executor has Executor implementations: HTTP for a JSON batch
// endpoint, Logging to wrap another Executor, and Nil and Error for tests.
//
// Package coalesce provides Coalescer, which maps lists of candidate
// identifiers (for example an email, a name and a handle that may refer to
// the same user) onto one canonical identifier and remembers the mapping
// for later calls.
//
// The throttledbatch command in cmd/throttledbatch exposes both: "run"
// submits the calls in a YAML plan file, and "coalesce" canonicalizes lines
// of comma-separated candidates.
package throttledbatch
