// Package batch contains a throttled batching helper. The main type is
// ThrottledBatch, which can be created using New. Calls are queued with Add
// and submitted with Execute through an Executor, which represents the remote
// batch endpoint. Some Executor implementations are provided in the executor
// package, or you can create your own.
//
// ThrottledBatch uses MaxPerBatch and StaggerDelay from Config to decide how
// calls are grouped and when each group is sent:
//
//	chunk 0: calls 1..MaxPerBatch              sent immediately
//	chunk 1: the next MaxPerBatch calls        sent after 1*StaggerDelay
//	chunk 2: ...                               sent after 2*StaggerDelay
//
// Chunks never wait for each other. A slow chunk 0 does not delay chunk 1,
// and chunk 1 may finish first. A successful Execute returns once every
// chunk has settled.
//
// A failing chunk fails the whole Execute, which returns at once. There are
// no retries, and the remaining chunks are not cancelled; call Wait to let
// them finish before reading Results.
//
// The configuration is read once at the start of each Execute. This allows
// dynamic Config implementations to change chunk size or stagger delay
// between runs.
package batch
