// Package executor contains implementations of batch.Executor, the capability
// a ThrottledBatch uses to submit one chunk of calls to the remote batch
// endpoint.
//
// HTTP talks to a JSON batch endpoint. Nil and Error are fixed-behaviour
// executors that are handy as mocks, and Logging wraps any other Executor
// with progress logging.
package executor
