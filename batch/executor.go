package batch

import "context"

// Request is one queued call tagged with the id its result is reported
// under.
type Request struct {
	ID   string
	Call interface{}
}

// Executor submits a chunk of calls to the remote batch endpoint. It is the
// only place ThrottledBatch touches the transport.
type Executor interface {
	// ExecuteBatch submits every request in one batch and returns a mapping
	// from request id to result. Ids that are missing from the mapping are
	// simply absent from the aggregated results.
	//
	// An error rejects the whole chunk.
	//
	// Example:
	//
	//	func (e *MyExecutor) ExecuteBatch(ctx context.Context, reqs []batch.Request) (map[string]interface{}, error) {
	//		out := make(map[string]interface{}, len(reqs))
	//		for _, r := range reqs {
	//			out[r.ID] = e.client.Do(ctx, r.Call)
	//		}
	//		return out, nil
	//	}
	ExecuteBatch(ctx context.Context, reqs []Request) (map[string]interface{}, error)
}

// ExecutorFunc adapts an ordinary function to the Executor interface.
type ExecutorFunc func(ctx context.Context, reqs []Request) (map[string]interface{}, error)

// ExecuteBatch implements the Executor interface.
func (f ExecutorFunc) ExecuteBatch(ctx context.Context, reqs []Request) (map[string]interface{}, error) {
	return f(ctx, reqs)
}
