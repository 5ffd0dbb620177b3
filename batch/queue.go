package batch

import (
	"strconv"
	"sync"
)

// queue holds pending calls keyed by id, in the order ids were first added.
type queue struct {
	mu    sync.Mutex
	ids   []string
	calls map[string]interface{}
}

func newQueue() *queue {
	return &queue{
		calls: make(map[string]interface{}),
	}
}

// put stores call under id. Replacing an existing id keeps its position.
func (q *queue) put(id string, call interface{}) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.calls[id]; !ok {
		q.ids = append(q.ids, id)
	}
	q.calls[id] = call
}

// putNext stores call under the id "<current size + 1>" and returns that id.
func (q *queue) putNext(call interface{}) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := strconv.Itoa(len(q.ids) + 1)
	if _, ok := q.calls[id]; !ok {
		q.ids = append(q.ids, id)
	}
	q.calls[id] = call
	return id
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}

// snapshot returns the queued requests in insertion order.
func (q *queue) snapshot() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()

	reqs := make([]Request, len(q.ids))
	for i, id := range q.ids {
		reqs[i] = Request{ID: id, Call: q.calls[id]}
	}
	return reqs
}

// chunk splits reqs into consecutive slices of at most n elements. The last
// chunk holds the remainder. n must be positive.
func chunk(reqs []Request, n int) [][]Request {
	chunks := make([][]Request, 0, (len(reqs)+n-1)/n)
	for start := 0; start < len(reqs); start += n {
		end := start + n
		if end > len(reqs) {
			end = len(reqs)
		}
		chunks = append(chunks, reqs[start:end:end])
	}
	return chunks
}
