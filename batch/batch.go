package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Results maps call ids to the values the Executor returned for them.
type Results map[string]interface{}

// ThrottledBatch queues calls and submits them to an Executor in chunks of at
// most MaxPerBatch, starting chunk i after i*StaggerDelay. It does not wait
// for a chunk to finish before starting the next one; the stagger is a fixed
// admission ramp that keeps the remote endpoint from being flooded.
//
// To create a new ThrottledBatch, call New. Creating one using
// &ThrottledBatch{} will also work and uses the default configuration.
//
//	b := batch.New(nil).WithExecutor(exec)
//	b.Add(call1)
//	b.Add(call2, "user-42")
//	results, err := b.Execute(ctx)
//
// Results accumulate across every Execute call on the same ThrottledBatch and
// are never cleared.
//
// Execute snapshots the queue when it starts. Adding calls while an Execute is
// running does not affect that run and is not supported; queue everything,
// then execute.
type ThrottledBatch struct {
	config   Config
	logger   Logger
	stats    StatsCollector
	executor Executor

	once  sync.Once
	queue *queue

	resultsMu sync.Mutex
	results   Results

	inflight sync.WaitGroup

	mu      sync.Mutex
	running int
}

// New creates a new ThrottledBatch using the provided config. If config is
// nil, DefaultConfigValues is used.
func New(config Config) *ThrottledBatch {
	return &ThrottledBatch{
		config: config,
	}
}

func (b *ThrottledBatch) init() {
	b.once.Do(func() {
		b.queue = newQueue()
		b.results = make(Results)
	})
}

// WithExecutor sets the Executor that chunks are submitted to.
//
// Panics if called while Execute is running.
func (b *ThrottledBatch) WithExecutor(executor Executor) *ThrottledBatch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running > 0 {
		panic("batch: WithExecutor cannot be called while Execute is running")
	}

	b.executor = executor
	return b
}

// WithLogger sets a custom logger. If not set, no logging occurs.
//
//	b := batch.New(config).WithLogger(batch.NewSimpleLogger(batch.LogLevelInfo))
//
// Panics if called while Execute is running.
func (b *ThrottledBatch) WithLogger(logger Logger) *ThrottledBatch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running > 0 {
		panic("batch: WithLogger cannot be called while Execute is running")
	}

	b.logger = logger
	return b
}

// WithStats sets a custom stats collector. If not set, no statistics are
// collected.
//
// Panics if called while Execute is running.
func (b *ThrottledBatch) WithStats(stats StatsCollector) *ThrottledBatch {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running > 0 {
		panic("batch: WithStats cannot be called while Execute is running")
	}

	b.stats = stats
	return b
}

// Add queues call under id, or under an automatic id when none is given, and
// returns the id used. The automatic id is the current queue length plus one,
// formatted as a decimal string ("1", "2", ...). Adding a call under an id
// that is already queued replaces the earlier call.
func (b *ThrottledBatch) Add(call interface{}, id ...string) string {
	b.init()

	if len(id) > 0 {
		b.queue.put(id[0], call)
		return id[0]
	}
	return b.queue.putNext(call)
}

// Len returns the number of queued calls.
func (b *ThrottledBatch) Len() int {
	b.init()
	return b.queue.len()
}

// Results returns a copy of every result merged so far, including results of
// chunks that completed during or after an Execute that failed.
func (b *ThrottledBatch) Results() Results {
	b.init()

	b.resultsMu.Lock()
	defer b.resultsMu.Unlock()

	out := make(Results, len(b.results))
	for k, v := range b.results {
		out[k] = v
	}
	return out
}

// run is the state of a single Execute call.
type run struct {
	id     string
	chunks [][]Request
	logger Logger
	stats  StatsCollector

	// timers holds each chunk's stagger timer so a run could be stopped
	// early; nothing stops them today.
	timers []*time.Timer
}

// Execute submits every queued call and waits for all chunks to settle.
//
// The queue is split into consecutive chunks of at most MaxPerBatch calls in
// insertion order. Chunk i is handed to the Executor after i*StaggerDelay.
// Each resolved chunk's results are merged into the result mapping, with
// later writes winning on id collisions.
//
// If a chunk fails, Execute returns as soon as that failure is known, with an
// *ExecuteError wrapping the first *ChunkError and nil results. Nothing is
// retried. Chunks still in flight or waiting on their stagger timer are not
// cancelled: they go out on schedule and their results are merged as they
// arrive. Use Wait to block until they have settled, then Results to read
// them.
//
// ctx is passed to the Executor. It does not cancel stagger timers.
func (b *ThrottledBatch) Execute(ctx context.Context) (Results, error) {
	b.init()

	b.mu.Lock()
	if b.config == nil {
		b.config = NewConstantConfig(nil)
	}
	if b.logger == nil {
		b.logger = &NoOpLogger{}
	}
	if b.stats == nil {
		b.stats = &NoOpStatsCollector{}
	}
	executor, logger, stats := b.executor, b.logger, b.stats
	config := fixConfig(b.config.Get())
	b.running++
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.running--
		b.mu.Unlock()
	}()

	if executor == nil {
		return nil, ErrNoExecutor
	}

	r := &run{
		id:     uuid.Must(uuid.NewV7()).String(),
		chunks: chunk(b.queue.snapshot(), config.MaxPerBatch),
		logger: logger,
		stats:  stats,
	}
	r.timers = make([]*time.Timer, len(r.chunks))

	r.logger.Info("ThrottledBatch %s trying %d batches, wait time %v", r.id, len(r.chunks), config.StaggerDelay)
	r.stats.RecordExecuteStart(len(r.chunks))

	// Buffered so chunks that fail after Execute has returned never block.
	failed := make(chan error, len(r.chunks))

	var g errgroup.Group
	b.inflight.Add(len(r.chunks))
	for i, reqs := range r.chunks {
		i, reqs := i, reqs
		timer := time.NewTimer(time.Duration(i) * config.StaggerDelay)
		r.timers[i] = timer

		g.Go(func() error {
			defer b.inflight.Done()
			<-timer.C
			err := b.submit(ctx, executor, r, i, reqs)
			if err != nil {
				failed <- err
			}
			return err
		})
	}

	settled := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(settled)
	}()

	var err error
	select {
	case err = <-failed:
	case <-settled:
		select {
		case err = <-failed:
		default:
		}
	}

	if err != nil {
		r.logger.Error("ThrottledBatch %s failed: %v", r.id, err)
		r.stats.RecordExecuteFailed()
		return nil, &ExecuteError{RunID: r.id, Chunks: len(r.chunks), Err: err}
	}

	return b.Results(), nil
}

// Wait blocks until every chunk started by any Execute call has been
// submitted and has settled. It is needed after a failed Execute, which
// returns without waiting for the remaining chunks.
//
// Wait must not be called concurrently with Execute.
func (b *ThrottledBatch) Wait() {
	b.inflight.Wait()
}

// submit sends one chunk to the Executor and merges its results.
func (b *ThrottledBatch) submit(ctx context.Context, executor Executor, r *run, index int, reqs []Request) error {
	r.logger.Info("ThrottledBatch %s calling batch { number:%d, length:%d }", r.id, index, len(reqs))
	if len(reqs) > 0 {
		r.logger.Debug("ThrottledBatch %s batch %d ids %s..%s", r.id, index, reqs[0].ID, reqs[len(reqs)-1].ID)
	}
	r.stats.RecordChunkSubmitted(len(reqs))

	start := time.Now()
	res, err := executor.ExecuteBatch(ctx, reqs)
	if err != nil {
		r.logger.Error("ThrottledBatch %s error with single batch %d: %v", r.id, index, err)
		r.stats.RecordChunkFailed()

		ids := make([]string, len(reqs))
		for i, req := range reqs {
			ids[i] = req.ID
		}
		return &ChunkError{Index: index, IDs: ids, Err: err}
	}

	b.resultsMu.Lock()
	for id, v := range res {
		b.results[id] = v
	}
	b.resultsMu.Unlock()

	latency := time.Since(start)
	r.stats.RecordChunkComplete(len(res), latency)
	r.logger.Info("ThrottledBatch %s response for batch %d (%d results, %v)", r.id, index, len(res), latency)
	return nil
}

// String returns a short diagnostic summary, for example
// "ThrottledBatch{max:25,wait:1000,queue:3}". wait is in milliseconds.
func (b *ThrottledBatch) String() string {
	b.mu.Lock()
	config := b.config
	b.mu.Unlock()

	values := DefaultConfigValues()
	if config != nil {
		values = fixConfig(config.Get())
	}

	return fmt.Sprintf("ThrottledBatch{max:%d,wait:%d,queue:%d}",
		values.MaxPerBatch, values.StaggerDelay.Milliseconds(), b.Len())
}
