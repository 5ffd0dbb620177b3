package batch

import (
	"sync"
	"sync/atomic"
	"time"
)

// StatsCollector receives counters from ThrottledBatch. The StatsCollector is
// optional - if not provided, no statistics are collected.
type StatsCollector interface {
	// RecordExecuteStart is called once per Execute with the number of
	// chunks the queue was split into.
	RecordExecuteStart(chunks int)

	// RecordExecuteFailed is called when an Execute returns an error.
	RecordExecuteFailed()

	// RecordChunkSubmitted is called when a chunk's stagger delay elapses
	// and it is handed to the Executor.
	RecordChunkSubmitted(size int)

	// RecordChunkComplete is called when the Executor resolves a chunk.
	// results is the number of entries merged into the result mapping.
	RecordChunkComplete(results int, latency time.Duration)

	// RecordChunkFailed is called when the Executor rejects a chunk.
	RecordChunkFailed()

	// GetStats returns a snapshot of the current statistics.
	GetStats() Stats
}

// Stats holds aggregated statistics about batch execution.
type Stats struct {
	ExecutionsStarted uint64
	ExecutionsFailed  uint64

	ChunksSubmitted uint64
	ChunksCompleted uint64
	ChunksFailed    uint64

	// CallsSubmitted is the sum of the sizes of all submitted chunks.
	CallsSubmitted uint64

	// ResultsMerged is the number of result entries merged from resolved
	// chunks.
	ResultsMerged uint64

	// TotalLatency is the summed Executor latency of completed chunks.
	TotalLatency time.Duration
	MinLatency   time.Duration
	MaxLatency   time.Duration

	// MaxChunkSize is the largest chunk submitted.
	MaxChunkSize int

	StartTime      time.Time
	LastUpdateTime time.Time
}

// AverageLatency returns the mean Executor latency per completed chunk.
func (s *Stats) AverageLatency() time.Duration {
	if s.ChunksCompleted == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.ChunksCompleted)
}

// FailureRate returns the percentage of submitted chunks that failed.
func (s *Stats) FailureRate() float64 {
	if s.ChunksSubmitted == 0 {
		return 0
	}
	return float64(s.ChunksFailed) / float64(s.ChunksSubmitted) * 100
}

// NoOpStatsCollector discards all metrics. It is the default collector.
type NoOpStatsCollector struct{}

// RecordExecuteStart implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordExecuteStart(chunks int) {}

// RecordExecuteFailed implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordExecuteFailed() {}

// RecordChunkSubmitted implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordChunkSubmitted(size int) {}

// RecordChunkComplete implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordChunkComplete(results int, latency time.Duration) {}

// RecordChunkFailed implements the StatsCollector interface.
func (n *NoOpStatsCollector) RecordChunkFailed() {}

// GetStats implements the StatsCollector interface.
func (n *NoOpStatsCollector) GetStats() Stats {
	return Stats{}
}

// BasicStatsCollector is an in-memory StatsCollector. All operations are
// safe for concurrent use.
type BasicStatsCollector struct {
	mu    sync.RWMutex
	stats Stats

	executionsStarted uint64
	executionsFailed  uint64
	chunksSubmitted   uint64
	chunksCompleted   uint64
	chunksFailed      uint64
	callsSubmitted    uint64
	resultsMerged     uint64
}

// NewBasicStatsCollector creates a new BasicStatsCollector.
func NewBasicStatsCollector() *BasicStatsCollector {
	now := time.Now()
	return &BasicStatsCollector{
		stats: Stats{
			StartTime:      now,
			LastUpdateTime: now,
			MinLatency:     time.Duration(1<<63 - 1),
		},
	}
}

// RecordExecuteStart implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordExecuteStart(chunks int) {
	atomic.AddUint64(&b.executionsStarted, 1)
	b.touch()
}

// RecordExecuteFailed implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordExecuteFailed() {
	atomic.AddUint64(&b.executionsFailed, 1)
	b.touch()
}

// RecordChunkSubmitted implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordChunkSubmitted(size int) {
	atomic.AddUint64(&b.chunksSubmitted, 1)
	atomic.AddUint64(&b.callsSubmitted, uint64(size))

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()
	if size > b.stats.MaxChunkSize {
		b.stats.MaxChunkSize = size
	}
}

// RecordChunkComplete implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordChunkComplete(results int, latency time.Duration) {
	atomic.AddUint64(&b.chunksCompleted, 1)
	atomic.AddUint64(&b.resultsMerged, uint64(results))

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.LastUpdateTime = time.Now()
	b.stats.TotalLatency += latency
	if latency < b.stats.MinLatency {
		b.stats.MinLatency = latency
	}
	if latency > b.stats.MaxLatency {
		b.stats.MaxLatency = latency
	}
}

// RecordChunkFailed implements the StatsCollector interface.
func (b *BasicStatsCollector) RecordChunkFailed() {
	atomic.AddUint64(&b.chunksFailed, 1)
	b.touch()
}

func (b *BasicStatsCollector) touch() {
	b.mu.Lock()
	b.stats.LastUpdateTime = time.Now()
	b.mu.Unlock()
}

// GetStats implements the StatsCollector interface.
func (b *BasicStatsCollector) GetStats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	stats := b.stats
	stats.ExecutionsStarted = atomic.LoadUint64(&b.executionsStarted)
	stats.ExecutionsFailed = atomic.LoadUint64(&b.executionsFailed)
	stats.ChunksSubmitted = atomic.LoadUint64(&b.chunksSubmitted)
	stats.ChunksCompleted = atomic.LoadUint64(&b.chunksCompleted)
	stats.ChunksFailed = atomic.LoadUint64(&b.chunksFailed)
	stats.CallsSubmitted = atomic.LoadUint64(&b.callsSubmitted)
	stats.ResultsMerged = atomic.LoadUint64(&b.resultsMerged)

	if stats.ChunksCompleted == 0 {
		stats.MinLatency = 0
	}

	return stats
}
