// Package aggregator combines N Streams into a single ordered byte view
// with a fixed, reproducible interleave.
package aggregator

import (
	"fmt"
	"strconv"

	"github.com/Platinum-Technologie/disktest/internal/generator"
	"github.com/Platinum-Technologie/disktest/internal/stream"
)

// MetricsSink receives per-worker counters as the aggregator serves
// chunks. *observability.Metrics satisfies this without aggregator
// importing the observability package.
type MetricsSink interface {
	ChunkConsumed(worker string)
	SetBackpressureLevel(worker string, level float64)
}

// Aggregator owns N Streams and presents chunk i of the global stream as
// chunk ⌊i/N⌋ of worker (i mod N). The cursor advances only on
// successful chunk delivery, so the global sequence never depends on
// which worker happens to be ahead.
type Aggregator struct {
	streams   []*stream.Stream
	cursor    int
	globalIdx uint64
	metrics   MetricsSink
}

// SetMetrics attaches a sink that is updated on every served chunk. Pass
// nil to disable (the default).
func (a *Aggregator) SetMetrics(m MetricsSink) { a.metrics = m }

// New constructs N streams with serials 0..N-1 and activates them.
func New(algo generator.Algorithm, seed []byte, n int, chunkFactor int) (*Aggregator, error) {
	if n < 1 {
		return nil, fmt.Errorf("aggregator: worker count must be >= 1, got %d", n)
	}
	streams := make([]*stream.Stream, n)
	for i := 0; i < n; i++ {
		s, err := stream.New(algo, seed, uint16(i), chunkFactor)
		if err != nil {
			for _, started := range streams[:i] {
				if started != nil {
					started.Drop()
				}
			}
			return nil, err
		}
		streams[i] = s
	}
	for _, s := range streams {
		s.Activate()
	}
	return &Aggregator{streams: streams}, nil
}

// N returns the worker count.
func (a *Aggregator) N() int { return len(a.streams) }

// ChunkSize returns the byte length of each chunk produced by any
// member stream (uniform across all N streams).
func (a *Aggregator) ChunkSize() int { return a.streams[0].ChunkSize() }

// GetChunk polls the current cursor's stream. If it has no chunk ready,
// GetChunk returns false immediately — it never falls back to another
// stream, since that would break the determinism contract.
func (a *Aggregator) GetChunk() (stream.Chunk, bool) {
	s := a.streams[a.cursor]
	chunk, ok := s.GetChunk()
	if !ok {
		return stream.Chunk{}, false
	}

	wantLocalIndex := a.globalIdx / uint64(len(a.streams))
	if chunk.Index != wantLocalIndex {
		panic(fmt.Sprintf("aggregator: ordering invariant violated: worker %d produced local index %d, expected %d",
			a.cursor, chunk.Index, wantLocalIndex))
	}

	if a.metrics != nil {
		worker := strconv.Itoa(a.cursor)
		a.metrics.ChunkConsumed(worker)
		a.metrics.SetBackpressureLevel(worker, float64(s.Level()))
	}

	a.cursor = (a.cursor + 1) % len(a.streams)
	a.globalIdx++
	return chunk, true
}

// Drop cascades to every owned Stream.
func (a *Aggregator) Drop() {
	for _, s := range a.streams {
		s.Drop()
	}
}
