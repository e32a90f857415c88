// Package driver implements the write and verify consumer loops: pull
// aggregated chunks, and either write them to the device or compare
// them against device reads, reporting mismatch offsets.
package driver

import (
	"context"
	"time"

	"github.com/Platinum-Technologie/disktest/internal/stream"
)

// ChunkSource is the subset of *aggregator.Aggregator the driver
// depends on, narrowed so tests can supply a fake without goroutines.
type ChunkSource interface {
	GetChunk() (stream.Chunk, bool)
	ChunkSize() int
}

// logThreshold is the progress-reporting granularity.
const logThreshold = 10 * 1024 * 1024

// pollInterval is how long the driver waits between polls when the
// current aggregator cursor has no chunk ready yet.
const pollInterval = time.Millisecond

// nextChunk busy-waits briefly for the aggregator to produce a chunk,
// returning early with ctx.Err() if ctx is cancelled first.
func nextChunk(ctx context.Context, src ChunkSource) (stream.Chunk, error) {
	for {
		if c, ok := src.GetChunk(); ok {
			return c, nil
		}
		select {
		case <-ctx.Done():
			return stream.Chunk{}, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Unbounded is used as the max-bytes value meaning "to device end".
const Unbounded = ^uint64(0)
