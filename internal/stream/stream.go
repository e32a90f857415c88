// Package stream runs one producer goroutine per worker, filling
// fixed-size chunks from a Hasher and delivering them through a bounded
// backpressure-gated channel. It is a direct translation of the
// original disktest stream worker: an abort flag, a shared backpressure
// counter, and a coarse sleep-poll in place of a condition variable.
package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Platinum-Technologie/disktest/internal/generator"
	"github.com/Platinum-Technologie/disktest/internal/hasher"
)

// LevelThres is the backpressure high-water mark: a worker stops
// producing once its outstanding chunk count reaches this value.
const LevelThres = 8

// pollInterval is how long the worker sleeps when backpressure is full.
const pollInterval = 10 * time.Millisecond

// channelCapacity bounds the worker-to-stream channel; LevelThres is the
// soft limit enforced by the worker itself, this is a hard backstop.
const channelCapacity = LevelThres + 1

// Chunk is a unit of handoff between a worker and its Stream consumer.
type Chunk struct {
	Index uint64
	Data  []byte
}

// Stream owns one worker goroutine, its channel, its backpressure
// counter, and its lifecycle (activate/drop).
type Stream struct {
	algo   generator.Algorithm
	seed   []byte
	serial uint16

	chunkSize int

	level atomic.Int64
	abort atomic.Bool

	mu   sync.Mutex
	rx   chan Chunk
	wg   sync.WaitGroup
	// active tracks whether a worker goroutine is currently running,
	// guarded by mu.
	active bool
}

// New constructs a Stream for the given algorithm, seed, and worker
// serial. chunkFactor is the number of generator blocks concatenated
// into a single chunk (algorithm-dependent: 64 for ChaCha20, 10240 for
// SHA512). The stream is not active until Activate is called.
func New(algo generator.Algorithm, seed []byte, serial uint16, chunkFactor int) (*Stream, error) {
	h, err := hasher.New(algo, seed, serial)
	if err != nil {
		return nil, err
	}
	s := &Stream{
		algo:      algo,
		seed:      append([]byte(nil), seed...),
		serial:    serial,
		chunkSize: h.Size() * chunkFactor,
	}
	return s, nil
}

// ChunkSize returns the byte length of each chunk this stream produces.
func (s *Stream) ChunkSize() int { return s.chunkSize }

func (s *Stream) stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.abort.Store(true)
	s.wg.Wait()

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

func (s *Stream) start() {
	h, err := hasher.New(s.algo, s.seed, s.serial)
	if err != nil {
		// Construction already succeeded once in New; a later failure
		// here would be an internal invariant violation.
		panic("stream: hasher construction failed on restart: " + err.Error())
	}

	s.abort.Store(false)
	s.level.Store(0)
	rx := make(chan Chunk, channelCapacity)
	s.rx = rx

	s.mu.Lock()
	s.active = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.worker(h, rx)
}

// Activate stops any current worker, then starts a fresh one: it resets
// the abort flag and backpressure counter to zero and restarts chunk
// production from index 0.
func (s *Stream) Activate() {
	s.stop()
	s.start()
}

// IsActive reports whether a worker goroutine is running and has not
// been asked to abort.
func (s *Stream) IsActive() bool {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	return active && !s.abort.Load()
}

// GetChunk returns the next available chunk, or (Chunk{}, false) if the
// channel is presently empty. On success it decrements the backpressure
// counter.
func (s *Stream) GetChunk() (Chunk, bool) {
	if !s.IsActive() {
		return Chunk{}, false
	}
	select {
	case c := <-s.rx:
		s.level.Add(-1)
		return c, true
	default:
		return Chunk{}, false
	}
}

// Level returns the current backpressure counter, exposed for tests.
func (s *Stream) Level() int64 { return s.level.Load() }

// Drop stops the worker goroutine. Safe to call repeatedly and safe to
// call on a Stream that was never activated.
func (s *Stream) Drop() { s.stop() }

func (s *Stream) worker(h *hasher.Hasher, tx chan<- Chunk) {
	defer s.wg.Done()

	blocksPerChunk := s.chunkSize / h.Size()
	var index uint64

	for !s.abort.Load() {
		if s.level.Load() >= LevelThres {
			time.Sleep(pollInterval)
			continue
		}

		data := make([]byte, 0, s.chunkSize)
		for i := 0; i < blocksPerChunk; i++ {
			data = append(data, h.Next()...)
		}
		chunk := Chunk{Index: index, Data: data}
		index++

		// channelCapacity > LevelThres, so the channel always has room
		// here: level was just checked below the threshold and only
		// this goroutine sends on tx.
		tx <- chunk
		s.level.Add(1)
	}
}
