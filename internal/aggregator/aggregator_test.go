package aggregator

import (
	"bytes"
	"testing"
	"time"

	"github.com/Platinum-Technologie/disktest/internal/generator"
	"github.com/Platinum-Technologie/disktest/internal/hasher"
	"github.com/Platinum-Technologie/disktest/internal/stream"
)

// pull reads exactly n chunks from a, busy-polling like a real driver
// would, within a generous timeout.
func pull(t *testing.T, a *Aggregator, n int) []stream.Chunk {
	t.Helper()
	chunks := make([]stream.Chunk, 0, n)
	deadline := time.After(10 * time.Second)
	for len(chunks) < n {
		select {
		case <-deadline:
			t.Fatalf("timed out after pulling %d/%d chunks", len(chunks), n)
		default:
		}
		c, ok := a.GetChunk()
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}
		chunks = append(chunks, c)
	}
	return chunks
}

func TestOrderingLawMatchesDirectHashers(t *testing.T) {
	const n = 4
	const k = 3

	a, err := New(generator.SHA512, []byte{1, 2, 3}, n, generator.SHA512ChunkFactor)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Drop()

	got := pull(t, a, n*k)

	// Build the expected concatenation directly from independent
	// hashers: worker_0.chunk_0, worker_1.chunk_0, ..., worker_0.chunk_1, ...
	hashers := make([]*hasher.Hasher, n)
	for w := 0; w < n; w++ {
		h, err := hasher.New(generator.SHA512, []byte{1, 2, 3}, uint16(w))
		if err != nil {
			t.Fatalf("hasher.New: %v", err)
		}
		hashers[w] = h
	}

	chunkSize := a.ChunkSize()
	blocksPerChunk := chunkSize / hashers[0].Size()

	for round := 0; round < k; round++ {
		for w := 0; w < n; w++ {
			var want []byte
			for i := 0; i < blocksPerChunk; i++ {
				want = append(want, hashers[w].Next()...)
			}
			idx := round*n + w
			if !bytes.Equal(got[idx].Data, want) {
				t.Fatalf("chunk %d (round %d, worker %d): data mismatch", idx, round, w)
			}
		}
	}
}

func TestCrossNDisjointness(t *testing.T) {
	a1, err := New(generator.SHA512, []byte{5, 5, 5}, 1, generator.SHA512ChunkFactor)
	if err != nil {
		t.Fatalf("New(n=1): %v", err)
	}
	defer a1.Drop()

	a2, err := New(generator.SHA512, []byte{5, 5, 5}, 2, generator.SHA512ChunkFactor)
	if err != nil {
		t.Fatalf("New(n=2): %v", err)
	}
	defer a2.Drop()

	got1 := pull(t, a1, 2)
	got2 := pull(t, a2, 2)

	if bytes.Equal(got1[0].Data, got2[0].Data) && bytes.Equal(got1[1].Data, got2[1].Data) {
		t.Fatal("N=1 and N=2 interleaves produced identical first two chunks")
	}
}
