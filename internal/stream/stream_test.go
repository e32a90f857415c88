package stream

import (
	"testing"
	"time"

	"github.com/Platinum-Technologie/disktest/internal/generator"
)

func TestBasic(t *testing.T) {
	s, err := New(generator.SHA512, []byte{1, 2, 3}, 0, generator.SHA512ChunkFactor)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Drop()

	s.Activate()
	if !s.IsActive() {
		t.Fatal("expected stream to be active after Activate")
	}

	wantFirstByte := []byte{84, 31, 194, 246, 107}
	count := uint64(0)
	deadline := time.After(5 * time.Second)
	for count < 5 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for chunk %d", count)
		default:
		}
		chunk, ok := s.GetChunk()
		if !ok {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if chunk.Index != count {
			t.Fatalf("chunk index = %d, want %d", chunk.Index, count)
		}
		if chunk.Data[0] != wantFirstByte[chunk.Index] {
			t.Fatalf("chunk %d data[0] = %d, want %d", chunk.Index, chunk.Data[0], wantFirstByte[chunk.Index])
		}
		count++
	}
}

func TestBackpressureBounded(t *testing.T) {
	s, err := New(generator.SHA512, []byte{1}, 0, generator.SHA512ChunkFactor)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Drop()

	s.Activate()
	// Let the worker run ahead of any consumer for a while.
	time.Sleep(200 * time.Millisecond)

	level := s.Level()
	if level < 0 || level > LevelThres+1 {
		t.Fatalf("level = %d, want within [0, %d]", level, LevelThres+1)
	}
}

func TestDropJoinsPromptly(t *testing.T) {
	s, err := New(generator.SHA512, []byte{1}, 0, generator.SHA512ChunkFactor)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Activate()
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	s.Drop()
	elapsed := time.Since(start)

	if elapsed > 50*time.Millisecond {
		t.Fatalf("Drop took %v, want <= 50ms", elapsed)
	}
	if s.IsActive() {
		t.Fatal("expected stream to be inactive after Drop")
	}
}
