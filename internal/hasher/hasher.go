// Package hasher wraps a generator.Generator with per-worker seed
// divergence, so that distinct workers draw from distinct substreams of
// the same underlying algorithm.
package hasher

import (
	"encoding/binary"

	"github.com/Platinum-Technologie/disktest/internal/generator"
)

// Hasher owns one Generator, seeded with the user seed plus an injected
// worker serial.
type Hasher struct {
	gen generator.Generator
}

// New builds a Hasher for worker serial over algo, combining seed and
// serial: the 16-bit serial is appended,
// little-endian, to the raw seed bytes before the Generator is built.
func New(algo generator.Algorithm, seed []byte, serial uint16) (*Hasher, error) {
	effectiveSeed := make([]byte, len(seed)+2)
	copy(effectiveSeed, seed)
	binary.LittleEndian.PutUint16(effectiveSeed[len(seed):], serial)

	gen, err := generator.New(algo, effectiveSeed)
	if err != nil {
		return nil, err
	}
	return &Hasher{gen: gen}, nil
}

// Size returns the underlying Generator's block size.
func (h *Hasher) Size() int { return h.gen.Size() }

// Next returns the next generator block.
func (h *Hasher) Next() []byte { return h.gen.Next() }
