// Package generator produces deterministic, seed-derived pseudo-random
// byte blocks. A Generator is stateful: successive calls to Next return
// the canonical sequence for its algorithm and seed.
package generator

// Algorithm selects a Generator implementation.
type Algorithm string

const (
	SHA512   Algorithm = "SHA512"
	ChaCha20 Algorithm = "ChaCha20"
	CRC      Algorithm = "CRC"
)

// Generator produces fixed-size blocks of pseudo-random bytes from an
// internal seed state.
type Generator interface {
	// Size returns the constant block size in bytes.
	Size() int
	// Next returns the next block. The returned slice is owned by the
	// caller until the next call to Next; implementations reuse their
	// internal buffer.
	Next() []byte
}

// New constructs a Generator for the given algorithm and seed.
func New(algo Algorithm, seed []byte) (Generator, error) {
	switch algo {
	case SHA512:
		return newSHA512Generator(seed), nil
	case ChaCha20:
		return newChaCha20Generator(seed)
	case CRC:
		return nil, ErrUnsupportedAlgorithm{Algorithm: string(algo)}
	default:
		return nil, ErrUnsupportedAlgorithm{Algorithm: string(algo)}
	}
}
