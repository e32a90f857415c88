package generator

import (
	"golang.org/x/crypto/chacha20"
)

// ChaCha20OutSize is the keystream block size produced per Next call.
const ChaCha20OutSize = 102400

// ChaCha20ChunkFactor is the number of blocks a driver groups into one
// I/O chunk for this algorithm.
const ChaCha20ChunkFactor = 64

type chaCha20Generator struct {
	cipher *chacha20.Cipher
	zero   []byte
	buf    []byte
}

func newChaCha20Generator(seed []byte) (Generator, error) {
	key := make([]byte, chacha20.KeySize)
	copy(key, seed)

	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, err
	}
	return &chaCha20Generator{
		cipher: c,
		zero:   make([]byte, ChaCha20OutSize),
		buf:    make([]byte, ChaCha20OutSize),
	}, nil
}

func (g *chaCha20Generator) Size() int { return ChaCha20OutSize }

func (g *chaCha20Generator) Next() []byte {
	g.cipher.XORKeyStream(g.buf, g.zero)
	return g.buf
}
