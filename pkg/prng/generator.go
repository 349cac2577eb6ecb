package prng

import (
	"encoding/binary"
	"fmt"

	"github.com/tuneinsight/lattigo/v6/utils/sampling"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// Algorithm names a deterministic bit generator.
type Algorithm string

const (
	// AlgorithmBlake2b keys a lattigo KeyedPRNG (blake2b XOF) with the seed.
	AlgorithmBlake2b Algorithm = "blake2b"
	// AlgorithmChaCha20 runs the ChaCha20 keystream under a key derived from the seed.
	AlgorithmChaCha20 Algorithm = "chacha20"
)

// DefaultAlgorithm is used by the shared instance unless Configure says otherwise.
const DefaultAlgorithm = AlgorithmBlake2b

// ParseAlgorithm maps a configuration string onto an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch alg := Algorithm(name); alg {
	case AlgorithmBlake2b, AlgorithmChaCha20:
		return alg, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Generator is the narrow interface the service drives. Seed restarts the
// output stream, so the stream is a pure function of the seed and of the
// number of bytes read since.
type Generator interface {
	Seed(seed uint64) error
	Read(p []byte) (int, error)
}

// NewGenerator returns an unseeded generator for alg.
func NewGenerator(alg Algorithm) (Generator, error) {
	switch alg {
	case AlgorithmBlake2b:
		return &keyedGenerator{}, nil
	case AlgorithmChaCha20:
		return &chachaGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// seedBytes is the little-endian encoding of seed, used as key material.
func seedBytes(seed uint64) []byte {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, seed)
	return key
}

type keyedGenerator struct {
	prng *sampling.KeyedPRNG
}

func (g *keyedGenerator) Seed(seed uint64) error {
	prng, err := sampling.NewKeyedPRNG(seedBytes(seed))
	if err != nil {
		return fmt.Errorf("prng: keying blake2b xof: %w", err)
	}
	g.prng = prng
	return nil
}

func (g *keyedGenerator) Read(p []byte) (int, error) {
	if g.prng == nil {
		return 0, ErrGeneratorNotSeeded
	}
	return g.prng.Read(p)
}

// chachaGenerator is counter based: block i of the keystream depends only on
// the key and i.
type chachaGenerator struct {
	cipher *chacha20.Cipher
}

func (g *chachaGenerator) Seed(seed uint64) error {
	key := blake2b.Sum256(seedBytes(seed))
	nonce := make([]byte, chacha20.NonceSize)
	cipher, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		return fmt.Errorf("prng: keying chacha20: %w", err)
	}
	g.cipher = cipher
	return nil
}

func (g *chachaGenerator) Read(p []byte) (int, error) {
	if g.cipher == nil {
		return 0, ErrGeneratorNotSeeded
	}
	clear(p)
	g.cipher.XORKeyStream(p, p)
	return len(p), nil
}
