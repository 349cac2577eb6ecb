// Package prng provides the process-wide, reseedable random source used by
// the encryption pipeline.
//
// The output of a Service is a pure function of the last seed and of the
// number of bytes drawn since the last SetSeed or ResetToSeed call. Before
// the first SetSeed the service is keyed from system entropy: it can be drawn
// from, but its output cannot be reproduced.
package prng

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Common errors that may be returned
var (
	ErrUnseededState      = errors.New("prng: reset requested before any seed was set")
	ErrUnknownAlgorithm   = errors.New("prng: unknown algorithm")
	ErrAlreadyInitialised = errors.New("prng: shared instance already initialised")
	ErrGeneratorNotSeeded = errors.New("prng: generator used before seeding")
	ErrEntropyUnavailable = errors.New("prng: system entropy unavailable")
	ErrGeneratorExhausted = errors.New("prng: generator failed to produce output")
)

// Service is a mutex-guarded Generator with seed bookkeeping. Every
// operation is serialised, so a single draw never spans two epochs.
type Service struct {
	mu     sync.Mutex
	alg    Algorithm
	gen    Generator
	seed   uint64
	seeded bool
	drawn  uint64
}

// New returns a private service. Production code should go through
// GetInstance; private instances exist so tests do not share state.
func New(alg Algorithm) (*Service, error) {
	gen, err := NewGenerator(alg)
	if err != nil {
		return nil, err
	}
	entropy, err := entropySeed()
	if err != nil {
		return nil, err
	}
	if err := gen.Seed(entropy); err != nil {
		return nil, err
	}
	return &Service{alg: alg, gen: gen}, nil
}

// SetSeed restarts the stream from seed and records it as the current seed.
// Nothing drawn before the call is kept.
func (s *Service) SetSeed(seed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reseed(seed)
	s.seed = seed
	s.seeded = true
}

// ResetToSeed restarts the stream from the current seed. It fails with
// ErrUnseededState, leaving the service untouched, when SetSeed was never
// called.
func (s *Service) ResetToSeed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		return ErrUnseededState
	}
	s.reseed(s.seed)
	return nil
}

// NextWord returns the next 8 bytes of the stream as a little-endian word.
func (s *Service) NextWord() uint64 {
	var buf [8]byte
	if _, err := s.Read(buf[:]); err != nil {
		panic(fmt.Errorf("%w: %v", ErrGeneratorExhausted, err))
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Read fills p from the stream. It makes the service a lattigo
// sampling.PRNG, so ring samplers draw from it directly.
func (s *Service) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := io.ReadFull(s.gen, p)
	s.drawn += uint64(n)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrGeneratorExhausted, err)
	}
	return n, nil
}

// Seed returns the current seed and whether one was ever set.
func (s *Service) Seed() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed, s.seeded
}

// Draws returns the number of bytes drawn in the current epoch.
func (s *Service) Draws() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawn
}

// Algorithm returns the generator algorithm backing the service.
func (s *Service) Algorithm() Algorithm {
	return s.alg
}

// reseed must be called with s.mu held.
func (s *Service) reseed(seed uint64) {
	// Seed only fails on a bad key length, which an 8-byte seed never hits.
	if err := s.gen.Seed(seed); err != nil {
		panic(err)
	}
	s.drawn = 0
}

func entropySeed() (uint64, error) {
	var b [8]byte
	if _, err := cryptoRand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
