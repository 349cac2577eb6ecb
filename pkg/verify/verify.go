// Package verify decides whether two artifacts were derived from the same
// randomness by comparing coefficients at randomly sampled positions.
//
// The verdict is one-sided. A false result is a certificate of inequality.
// A true result is evidence only: if a fraction f of the positions match,
// a false "equal" verdict happens with probability about f^samples (see
// FalsePositiveBound).
package verify

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/tuneinsight/lattigo/v6/utils/structs"
	"golang.org/x/exp/rand"
)

// Common errors that may be returned
var (
	ErrShapeMismatch      = errors.New("verify: artifacts have incompatible shapes")
	ErrInvalidSampleCount = errors.New("verify: sample count must be positive")
)

// Artifact is a read-only view of an element -> limb -> coefficient value.
// An artifact must not change once handed to the verifier.
type Artifact interface {
	Name() string
	Elements() []structs.Matrix[uint64]
}

// Limbs is an in-memory Artifact.
type Limbs struct {
	Label string
	Data  []structs.Matrix[uint64]
}

func (l Limbs) Name() string { return l.Label }
func (l Limbs) Elements() []structs.Matrix[uint64] { return l.Data }

// SeedFunc supplies the seed of the sampling source for one comparison.
type SeedFunc func() (uint64, error)

// Verifier samples probe positions from a source of its own, never from the
// generator under test.
type Verifier struct {
	seed SeedFunc
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithSeed replaces the entropy-seeded sampling source, mostly to make tests
// repeatable.
func WithSeed(seed SeedFunc) Option {
	return func(v *Verifier) {
		v.seed = seed
	}
}

// NewVerifier returns a Verifier that seeds every comparison from crypto/rand.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{seed: entropySeed}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultVerifier = NewVerifier()

// ProbablyEqual compares a and b at sampleCount positions using the default
// Verifier.
func ProbablyEqual(a, b Artifact, sampleCount uint32) (bool, error) {
	return defaultVerifier.ProbablyEqual(a, b, sampleCount)
}

// ProbablyEqual draws sampleCount (limb, coefficient) positions from the
// first element of a and b and reports whether all of them match. If a has
// no limbs the result is false. Otherwise shapes that cannot be compared
// yield ErrShapeMismatch rather than a comparison of the common part.
func (v *Verifier) ProbablyEqual(a, b Artifact, sampleCount uint32) (bool, error) {
	if sampleCount == 0 {
		return false, ErrInvalidSampleCount
	}

	limbsA, limbsB := firstElement(a), firstElement(b)
	if len(limbsA) == 0 {
		return false, nil
	}
	if len(limbsA) != len(limbsB) {
		return false, fmt.Errorf("%w: %s has %d limbs, %s has %d",
			ErrShapeMismatch, a.Name(), len(limbsA), b.Name(), len(limbsB))
	}

	ringDimension := len(limbsA[0])
	if ringDimension != len(limbsB[0]) {
		return false, fmt.Errorf("%w: ring dimension %d against %d",
			ErrShapeMismatch, ringDimension, len(limbsB[0]))
	}
	if ringDimension == 0 {
		return false, nil
	}

	seed, err := v.seed()
	if err != nil {
		return false, fmt.Errorf("verify: seeding sampler: %w", err)
	}
	rng := rand.New(rand.NewSource(seed))

	for i := uint32(0); i < sampleCount; i++ {
		limb := rng.Intn(len(limbsA))
		coeff := rng.Intn(ringDimension)

		if coeff >= len(limbsA[limb]) || coeff >= len(limbsB[limb]) {
			return false, fmt.Errorf("%w: limb %d shorter than ring dimension %d",
				ErrShapeMismatch, limb, ringDimension)
		}
		if limbsA[limb][coeff] != limbsB[limb][coeff] {
			return false, nil
		}
	}
	return true, nil
}

// Equal compares every coefficient of every element, in order, and returns
// false at the first difference. Shapes are checked as the scan reaches them,
// so a shape mismatch after the first differing coefficient is not reported.
// An a without limbs is never equal, as in ProbablyEqual.
func Equal(a, b Artifact) (bool, error) {
	elemsA, elemsB := a.Elements(), b.Elements()
	if len(elemsA) != len(elemsB) {
		return false, fmt.Errorf("%w: %d elements against %d", ErrShapeMismatch, len(elemsA), len(elemsB))
	}
	if len(firstElement(a)) == 0 {
		return false, nil
	}

	for e := range elemsA {
		if len(elemsA[e]) != len(elemsB[e]) {
			return false, fmt.Errorf("%w: element %d has %d limbs against %d",
				ErrShapeMismatch, e, len(elemsA[e]), len(elemsB[e]))
		}
		for l := range elemsA[e] {
			limbA, limbB := elemsA[e][l], elemsB[e][l]
			if len(limbA) != len(limbB) {
				return false, fmt.Errorf("%w: element %d limb %d has %d coefficients against %d",
					ErrShapeMismatch, e, l, len(limbA), len(limbB))
			}
			for c := range limbA {
				if limbA[c] != limbB[c] {
					return false, nil
				}
			}
		}
	}
	return true, nil
}

// FalsePositiveBound is the probability that sampleCount independent probes
// all land on matching positions when only matchingFraction of them match.
func FalsePositiveBound(matchingFraction float64, sampleCount uint32) float64 {
	f := math.Max(0, math.Min(1, matchingFraction))
	return math.Pow(f, float64(sampleCount))
}

func firstElement(a Artifact) structs.Matrix[uint64] {
	elems := a.Elements()
	if len(elems) == 0 {
		return nil
	}
	return elems[0]
}

func entropySeed() (uint64, error) {
	var b [8]byte
	if _, err := cryptoRand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
