package pipeline

import (
	"fmt"
	"math/big"
)

// NTTFriendlyPrimesGenerator walks down from 2^BitSize and yields primes of
// the form 2^{BitSize} - k * {NthRoot} + 1, so that every prime supports a
// negacyclic NTT of size NthRoot/2.
type NTTFriendlyPrimesGenerator struct {
	BitSize   int
	NthRoot   *big.Int
	prevPrime *big.Int
	exhausted bool
}

// NewNTTFriendlyPrimesGenerator creates a generator for bitSize-bit primes
// congruent to 1 modulo nthRoot.
func NewNTTFriendlyPrimesGenerator(bitSize int, nthRoot uint64) *NTTFriendlyPrimesGenerator {
	one := big.NewInt(1)
	root := new(big.Int).SetUint64(nthRoot)

	// First candidate is 2^BitSize - NthRoot + 1
	prevPrime := new(big.Int).Lsh(one, uint(bitSize))
	prevPrime.Sub(prevPrime, root)
	prevPrime.Add(prevPrime, one)

	return &NTTFriendlyPrimesGenerator{
		BitSize:   bitSize,
		NthRoot:   root,
		prevPrime: prevPrime,
		exhausted: prevPrime.Sign() <= 0,
	}
}

// NextDownstreamPrime returns the next prime below the previous one.
func (n *NTTFriendlyPrimesGenerator) NextDownstreamPrime() (uint64, error) {
	if n.exhausted {
		return 0, fmt.Errorf("%w: no %d-bit primes left", ErrInvalidParameters, n.BitSize)
	}

	// Stay within BitSize bits
	lowerBound := new(big.Int).Lsh(big.NewInt(1), uint(n.BitSize-1))

	for n.prevPrime.Cmp(lowerBound) >= 0 {
		candidate := new(big.Int).Set(n.prevPrime)
		n.prevPrime.Sub(n.prevPrime, n.NthRoot)

		if candidate.ProbablyPrime(20) {
			return candidate.Uint64(), nil
		}
	}

	n.exhausted = true
	return 0, fmt.Errorf("%w: no %d-bit primes left", ErrInvalidParameters, n.BitSize)
}

// GenerateModuli returns one NTT-friendly prime per entry of logQ for a ring
// of degree 2^logN. Entries with equal bit size get distinct primes.
func GenerateModuli(logN int, logQ []int) ([]uint64, error) {
	nthRoot := uint64(2) << logN
	generators := make(map[int]*NTTFriendlyPrimesGenerator)

	moduli := make([]uint64, len(logQ))
	for i, bits := range logQ {
		if bits < 2 || bits > MaxModulusBits {
			return nil, fmt.Errorf("%w: modulus %d has %d bits, want 2..%d", ErrInvalidParameters, i, bits, MaxModulusBits)
		}
		gen, ok := generators[bits]
		if !ok {
			gen = NewNTTFriendlyPrimesGenerator(bits, nthRoot)
			generators[bits] = gen
		}
		q, err := gen.NextDownstreamPrime()
		if err != nil {
			return nil, err
		}
		moduli[i] = q
	}
	return moduli, nil
}
