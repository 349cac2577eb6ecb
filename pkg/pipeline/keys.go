package pipeline

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/ring"
	"github.com/tuneinsight/lattigo/v6/utils/sampling"
)

// SecretKey is a ternary polynomial s.
type SecretKey struct {
	Value ring.Poly
}

// PublicKey is the RLWE pair (-a*s + e, a).
type PublicKey struct {
	Value [2]ring.Poly
}

// KeyGenerator draws key material from prng.
type KeyGenerator struct {
	params Parameters
	prng   sampling.PRNG
}

func NewKeyGenerator(params Parameters, prng sampling.PRNG) *KeyGenerator {
	return &KeyGenerator{params: params, prng: prng}
}

// GenKeyPair samples s, a and e and returns the matching key pair.
func (kg *KeyGenerator) GenKeyPair() (*SecretKey, *PublicKey, error) {
	r := kg.params.Ring()

	ternary, err := ring.NewSampler(kg.prng, r, ring.Ternary{P: 1 / 3.0}, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create ternary sampler: %w", err)
	}
	uniform := ring.NewUniformSampler(kg.prng, r)
	gaussian := ring.NewGaussianSampler(kg.prng, r, kg.params.ErrorDistribution(), false)

	s := ternary.ReadNew()
	a := uniform.ReadNew()
	e := gaussian.ReadNew()

	// pk0 = -a*s + e
	pk0 := r.NewPoly()
	mulPoly(r, a, s, pk0)
	r.Neg(pk0, pk0)
	r.Add(pk0, e, pk0)

	return &SecretKey{Value: s}, &PublicKey{Value: [2]ring.Poly{pk0, a}}, nil
}

// mulPoly sets out to the negacyclic product a*b; a and b stay in the
// coefficient domain.
func mulPoly(r *ring.Ring, a, b, out ring.Poly) {
	aNTT, bNTT := r.NewPoly(), r.NewPoly()
	r.NTT(a, aNTT)
	r.NTT(b, bNTT)
	r.MulCoeffsBarrett(aNTT, bNTT, out)
	r.INTT(out, out)
}

// InitPolyVecWithSampler reads n fresh polynomials from sampler.
func InitPolyVecWithSampler(n int, sampler ring.Sampler) []ring.Poly {
	polyVec := make([]ring.Poly, n)
	for i := 0; i < n; i++ {
		polyVec[i] = sampler.ReadNew()
	}
	return polyVec
}
