package pipeline

import (
	"fmt"
	"math/big"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// Plaintext is an encoded message in the coefficient domain.
type Plaintext struct {
	Value ring.Poly
}

// Encoder maps real values onto polynomial coefficients scaled by 2^LogScale.
// Value i goes to coefficient i; coefficients past the batch stay zero.
type Encoder struct {
	params Parameters
}

func NewEncoder(params Parameters) *Encoder {
	return &Encoder{params: params}
}

// Encode scales and rounds values and reduces them modulo every limb.
func (ecd *Encoder) Encode(values []float64) (*Plaintext, error) {
	if len(values) > ecd.params.BatchSize {
		return nil, fmt.Errorf("%w: %d values, batch size %d", ErrTooManyValues, len(values), ecd.params.BatchSize)
	}

	r := ecd.params.Ring()
	pt := &Plaintext{Value: r.NewPoly()}
	scale := new(big.Float).SetFloat64(ecd.params.Scale())

	for i, v := range values {
		scaled := new(big.Float).SetFloat64(v)
		scaled.Mul(scaled, scale)
		coeff := roundBigFloat(scaled)

		for level, q := range ecd.params.Moduli {
			residue := new(big.Int).Mod(coeff, new(big.Int).SetUint64(q))
			pt.Value.Coeffs[level][i] = residue.Uint64()
		}
	}
	return pt, nil
}

// Decode reconstructs each coefficient over the whole modulus chain, centres
// it and divides by the scale.
func (ecd *Encoder) Decode(pt *Plaintext) []float64 {
	r := ecd.params.Ring()
	n := ecd.params.N()

	coeffs := make([]*big.Int, n)
	for i := range coeffs {
		coeffs[i] = new(big.Int)
	}
	r.PolyToBigint(pt.Value, 1, coeffs)

	modulus := r.Modulus()
	half := new(big.Int).Rsh(modulus, 1)
	scale := new(big.Float).SetFloat64(ecd.params.Scale())

	values := make([]float64, ecd.params.BatchSize)
	for i := range values {
		c := coeffs[i]
		if c.Cmp(half) > 0 {
			c.Sub(c, modulus)
		}
		f := new(big.Float).SetInt(c)
		values[i], _ = f.Quo(f, scale).Float64()
	}
	return values
}

// roundBigFloat rounds half away from zero.
func roundBigFloat(f *big.Float) *big.Int {
	half := big.NewFloat(0.5)
	if f.Sign() < 0 {
		half.Neg(half)
	}
	rounded, _ := new(big.Float).Add(f, half).Int(nil)
	return rounded
}
