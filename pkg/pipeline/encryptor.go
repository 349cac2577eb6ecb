package pipeline

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/ring"
	"github.com/tuneinsight/lattigo/v6/utils/sampling"
)

// Encryptor encrypts plaintexts under a public key with randomness read
// from prng.
//
// Samplers are created per call: lattigo samplers buffer bytes read ahead
// from the PRNG, and a buffer surviving a reseed would make the next
// ciphertext depend on the previous epoch.
type Encryptor struct {
	params Parameters
	pk     *PublicKey
	prng   sampling.PRNG
}

func NewEncryptor(params Parameters, pk *PublicKey, prng sampling.PRNG) *Encryptor {
	return &Encryptor{params: params, pk: pk, prng: prng}
}

// Encrypt returns (pk0*u + e0 + m, pk1*u + e1).
func (enc *Encryptor) Encrypt(pt *Plaintext) (*Ciphertext, error) {
	r := enc.params.Ring()

	ternary, err := ring.NewSampler(enc.prng, r, ring.Ternary{P: 1 / 3.0}, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create ternary sampler: %w", err)
	}
	gaussian, err := ring.NewSampler(enc.prng, r, enc.params.ErrorDistribution(), false)
	if err != nil {
		return nil, fmt.Errorf("failed to create gaussian sampler: %w", err)
	}

	u := ternary.ReadNew()
	errs := InitPolyVecWithSampler(2, gaussian)

	ct := NewCiphertext(enc.params)
	for i := range ct.Value {
		mulPoly(r, enc.pk.Value[i], u, ct.Value[i])
		r.Add(ct.Value[i], errs[i], ct.Value[i])
	}
	r.Add(ct.Value[0], pt.Value, ct.Value[0])

	return ct, nil
}

// Decryptor recovers plaintexts with the secret key.
type Decryptor struct {
	params Parameters
	sk     *SecretKey
}

func NewDecryptor(params Parameters, sk *SecretKey) *Decryptor {
	return &Decryptor{params: params, sk: sk}
}

// Decrypt returns c0 + c1*s, the message plus a small error.
func (dec *Decryptor) Decrypt(ct *Ciphertext) (*Plaintext, error) {
	if len(ct.Value) != 2 {
		return nil, fmt.Errorf("%w: ciphertext of degree %d", ErrInvalidParameters, len(ct.Value)-1)
	}
	if ct.Level() != dec.params.MaxLevel() {
		return nil, ErrLevelMismatch
	}

	r := dec.params.Ring()
	pt := &Plaintext{Value: r.NewPoly()}
	mulPoly(r, ct.Value[1], dec.sk.Value, pt.Value)
	r.Add(pt.Value, ct.Value[0], pt.Value)
	return pt, nil
}
