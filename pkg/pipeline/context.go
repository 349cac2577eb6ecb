package pipeline

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v6/utils/sampling"
)

// Context bundles a key pair with the encoder, encryptor and decryptor of a
// parameter set. All randomness, key generation included, comes from prng.
type Context struct {
	Params    Parameters
	Encoder   *Encoder
	Encryptor *Encryptor
	Decryptor *Decryptor
}

// NewContext generates a key pair from prng and wires the rest around it.
func NewContext(params Parameters, prng sampling.PRNG) (*Context, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sk, pk, err := NewKeyGenerator(params, prng).GenKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}

	return &Context{
		Params:    params,
		Encoder:   NewEncoder(params),
		Encryptor: NewEncryptor(params, pk, prng),
		Decryptor: NewDecryptor(params, sk),
	}, nil
}

// EncryptValues encodes then encrypts values.
func (c *Context) EncryptValues(values []float64) (*Ciphertext, error) {
	pt, err := c.Encoder.Encode(values)
	if err != nil {
		return nil, err
	}
	return c.Encryptor.Encrypt(pt)
}

// DecryptValues decrypts then decodes ct.
func (c *Context) DecryptValues(ct *Ciphertext) ([]float64, error) {
	pt, err := c.Decryptor.Decrypt(ct)
	if err != nil {
		return nil, err
	}
	return c.Encoder.Decode(pt), nil
}
