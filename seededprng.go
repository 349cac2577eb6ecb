// Package seededprng exposes the process-wide reseedable PRNG, the
// encryption pipeline that consumes it and the sampling verifier that checks
// reproducibility between artifacts.
package seededprng

import (
	"github.com/MingLLuo/seeded-prng/pkg/pipeline"
	"github.com/MingLLuo/seeded-prng/pkg/prng"
	"github.com/MingLLuo/seeded-prng/pkg/verify"
)

type (
	Service    = prng.Service
	Algorithm  = prng.Algorithm
	Artifact   = verify.Artifact
	Parameters = pipeline.Parameters
	Context    = pipeline.Context
	Ciphertext = pipeline.Ciphertext
)

var (
	ErrUnseededState = prng.ErrUnseededState
	ErrShapeMismatch = verify.ErrShapeMismatch
)

// GetInstance returns the shared PRNG service
func GetInstance() *Service {
	return prng.GetInstance()
}

// SetSeed reseeds the shared PRNG service
func SetSeed(seed uint64) {
	prng.GetInstance().SetSeed(seed)
}

// ResetToSeed rewinds the shared PRNG service to the start of its current seed
func ResetToSeed() error {
	return prng.GetInstance().ResetToSeed()
}

// NextWord draws one word from the shared PRNG service
func NextWord() uint64 {
	return prng.GetInstance().NextWord()
}

// NewContext generates keys for params from the shared PRNG service
func NewContext(params Parameters) (*Context, error) {
	return pipeline.NewContext(params, prng.GetInstance())
}

// DefaultParameters returns the default pipeline parameter set
func DefaultParameters() Parameters {
	return pipeline.GetDefaultParameterSet()
}

// ProbablyEqual compares two artifacts at sampleCount random positions
func ProbablyEqual(a, b Artifact, sampleCount uint32) (bool, error) {
	return verify.ProbablyEqual(a, b, sampleCount)
}
