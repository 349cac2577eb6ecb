package pipeline

import (
	"github.com/tuneinsight/lattigo/v6/ring"
	"github.com/tuneinsight/lattigo/v6/utils/structs"
)

// Ciphertext is a degree-one RLWE ciphertext. Each element keeps one limb
// per RNS modulus, so it can be handed to the verifier as is.
type Ciphertext struct {
	Value []ring.Poly
}

// NewCiphertext allocates a zero ciphertext at the top level.
func NewCiphertext(params Parameters) *Ciphertext {
	r := params.Ring()
	return &Ciphertext{Value: []ring.Poly{r.NewPoly(), r.NewPoly()}}
}

// Name implements verify.Artifact.
func (ct *Ciphertext) Name() string {
	return "ciphertext"
}

// Elements implements verify.Artifact.
func (ct *Ciphertext) Elements() []structs.Matrix[uint64] {
	elems := make([]structs.Matrix[uint64], len(ct.Value))
	for i := range ct.Value {
		elems[i] = ct.Value[i].Coeffs
	}
	return elems
}

// Level is the index of the last limb.
func (ct *Ciphertext) Level() int {
	if len(ct.Value) == 0 {
		return -1
	}
	return len(ct.Value[0].Coeffs) - 1
}
