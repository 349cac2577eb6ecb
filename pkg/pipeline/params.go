package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// MaxModulusBits is the largest word-sized modulus the ring accepts.
const MaxModulusBits = 61

// Common errors that may be returned
var (
	ErrInvalidParameters    = errors.New("pipeline: invalid parameters")
	ErrParameterSetNotFound = errors.New("pipeline: parameter set not found")
	ErrTooManyValues        = errors.New("pipeline: more values than slots")
	ErrLevelMismatch        = errors.New("pipeline: operands have different levels")
)

// ParametersLiteral is the user-facing description of a parameter set.
type ParametersLiteral struct {
	Name string
	// LogN is log2 of the ring dimension
	LogN int
	// LogQ lists the bit sizes of the first modulus followed by the scaling moduli
	LogQ []int
	// LogScale is log2 of the encoding scale
	LogScale int
	// Sigma is the standard deviation of the error distribution
	Sigma float64
	// BatchSize is the number of values a plaintext carries
	BatchSize int
}

// Parameters is a validated parameter set with its modulus chain resolved.
type Parameters struct {
	Name      string
	LogN      int
	Moduli    []uint64
	LogScale  int
	Sigma     float64
	BatchSize int

	ring *ring.Ring
}

// NewParametersFromLiteral generates the modulus chain for lit and builds
// the ring.
func NewParametersFromLiteral(lit ParametersLiteral) (Parameters, error) {
	if lit.LogN < 1 || lit.LogN > 16 {
		return Parameters{}, fmt.Errorf("%w: LogN=%d", ErrInvalidParameters, lit.LogN)
	}
	if len(lit.LogQ) == 0 {
		return Parameters{}, fmt.Errorf("%w: empty modulus chain", ErrInvalidParameters)
	}

	moduli, err := GenerateModuli(lit.LogN, lit.LogQ)
	if err != nil {
		return Parameters{}, err
	}

	p := Parameters{
		Name:      lit.Name,
		LogN:      lit.LogN,
		Moduli:    moduli,
		LogScale:  lit.LogScale,
		Sigma:     lit.Sigma,
		BatchSize: lit.BatchSize,
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// N returns the ring dimension.
func (p Parameters) N() int {
	return 1 << p.LogN
}

// MaxLevel is the index of the last modulus; a fresh ciphertext has
// MaxLevel+1 limbs per element.
func (p Parameters) MaxLevel() int {
	return len(p.Moduli) - 1
}

// Scale returns the encoding scale 2^LogScale.
func (p Parameters) Scale() float64 {
	return math.Exp2(float64(p.LogScale))
}

// Ring returns the polynomial ring over the full modulus chain.
func (p Parameters) Ring() *ring.Ring {
	return p.ring
}

// ErrorDistribution is the bounded discrete Gaussian used for fresh noise.
func (p Parameters) ErrorDistribution() ring.DiscreteGaussian {
	return ring.DiscreteGaussian{Sigma: p.Sigma, Bound: 6 * p.Sigma}
}

// Validate checks the parameters and builds the ring if needed.
func (p *Parameters) Validate() error {
	n := p.N()

	if p.BatchSize <= 0 || p.BatchSize > n {
		return fmt.Errorf("%w: batch size %d outside 1..%d", ErrInvalidParameters, p.BatchSize, n)
	}
	if p.Sigma <= 0 {
		return fmt.Errorf("%w: sigma must be positive", ErrInvalidParameters)
	}
	if len(p.Moduli) == 0 {
		return fmt.Errorf("%w: empty modulus chain", ErrInvalidParameters)
	}
	// the scaled message must fit in the centred range of the first modulus
	if p.LogScale < 1 || p.LogScale >= bitLen(p.Moduli[0]) {
		return fmt.Errorf("%w: scale 2^%d does not fit the first modulus", ErrInvalidParameters, p.LogScale)
	}

	if p.ring == nil {
		r, err := ring.NewRing(n, p.Moduli)
		if err != nil {
			return fmt.Errorf("%w: creating ring: %v", ErrInvalidParameters, err)
		}
		p.ring = r
	}
	return nil
}

func bitLen(q uint64) int {
	bits := 0
	for ; q > 0; q >>= 1 {
		bits++
	}
	return bits
}

// ParameterRegistry manages parameter sets
type ParameterRegistry struct {
	mu         sync.RWMutex
	paramSets  map[string]Parameters
	defaultSet string
}

var globalRegistry = &ParameterRegistry{
	paramSets: make(map[string]Parameters),
}

// DefaultLiteral matches the reference CKKS context: ring dimension 16,
// depth 3, a 60-bit first modulus, 59-bit scaling moduli, batch size 4.
var DefaultLiteral = ParametersLiteral{
	Name:      "Toy-N16-D3",
	LogN:      4,
	LogQ:      []int{60, 59, 59, 59},
	LogScale:  59,
	Sigma:     3.2,
	BatchSize: 4,
}

// Initialize the registry with the built-in parameter sets
func init() {
	literals := []ParametersLiteral{
		DefaultLiteral,
		{
			Name:      "Toy-N32-D2",
			LogN:      5,
			LogQ:      []int{55, 45, 45},
			LogScale:  45,
			Sigma:     3.2,
			BatchSize: 8,
		},
	}
	for _, lit := range literals {
		params, err := NewParametersFromLiteral(lit)
		if err != nil {
			panic(fmt.Sprintf("pipeline: built-in parameter set %s: %v", lit.Name, err))
		}
		RegisterParameterSet(params)
	}

	if err := SetDefaultParameterSet(DefaultLiteral.Name); err != nil {
		panic(err)
	}
}

// RegisterParameterSet adds a parameter set to the registry
func RegisterParameterSet(params Parameters) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.paramSets[params.Name] = params
}

// GetParameterSet retrieves a parameter set by name
func GetParameterSet(name string) (Parameters, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	params, ok := globalRegistry.paramSets[name]
	if !ok {
		return Parameters{}, fmt.Errorf("%w: %s", ErrParameterSetNotFound, name)
	}

	return params, nil
}

// GetDefaultParameterSet returns the default parameter set
func GetDefaultParameterSet() Parameters {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	return globalRegistry.paramSets[globalRegistry.defaultSet]
}

// SetDefaultParameterSet sets the default parameter set
func SetDefaultParameterSet(name string) error {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if _, ok := globalRegistry.paramSets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrParameterSetNotFound, name)
	}

	globalRegistry.defaultSet = name
	return nil
}

// ListParameterSets returns the sorted names of all registered parameter sets
func ListParameterSets() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.paramSets))
	for name := range globalRegistry.paramSets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
