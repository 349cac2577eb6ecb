package verify

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v6/utils/structs"
)

func fixedSeed(seed uint64) Option {
	return WithSeed(func() (uint64, error) { return seed, nil })
}

// artifact builds a one-element artifact whose coefficients are all non-zero.
func artifact(name string, limbs, n int) Limbs {
	m := structs.Matrix[uint64](make([][]uint64, limbs))
	for i := range m {
		m[i] = make([]uint64, n)
		for j := range m[i] {
			m[i][j] = uint64(i*n+j) + 1
		}
	}
	return Limbs{Label: name, Data: []structs.Matrix[uint64]{m}}
}

func clone(a Limbs, name string) Limbs {
	out := Limbs{Label: name, Data: make([]structs.Matrix[uint64], len(a.Data))}
	for e, elem := range a.Data {
		out.Data[e] = make([][]uint64, len(elem))
		for l := range elem {
			out.Data[e][l] = append([]uint64(nil), elem[l]...)
		}
	}
	return out
}

func TestProbablyEqualIdentical(t *testing.T) {
	a := artifact("a", 4, 16)
	b := clone(a, "b")
	eq, err := NewVerifier(fixedSeed(1)).ProbablyEqual(a, b, 20)
	require.NoError(t, err)
	require.True(t, eq)
}

func TestProbablyEqualZeroPatched(t *testing.T) {
	a := artifact("a", 4, 16)
	zero := clone(a, "zero")
	for _, limb := range zero.Data[0] {
		clear(limb)
	}

	for seed := uint64(0); seed < 32; seed++ {
		eq, err := NewVerifier(fixedSeed(seed)).ProbablyEqual(a, zero, 1)
		require.NoError(t, err)
		require.False(t, eq, "seed %d", seed)
	}
}

func TestProbablyEqualSingleInjectedDifference(t *testing.T) {
	a := artifact("a", 2, 8)
	b := clone(a, "b")
	b.Data[0][1][5]++

	// 16 positions; missing one of them in 4096 probes is out of reach.
	eq, err := NewVerifier(fixedSeed(99)).ProbablyEqual(a, b, 4096)
	require.NoError(t, err)
	require.False(t, eq)

	exact, err := Equal(a, b)
	require.NoError(t, err)
	require.False(t, exact)
}

func TestProbablyEqualEmpty(t *testing.T) {
	empty := Limbs{Label: "empty", Data: []structs.Matrix[uint64]{{}}}
	eq, err := ProbablyEqual(empty, empty, 20)
	require.NoError(t, err)
	require.False(t, eq)

	none := Limbs{Label: "none"}
	eq, err = ProbablyEqual(none, empty, 20)
	require.NoError(t, err)
	require.False(t, eq)

	eq, err = Equal(empty, empty)
	require.NoError(t, err)
	require.False(t, eq)

	// an empty first artifact is never equal, whatever the second holds
	full := artifact("full", 2, 8)
	eq, err = ProbablyEqual(none, full, 20)
	require.NoError(t, err)
	require.False(t, eq)
	eq, err = ProbablyEqual(empty, full, 20)
	require.NoError(t, err)
	require.False(t, eq)
}

func TestProbablyEqualShapeMismatch(t *testing.T) {
	v := NewVerifier(fixedSeed(2))

	_, err := v.ProbablyEqual(artifact("a", 4, 16), artifact("b", 3, 16), 20)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = v.ProbablyEqual(artifact("a", 4, 16), artifact("b", 4, 32), 20)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = v.ProbablyEqual(artifact("a", 1, 16), Limbs{Label: "none"}, 20)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = Equal(artifact("a", 2, 8), artifact("b", 2, 4))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestProbablyEqualRaggedLimb(t *testing.T) {
	a := artifact("a", 2, 8)
	b := clone(a, "b")
	b.Data[0][1] = b.Data[0][1][:1]

	_, err := NewVerifier(fixedSeed(4)).ProbablyEqual(a, b, 4096)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestProbablyEqualSampleCount(t *testing.T) {
	a := artifact("a", 1, 4)
	_, err := ProbablyEqual(a, a, 0)
	require.ErrorIs(t, err, ErrInvalidSampleCount)
}

func TestVerifierSeedIsRepeatable(t *testing.T) {
	a := artifact("a", 4, 16)
	b := clone(a, "b")
	// half of the positions differ
	for l := range b.Data[0] {
		for c := 0; c < 16; c += 2 {
			b.Data[0][l][c] = 0
		}
	}

	first, err := NewVerifier(fixedSeed(17)).ProbablyEqual(a, b, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := NewVerifier(fixedSeed(17)).ProbablyEqual(a, b, 3)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestEqualComparesEveryElement(t *testing.T) {
	a := artifact("a", 2, 8)
	a.Data = append(a.Data, artifact("a1", 2, 8).Data[0])
	b := clone(a, "b")

	eq, err := Equal(a, b)
	require.NoError(t, err)
	require.True(t, eq)

	// the sampled check only looks at the first element
	b.Data[1][0][0] = 0
	eq, err = Equal(a, b)
	require.NoError(t, err)
	require.False(t, eq)
	eq, err = NewVerifier(fixedSeed(5)).ProbablyEqual(a, b, 64)
	require.NoError(t, err)
	require.True(t, eq)
}

func TestEqualStopsAtFirstDifference(t *testing.T) {
	a := artifact("a", 2, 8)
	a.Data = append(a.Data, artifact("a1", 2, 8).Data[0])
	b := clone(a, "b")
	b.Data[0][0][0] = 0
	// shape of the second element no longer matters
	b.Data[1] = b.Data[1][:1]

	eq, err := Equal(a, b)
	require.NoError(t, err)
	require.False(t, eq)

	b.Data[0][0][0] = a.Data[0][0][0]
	_, err = Equal(a, b)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestProbablyEqualConcurrent(t *testing.T) {
	a := artifact("a", 4, 16)
	b := clone(a, "b")
	c := clone(a, "c")
	c.Data[0][2][7] = 0

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eq, err := ProbablyEqual(a, b, 50)
			if err != nil || !eq {
				errs <- fmt.Errorf("identical artifacts: eq=%v err=%v", eq, err)
			}
			eq, err = Equal(a, c)
			if err != nil || eq {
				errs <- fmt.Errorf("patched artifact: eq=%v err=%v", eq, err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestFalsePositiveBound(t *testing.T) {
	require.Equal(t, 1.0, FalsePositiveBound(1, 20))
	require.Equal(t, 0.0, FalsePositiveBound(0, 20))
	require.InDelta(t, 0.5*0.5*0.5, FalsePositiveBound(0.5, 3), 1e-12)
	require.Equal(t, 1.0, FalsePositiveBound(1.5, 20))
	require.Less(t, FalsePositiveBound(0.9, 200), FalsePositiveBound(0.9, 20))
}
