package prngcheck

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v6/utils/structs"

	"github.com/MingLLuo/seeded-prng/pkg/prng"
	"github.com/MingLLuo/seeded-prng/pkg/verify"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("prngcheck", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), cfg.Seed)
	require.Equal(t, uint(20), cfg.Samples)
	require.Equal(t, "Toy-N16-D3", cfg.Params)
	require.Equal(t, "blake2b", cfg.Algorithm)
	require.False(t, cfg.Exhaustive)
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("PRNGCHECK_SAMPLES", "64")
	fs := flag.NewFlagSet("prngcheck", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-seed", "7", "-exhaustive"})
	require.NoError(t, err)
	require.Equal(t, uint64(7), cfg.Seed)
	require.Equal(t, uint(64), cfg.Samples)
	require.True(t, cfg.Exhaustive)
}

func TestParseConfigRejectsZeroSamples(t *testing.T) {
	fs := flag.NewFlagSet("prngcheck", flag.ContinueOnError)
	_, err := ParseConfig(fs, []string{"-samples", "0"})
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	var out, errOut bytes.Buffer
	cfg := Config{Seed: 1, Samples: 20, Params: "Toy-N16-D3", Algorithm: "blake2b", Verbose: true, Exhaustive: true}

	require.NoError(t, Run(context.Background(), cfg, &out, &errOut))
	require.Equal(t, 6, strings.Count(out.String(), ": PASS"), out.String())
	require.Contains(t, out.String(), "ALL TESTS PASSED")
	require.Contains(t, errOut.String(), "prngcheck: run ")
}

func TestRunUnknownParameterSet(t *testing.T) {
	cfg := Config{Seed: 1, Samples: 20, Params: "missing", Algorithm: "blake2b"}
	require.Error(t, Run(context.Background(), cfg, nil, nil))
}

// constant produces the same artifact regardless of the stream.
func constant() ProduceFunc {
	artifact := verify.Limbs{Label: "constant", Data: []structs.Matrix[uint64]{{{1, 2, 3, 4}, {5, 6, 7, 8}}}}
	return func() (verify.Artifact, error) { return artifact, nil }
}

func TestRunChecksFlagsStaticArtifact(t *testing.T) {
	svc, err := prng.New(prng.AlgorithmBlake2b)
	require.NoError(t, err)

	report, err := RunChecks(context.Background(), svc, constant(), Options{Seed: 1, Samples: 20})
	require.NoError(t, err)
	require.False(t, report.Passed())

	passed := make([]bool, len(report.Checks))
	for i, c := range report.Checks {
		passed[i] = c.Passed
	}
	require.Equal(t, []bool{true, false, true, false, true, true}, passed)

	var out bytes.Buffer
	report.Write(&out)
	require.Contains(t, out.String(), "Test 2 (next ciphertext different): FAIL")
	require.Contains(t, out.String(), "SOME TESTS FAILED")
}

func TestRunChecksShapeMismatchFailsOneCheck(t *testing.T) {
	svc, err := prng.New(prng.AlgorithmBlake2b)
	require.NoError(t, err)

	calls := 0
	produce := func() (verify.Artifact, error) {
		calls++
		n := 4
		if calls == 2 {
			n = 8
		}
		limb := make([]uint64, n)
		return verify.Limbs{Label: "a", Data: []structs.Matrix[uint64]{{limb}}}, nil
	}

	report, err := RunChecks(context.Background(), svc, produce, Options{Seed: 1, Samples: 20})
	require.NoError(t, err)
	require.ErrorIs(t, report.Checks[0].Err, verify.ErrShapeMismatch)
	require.False(t, report.Checks[0].Passed)
	require.Len(t, report.Checks, 6)
}

type unseeded struct{}

func (unseeded) SetSeed(uint64)     {}
func (unseeded) ResetToSeed() error { return prng.ErrUnseededState }

func TestRunChecksAbortsOnUnseededState(t *testing.T) {
	_, err := RunChecks(context.Background(), unseeded{}, constant(), Options{Seed: 1, Samples: 20})
	require.ErrorIs(t, err, prng.ErrUnseededState)
}

func TestRunChecksProduceError(t *testing.T) {
	svc, err := prng.New(prng.AlgorithmChaCha20)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = RunChecks(context.Background(), svc, func() (verify.Artifact, error) { return nil, boom }, Options{Seed: 1, Samples: 20})
	require.ErrorIs(t, err, boom)
}

func TestRunChecksCancelled(t *testing.T) {
	svc, err := prng.New(prng.AlgorithmBlake2b)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunChecks(ctx, svc, constant(), Options{Seed: 1, Samples: 20})
	require.ErrorIs(t, err, context.Canceled)
}
