// Package prngcheck runs the reseeding checks against the shared PRNG and
// reports a verdict per check.
package prngcheck

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/kr/pretty"

	"github.com/MingLLuo/seeded-prng/pkg/pipeline"
	"github.com/MingLLuo/seeded-prng/pkg/prng"
	"github.com/MingLLuo/seeded-prng/pkg/verify"
)

// ErrChecksFailed is returned by Run when at least one check failed.
var ErrChecksFailed = errors.New("prngcheck: some checks failed")

// errVerdictDisagrees marks a check whose sampled verdict was contradicted
// by the exhaustive comparison.
var errVerdictDisagrees = errors.New("sampled verdict disagrees with exhaustive comparison")

// Config holds prngcheck command configuration.
type Config struct {
	Seed       uint64 `env:"PRNGCHECK_SEED"       envDefault:"1"`
	Samples    uint   `env:"PRNGCHECK_SAMPLES"    envDefault:"20"`
	Params     string `env:"PRNGCHECK_PARAMS"     envDefault:"Toy-N16-D3"`
	Algorithm  string `env:"PRNGCHECK_ALGORITHM"  envDefault:"blake2b"`
	Verbose    bool   `env:"PRNGCHECK_VERBOSE"`
	Exhaustive bool   `env:"PRNGCHECK_EXHAUSTIVE"`
}

// ParseConfig parses environment then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed of the first epoch")
	fs.UintVar(&cfg.Samples, "samples", cfg.Samples, "positions sampled per comparison")
	fs.StringVar(&cfg.Params, "params", cfg.Params, "pipeline parameter set")
	fs.StringVar(&cfg.Algorithm, "algorithm", cfg.Algorithm, "generator algorithm (blake2b or chacha20)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.BoolVar(&cfg.Exhaustive, "exhaustive", cfg.Exhaustive, "cross-check every sampled verdict with a full comparison")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Samples == 0 || cfg.Samples > math.MaxUint32 {
		return Config{}, fmt.Errorf("samples must be in 1..%d", uint32(math.MaxUint32))
	}
	return cfg, nil
}

// Run executes the prngcheck command against the shared PRNG instance.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	logger := log.New(errOut, "prngcheck: ", 0)

	alg, err := prng.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		return err
	}
	if err := prng.Configure(alg); err != nil {
		return err
	}
	params, err := pipeline.GetParameterSet(cfg.Params)
	if err != nil {
		return err
	}

	svc := prng.GetInstance()
	runID := uuid.New()
	logger.Printf("run %s: params=%s algorithm=%s seed=%d samples=%d", runID, params.Name, alg, cfg.Seed, cfg.Samples)
	if cfg.Verbose {
		logger.Printf("parameters: N=%d scale=2^%d sigma=%v moduli=%# v",
			params.N(), params.LogScale, params.Sigma, pretty.Formatter(params.Moduli))
	}

	// key generation draws from the unseeded stream, as it does in production
	cc, err := pipeline.NewContext(params, svc)
	if err != nil {
		return err
	}
	input := make([]float64, params.BatchSize)
	for i := range input {
		input[i] = float64(i) / float64(params.BatchSize)
	}
	produce := func() (verify.Artifact, error) {
		return cc.EncryptValues(input)
	}

	report, err := RunChecks(ctx, svc, produce, Options{
		Seed:       cfg.Seed,
		Samples:    uint32(cfg.Samples),
		Verifier:   verify.NewVerifier(),
		Exhaustive: cfg.Exhaustive,
	})
	if err != nil {
		return err
	}
	report.RunID = runID.String()

	if cfg.Verbose {
		logger.Printf("report: %# v", pretty.Formatter(report))
	}
	report.Write(out)

	if !report.Passed() {
		return ErrChecksFailed
	}
	return nil
}
