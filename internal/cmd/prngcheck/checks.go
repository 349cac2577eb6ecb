package prngcheck

import (
	"context"
	"fmt"
	"io"

	"github.com/MingLLuo/seeded-prng/pkg/verify"
)

// Seeder is the part of the PRNG service the checks drive.
type Seeder interface {
	SetSeed(seed uint64)
	ResetToSeed() error
}

// ProduceFunc builds one artifact from the current PRNG stream.
type ProduceFunc func() (verify.Artifact, error)

// Options parameterise RunChecks.
type Options struct {
	Seed       uint64
	Samples    uint32
	Verifier   *verify.Verifier
	Exhaustive bool
}

// Check is the outcome of one expectation.
type Check struct {
	Name   string
	Passed bool
	Err    error
}

// Report collects the checks of one run.
type Report struct {
	RunID  string
	Checks []Check
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return len(r.Checks) > 0
}

// Write prints one line per check followed by the aggregate verdict.
func (r Report) Write(w io.Writer) {
	for i, c := range r.Checks {
		verdict := "PASS"
		if !c.Passed {
			verdict = "FAIL"
		}
		if c.Err != nil {
			fmt.Fprintf(w, "Test %d (%s): %s (%v)\n", i+1, c.Name, verdict, c.Err)
			continue
		}
		fmt.Fprintf(w, "Test %d (%s): %s\n", i+1, c.Name, verdict)
	}

	fmt.Fprintln(w, "\n=================================")
	if r.Passed() {
		fmt.Fprintln(w, "ALL TESTS PASSED")
	} else {
		fmt.Fprintln(w, "SOME TESTS FAILED")
	}
	fmt.Fprintln(w, "=================================")
}

type checker struct {
	opts   Options
	report Report
}

func (c *checker) expect(name string, a, b verify.Artifact, wantEqual bool) {
	check := Check{Name: name}

	eq, err := c.opts.Verifier.ProbablyEqual(a, b, c.opts.Samples)
	if err == nil && c.opts.Exhaustive {
		var exact bool
		exact, err = verify.Equal(a, b)
		if err == nil && exact != eq {
			err = errVerdictDisagrees
		}
	}
	if err != nil {
		check.Err = err
	} else {
		check.Passed = eq == wantEqual
	}
	c.report.Checks = append(c.report.Checks, check)
}

// RunChecks replays the reseeding sequence: seed, reset, draw on, reset,
// switch seed, reset, return to the first seed. A failed comparison only
// fails its check; a failed reset or production aborts the run.
func RunChecks(ctx context.Context, seeder Seeder, produce ProduceFunc, opts Options) (Report, error) {
	if opts.Verifier == nil {
		opts.Verifier = verify.NewVerifier()
	}
	c := &checker{opts: opts}

	next := func() (verify.Artifact, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		artifact, err := produce()
		if err != nil {
			return nil, fmt.Errorf("produce artifact: %w", err)
		}
		return artifact, nil
	}
	reset := func() error {
		if err := seeder.ResetToSeed(); err != nil {
			return fmt.Errorf("reset to seed: %w", err)
		}
		return nil
	}

	seeder.SetSeed(opts.Seed)
	first, err := next()
	if err != nil {
		return Report{}, err
	}
	if err := reset(); err != nil {
		return Report{}, err
	}
	replayed, err := next()
	if err != nil {
		return Report{}, err
	}
	c.expect("SetSeed == ResetToSeed", first, replayed, true)

	following, err := next()
	if err != nil {
		return Report{}, err
	}
	c.expect("next ciphertext different", first, following, false)

	if err := reset(); err != nil {
		return Report{}, err
	}
	restarted, err := next()
	if err != nil {
		return Report{}, err
	}
	c.expect("reset returns to start", first, restarted, true)

	seeder.SetSeed(opts.Seed + 42)
	other, err := next()
	if err != nil {
		return Report{}, err
	}
	c.expect("different seed", first, other, false)

	if err := reset(); err != nil {
		return Report{}, err
	}
	otherReplayed, err := next()
	if err != nil {
		return Report{}, err
	}
	c.expect("reset to new seed", other, otherReplayed, true)

	seeder.SetSeed(opts.Seed)
	returned, err := next()
	if err != nil {
		return Report{}, err
	}
	c.expect("return to original seed", first, returned, true)

	return c.report, nil
}
