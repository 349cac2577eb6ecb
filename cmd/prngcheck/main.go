// Package main provides a CLI that checks the seed and reset contract of the
// shared PRNG through the encryption pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	prngcheckcmd "github.com/MingLLuo/seeded-prng/internal/cmd/prngcheck"
)

func main() {
	// a missing .env is fine; the environment and flags still apply
	_ = godotenv.Load()

	cfg, err := prngcheckcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := prngcheckcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		exitf("Error: %v", err)
	}
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
