// Package main is the msise00 command: run the MSISE-00 model over a time,
// altitude and location grid, optionally save the result and plot it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	loggerpkg "github.com/minhyannv/msise00-go/pkg/logger"
	"github.com/minhyannv/msise00-go/pkg/msise"
)

// main is the program entry point.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	config, err := parseCLIConfig(args, stderr, os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		var perr *ParseError
		if errors.As(err, &perr) {
			return 2
		}
		return 1
	}

	appLogger := loggerpkg.NewLeveledLogger(stderr, config.Level())

	runner, err := msise.New(config, msise.WithLogger(appLogger), msise.WithOutput(stdout))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := runner.Run(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
