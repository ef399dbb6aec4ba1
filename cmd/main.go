package main

import (
	"fmt"
	"os"

	"github.com/davidbz/llmrelay/internal/cli"
)

// Version information set via ldflags during build.
//
//nolint:gochecknoglobals // ldflags targets
var (
	version = "dev"
	commit  = ""
)

func main() {
	cli.SetVersionInfo(version, commit)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "llmrelay: %v\n", err)
		os.Exit(1)
	}
}
