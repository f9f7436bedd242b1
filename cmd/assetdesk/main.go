// asset-desk - desktop asset management
//
// This is the main entry point for the assetdesk command. It tracks devices
// and software licenses and the configurations they are grouped into, with
// each device and license owned by at most one configuration.
//
// Configuration is read from configs/assetdesk.yaml (or $ASSETDESK_CONFIG);
// run "assetdesk --help" for the command list.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/asset-desk/internal/cli"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called explicitly above
	}
}

// run executes one command line, separated from main for testability.
func run(ctx context.Context, args []string) error {
	return cli.Execute(ctx, args, cli.Options{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Version: version,
		Commit:  commit,
		Date:    date,
	})
}
