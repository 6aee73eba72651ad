// Package cli wires the subcommands together: flag parsing, source
// resolution, backend selection, and output mode. Each subcommand owns its
// flag set; there is no shared global state beyond the logger.
package cli

import (
	"context"
	"fmt"
	"os"
)

const usage = `Usage: thermo-cli <command> [options]

Commands:
  list         List detected boards
  get          Read configured sources once, or stream them
  set          Write board and channel settings
  fuse         Run a child command and inject readings into its JSON output
  init-config  Write an example source-registry file

Run 'thermo-cli <command> --help' for command options.
`

// Run dispatches to a subcommand and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return runList(ctx, rest)
	case "get":
		return runGet(ctx, rest)
	case "set":
		return runSet(ctx, rest)
	case "fuse":
		return runFuse(ctx, rest)
	case "init-config":
		return runInitConfig(rest)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usage)
		return 1
	}
}
