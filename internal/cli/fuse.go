package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/tom1484/cmg-10m-thermal/internal/fuse"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
	"github.com/tom1484/cmg-10m-thermal/internal/pid"
)

// runFuse wraps a child invocation: everything after "--" is passed to the
// child, everything before it configures the bridge. The separator is
// mandatory so a typo never silently runs the default child.
func runFuse(ctx context.Context, args []string) int {
	ours, child, hasSep := splitChildArgs(args)

	fs := pflag.NewFlagSet("fuse", pflag.ContinueOnError)

	var (
		common     commonFlags
		srcSel     sourceFlags
		timeFormat string
	)
	common.register(fs)
	srcSel.register(fs)
	fs.StringVar(&timeFormat, "time-format", fuse.DefaultTimeFormat, "strftime-style timestamp format")

	if err := fs.Parse(ours); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger.Init(common.debug, common.verbose, common.logFile)
	log := logger.Default()

	if !hasSep || len(child) == 0 {
		fmt.Fprintln(os.Stderr, "fuse requires a child command: thermo-cli fuse [options] -- <args...>")
		return 1
	}

	sources, err := srcSel.resolve(fs)
	if err != nil {
		return fail(log, err)
	}

	svc, err := newService(common.sim, sources, log)
	if err != nil {
		return fail(log, err)
	}

	if err := pid.Write(); err != nil {
		return fail(log, err)
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			log.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	bridge := fuse.NewBridge(svc, sources, child, timeFormat, log)
	code, err := bridge.Run(ctx)
	if err != nil {
		fail(log, err)
	}

	return code
}

// splitChildArgs separates bridge flags from the child's arguments at the
// first "--" and reports whether the separator was present.
func splitChildArgs(args []string) (ours, child []string, found bool) {
	for i, a := range args {
		if a == "--" {
			return args[:i], args[i+1:], true
		}
	}

	return args, nil, false
}
