package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/tom1484/cmg-10m-thermal/internal/logger"
	"github.com/tom1484/cmg-10m-thermal/internal/render"
)

// runList enumerates detected boards without opening any of them.
func runList(_ context.Context, args []string) int {
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)

	var (
		common commonFlags
		asJSON bool
	)
	common.register(fs)
	fs.BoolVarP(&asJSON, "json", "j", false, "emit JSON instead of a table")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger.Init(common.debug, common.verbose, common.logFile)
	log := logger.Default()

	svc, err := newService(common.sim, nil, log)
	if err != nil {
		return fail(log, err)
	}

	boards, err := svc.ListBoards()
	if err != nil {
		return fail(log, err)
	}

	if asJSON {
		out, err := render.BoardsJSON(boards)
		if err != nil {
			return fail(log, err)
		}
		fmt.Println(out)
		return 0
	}

	render.BoardsTable(os.Stdout, boards)
	return 0
}
