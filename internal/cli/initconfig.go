package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

const defaultConfigPath = "sources.yaml"

// runInitConfig writes an example source-registry file for the operator to
// edit. Existing files are not overwritten unless forced.
func runInitConfig(args []string) int {
	fs := pflag.NewFlagSet("init-config", pflag.ContinueOnError)

	var (
		common commonFlags
		output string
		force  bool
	)
	common.register(fs)
	fs.StringVarP(&output, "output", "o", "", "path to write the example file to")
	fs.BoolVar(&force, "force", false, "overwrite an existing file")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger.Init(common.debug, common.verbose, common.logFile)
	log := logger.Default()

	path := defaultConfigPath
	switch {
	case output != "":
		path = output
	case fs.NArg() > 0:
		path = fs.Arg(0)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fail(log, errors.New().WithData(errors.ErrWriteConfig,
				fmt.Sprintf("%s already exists; use --force to overwrite", path)))
		}
	}

	if err := config.WriteExample(path); err != nil {
		return fail(log, err)
	}

	log.Info().Str("path", path).Msg("Example configuration written")
	return 0
}
