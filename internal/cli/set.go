package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

// runSet writes settings to one board. Unlike get, writes here are explicit
// and unconditional: whatever the operator asked for is written even when it
// matches the compiled-in defaults, and any write failure is fatal.
func runSet(_ context.Context, args []string) int {
	fs := pflag.NewFlagSet("set", pflag.ContinueOnError)

	var (
		common    commonFlags
		address   uint8
		channel   uint8
		tcType    string
		calSlope  float64
		calOffset float64
		interval  uint8
	)
	common.register(fs)
	fs.Uint8VarP(&address, "address", "a", 0, "board address (0-7)")
	fs.Uint8VarP(&channel, "channel", "n", 0, "channel number (0-3)")
	fs.StringVarP(&tcType, "tc-type", "t", "", "thermocouple type to set (J,K,T,E,R,S,B,N,DISABLED)")
	fs.Float64Var(&calSlope, "cali-slope", config.DefaultCalibrationSlope, "calibration slope to set")
	fs.Float64Var(&calOffset, "cali-offset", config.DefaultCalibrationOffset, "calibration offset to set")
	fs.Uint8VarP(&interval, "update-interval", "u", config.DefaultUpdateInterval, "conversion update interval in seconds")

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger.Init(common.debug, common.verbose, common.logFile)
	log := logger.Default()
	errFactory := errors.New()

	if !fs.Changed("address") {
		return fail(log, errFactory.WithMessage(errors.ErrInvalidArgument, "--address is required"))
	}
	if err := hardware.ValidateAddress(address); err != nil {
		return fail(log, err)
	}

	setTC := fs.Changed("tc-type")
	setCal := fs.Changed("cali-slope") || fs.Changed("cali-offset")
	setInterval := fs.Changed("update-interval")

	if fs.Changed("cali-slope") != fs.Changed("cali-offset") {
		return fail(log, errFactory.WithMessage(errors.ErrInvalidArgument,
			"--cali-slope and --cali-offset must be given together"))
	}
	if !setTC && !setCal && !setInterval {
		return fail(log, errFactory.WithMessage(errors.ErrInvalidArgument,
			"nothing to set; give --tc-type, --cali-slope/--cali-offset or --update-interval"))
	}
	if (setTC || setCal) && !fs.Changed("channel") {
		return fail(log, errFactory.WithMessage(errors.ErrInvalidArgument,
			"--channel is required for per-channel settings"))
	}
	if fs.Changed("channel") {
		if err := hardware.ValidateChannel(channel); err != nil {
			return fail(log, err)
		}
	}

	var tc hardware.TCType
	if setTC {
		var err error
		tc, err = hardware.ParseTCType(tcType)
		if err != nil {
			return fail(log, errFactory.Wrap(errors.ErrInvalidTCType, err))
		}
	}

	svc, err := newService(common.sim, []config.Source{{Address: address, Channel: channel}}, log)
	if err != nil {
		return fail(log, err)
	}

	if err := svc.Open(address); err != nil {
		return fail(log, errFactory.Wrap(hardware.ErrOpenFailed, err))
	}
	defer func() {
		if err := svc.Close(address); err != nil {
			log.Warn().Err(err).Uint8("address", address).Msg("Failed to close board")
		}
	}()

	if setInterval {
		if err := svc.SetUpdateInterval(address, interval); err != nil {
			return fail(log, err)
		}
		log.Info().
			Uint8("address", address).
			Uint8("interval", interval).
			Msg("Update interval set")
	}

	if setCal {
		cal := hardware.Calibration{Slope: calSlope, Offset: calOffset}
		if err := svc.SetCalibrationCoeffs(address, channel, cal); err != nil {
			return fail(log, err)
		}
		log.Info().
			Uint8("address", address).
			Uint8("channel", channel).
			Float64("slope", cal.Slope).
			Float64("offset", cal.Offset).
			Msg("Calibration coefficients set")
	}

	if setTC {
		if err := svc.SetTCType(address, channel, tc); err != nil {
			return fail(log, err)
		}
		log.Info().
			Uint8("address", address).
			Uint8("channel", channel).
			Str("tc_type", tc.String()).
			Msg("Thermocouple type set")
	}

	return 0
}
