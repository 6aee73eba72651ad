package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/tom1484/cmg-10m-thermal/internal/board"
	"github.com/tom1484/cmg-10m-thermal/internal/collect"
	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
	"github.com/tom1484/cmg-10m-thermal/internal/pid"
	"github.com/tom1484/cmg-10m-thermal/internal/record"
	"github.com/tom1484/cmg-10m-thermal/internal/render"
)

func runGet(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("get", pflag.ContinueOnError)

	var (
		common  commonFlags
		srcSel  sourceFlags
		mask    collect.FieldMask
		asJSON  bool
		clean   bool
		hz      int
		recPath string
	)
	common.register(fs)
	srcSel.register(fs)
	fs.BoolVar(&mask.Serial, "serial", false, "include the board serial number")
	fs.BoolVar(&mask.CalDate, "cali-date", false, "include the factory calibration date")
	fs.BoolVar(&mask.CalCoeffs, "cali-coeffs", false, "include calibration coefficients")
	fs.BoolVarP(&mask.Interval, "update-interval", "u", false, "include the conversion update interval")
	fs.BoolVarP(&mask.Temperature, "temp", "T", false, "include the linearized temperature")
	fs.BoolVar(&mask.ADC, "adc", false, "include the raw ADC voltage")
	fs.BoolVar(&mask.CJC, "cjc", false, "include the cold-junction temperature")
	fs.BoolVarP(&asJSON, "json", "j", false, "emit compact JSON instead of a table")
	fs.BoolVar(&clean, "clean", false, "omit table decorations")
	fs.IntVarP(&hz, "stream", "s", 0, "stream readings at this rate in Hz")
	fs.StringVarP(&recPath, "record", "r", "", "append readings to this SQLite database")

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

	if fs.Changed("stream") && hz < 1 {
		return fail(log, errFactory.WithMessage(errors.ErrInvalidArgument, "--stream rate must be at least 1 Hz"))
	}

	sources, err := srcSel.resolve(fs)
	if err != nil {
		return fail(log, err)
	}

	if !mask.Any() {
		mask = collect.DefaultFields()
	}

	svc, err := newService(common.sim, sources, log)
	if err != nil {
		return fail(log, err)
	}

	mgr := board.NewManager(svc, log)
	if err := mgr.Init(sources); err != nil {
		return fail(log, err)
	}
	defer mgr.Close()

	mgr.Configure(sources)
	svc.WaitForReadings()

	var repo *record.Repository
	if recPath != "" {
		repo, err = record.NewRepository(record.DefaultConfig(recPath), log)
		if err != nil {
			return fail(log, err)
		}
		defer func() {
			if err := repo.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close recording database")
			}
		}()
		log.Info().
			Str("path", recPath).
			Str("session", repo.Session()).
			Msg("Recording readings")
	}

	engine := collect.NewEngine(svc, sources, log)

	if hz > 0 {
		return streamReadings(ctx, engine, repo, sources, mask, hz, asJSON, clean, log)
	}

	res := engine.Collect(ctx, mask)
	if err := emitResult(res, sources, asJSON, clean); err != nil {
		return fail(log, err)
	}
	if repo != nil {
		if err := repo.RecordResult(res, sources, time.Now()); err != nil {
			log.Warn().Err(err).Msg("Failed to record readings")
		}
	}

	return 0
}

func streamReadings(ctx context.Context, engine *collect.Engine, repo *record.Repository, sources []config.Source, mask collect.FieldMask, hz int, asJSON, clean bool, log logger.Logger) int {
	if err := pid.Write(); err != nil {
		return fail(log, err)
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			log.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	log.Info().Int("hz", hz).Msg("Streaming readings")

	err := engine.Stream(ctx, hz, mask, func(res *collect.Result) error {
		if err := emitResult(res, sources, asJSON, clean); err != nil {
			return err
		}
		if repo != nil {
			if err := repo.RecordResult(res, sources, time.Now()); err != nil {
				log.Warn().Err(err).Msg("Failed to record readings")
			}
		}
		return nil
	})
	if err != nil {
		return fail(log, err)
	}

	return 0
}

func emitResult(res *collect.Result, sources []config.Source, asJSON, clean bool) error {
	if asJSON {
		line, err := render.JSON(res, sources)
		if err != nil {
			return err
		}
		fmt.Println(line)
		return nil
	}

	render.Table(os.Stdout, res, sources, clean)
	return nil
}
