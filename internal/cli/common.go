package cli

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	debug   bool
	verbose bool
	sim     bool
	logFile string
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	// THERMO_SIM flips the default so whole test sessions can run without
	// boards attached.
	fs.BoolVar(&c.sim, "sim", os.Getenv("THERMO_SIM") != "", "use simulated boards instead of hardware")
	fs.StringVar(&c.logFile, "log-file", "", "also write logs to this rotating file")
}

// sourceFlags select which channels a command operates on: either a registry
// file or a single inline source. The two forms are mutually exclusive.
type sourceFlags struct {
	configPath string
	address    uint8
	channel    uint8
	tcType     string
	key        string
}

func (s *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&s.configPath, "config", "c", "", "source-registry file (YAML or JSON)")
	fs.Uint8VarP(&s.address, "address", "a", 0, "board address (0-7)")
	fs.Uint8VarP(&s.channel, "channel", "n", 0, "channel number (0-3)")
	fs.StringVarP(&s.tcType, "tc-type", "t", "K", "thermocouple type (J,K,T,E,R,S,B,N)")
	fs.StringVarP(&s.key, "key", "k", "", "source key for output")
}

// resolve turns the flags into a source registry. With --config, the inline
// flags must be untouched; without it, --address and --channel are required.
func (s *sourceFlags) resolve(fs *pflag.FlagSet) ([]config.Source, error) {
	errFactory := errors.New()

	inline := fs.Changed("address") || fs.Changed("channel") ||
		fs.Changed("tc-type") || fs.Changed("key")

	if s.configPath != "" {
		if inline {
			return nil, errFactory.WithMessage(errors.ErrInvalidArgument,
				"--config cannot be combined with --address, --channel, --tc-type or --key")
		}
		return config.LoadSources(s.configPath)
	}

	if !fs.Changed("address") || !fs.Changed("channel") {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument,
			"either --config or both --address and --channel are required")
	}

	src, err := config.Single(s.address, s.channel, s.tcType, s.key)
	if err != nil {
		return nil, err
	}

	return []config.Source{src}, nil
}

// newService picks the hardware backend. Simulated boards are created at
// every address the registry references so that opens succeed.
func newService(sim bool, sources []config.Source, log logger.Logger) (hardware.Service, error) {
	if sim {
		addresses := make([]uint8, 0, len(sources))
		for _, src := range sources {
			addresses = append(addresses, src.Address)
		}
		return hardware.NewSim(log, addresses...), nil
	}

	return hardware.New(log)
}

// fail logs err and returns the generic failure exit code.
func fail(log logger.Logger, err error) int {
	var appErr errors.Error
	if errors.As(err, &appErr) {
		log.ErrorWithCode(appErr).Send()
	} else {
		log.Error().Err(err).Send()
	}

	return 1
}
