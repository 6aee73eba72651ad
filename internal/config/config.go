package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
)

// Compiled-in defaults applied when a source record omits optional fields.
const (
	DefaultCalibrationSlope  = 0.999560
	DefaultCalibrationOffset = -38.955465
	DefaultUpdateInterval    = 1
)

// DefaultTCType is the thermocouple type assumed for unconfigured sources.
const DefaultTCType = hardware.TCTypeK

// Source binds one board channel to acquisition and calibration settings.
// Immutable for the duration of a run.
type Source struct {
	Key            string
	Address        uint8
	Channel        uint8
	TCType         hardware.TCType
	Calibration    hardware.Calibration
	UpdateInterval uint8
}

// DefaultCalibration returns the compiled-in calibration pair.
func DefaultCalibration() hardware.Calibration {
	return hardware.Calibration{
		Slope:  DefaultCalibrationSlope,
		Offset: DefaultCalibrationOffset,
	}
}

// Single synthesizes a one-source registry from CLI arguments.
func Single(address, channel uint8, tcType, key string) (Source, error) {
	errFactory := errors.New()

	if err := hardware.ValidateAddress(address); err != nil {
		return Source{}, err
	}
	if err := hardware.ValidateChannel(channel); err != nil {
		return Source{}, err
	}

	tc, err := hardware.ParseTCType(tcType)
	if err != nil {
		return Source{}, errFactory.Wrap(errors.ErrInvalidTCType, err)
	}

	if key == "" {
		key = fmt.Sprintf("TEMP_%d_%d", address, channel)
	}

	return Source{
		Key:            key,
		Address:        address,
		Channel:        channel,
		TCType:         tc,
		Calibration:    DefaultCalibration(),
		UpdateInterval: DefaultUpdateInterval,
	}, nil
}

// sourceRecord is the on-disk shape of one source entry. Pointer fields
// distinguish "omitted" from zero values.
type sourceRecord struct {
	Key            string   `mapstructure:"key"`
	Address        *int     `mapstructure:"address"`
	Channel        *int     `mapstructure:"channel"`
	TCType         string   `mapstructure:"tc_type"`
	CalSlope       *float64 `mapstructure:"cal_slope"`
	CalOffset      *float64 `mapstructure:"cal_offset"`
	UpdateInterval *int     `mapstructure:"update_interval"`
}

type sourcesFile struct {
	Sources []sourceRecord `mapstructure:"sources"`
}

// LoadSources reads a YAML or JSON source-registry file. Source order is
// file order. Validation failures are fatal before any board is touched.
func LoadSources(path string) ([]Source, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	var file sourcesFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if len(file.Sources) == 0 {
		return nil, errFactory.WithData(errors.ErrNoSources, path)
	}

	sources := make([]Source, 0, len(file.Sources))
	for i, rec := range file.Sources {
		src, err := rec.toSource()
		if err != nil {
			return nil, errFactory.WithData(errors.ErrInvalidSource, struct {
				Index int
				Error string
			}{
				Index: i,
				Error: err.Error(),
			})
		}
		sources = append(sources, src)
	}

	return sources, nil
}

func (rec sourceRecord) toSource() (Source, error) {
	errFactory := errors.New()

	if rec.Address == nil {
		return Source{}, errFactory.WithMessage(errors.ErrInvalidSource, "missing required 'address' field")
	}
	if rec.Channel == nil {
		return Source{}, errFactory.WithMessage(errors.ErrInvalidSource, "missing required 'channel' field")
	}
	if *rec.Address < 0 || *rec.Address >= hardware.MaxBoards {
		return Source{}, errFactory.WithData(errors.ErrInvalidAddress, *rec.Address)
	}
	if *rec.Channel < 0 || *rec.Channel >= hardware.NumChannels {
		return Source{}, errFactory.WithData(errors.ErrInvalidChannel, *rec.Channel)
	}

	tc := DefaultTCType
	if rec.TCType != "" {
		var err error
		tc, err = hardware.ParseTCType(rec.TCType)
		if err != nil {
			return Source{}, err
		}
	}

	cal := DefaultCalibration()
	if rec.CalSlope != nil {
		cal.Slope = *rec.CalSlope
	}
	if rec.CalOffset != nil {
		cal.Offset = *rec.CalOffset
	}

	interval := uint8(DefaultUpdateInterval)
	if rec.UpdateInterval != nil {
		if *rec.UpdateInterval < 1 || *rec.UpdateInterval > 255 {
			return Source{}, errFactory.WithData(errors.ErrInvalidSource, struct {
				Field string
				Value int
			}{
				Field: "update_interval",
				Value: *rec.UpdateInterval,
			})
		}
		interval = uint8(*rec.UpdateInterval)
	}

	key := rec.Key
	if key == "" {
		key = fmt.Sprintf("TEMP_%d_%d", *rec.Address, *rec.Channel)
	}

	return Source{
		Key:            key,
		Address:        uint8(*rec.Address),
		Channel:        uint8(*rec.Channel),
		TCType:         tc,
		Calibration:    cal,
		UpdateInterval: interval,
	}, nil
}

const exampleConfig = `sources:
  - key: BATTERY_TEMP
    address: 0
    channel: 0
    tc_type: K
  - key: MOTOR_TEMP
    address: 0
    channel: 1
    tc_type: K
  - key: AMBIENT_TEMP
    address: 1
    channel: 0
    tc_type: K
`

// WriteExample writes an example source-registry file.
func WriteExample(path string) error {
	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return errors.New().Wrap(errors.ErrWriteConfig, err)
	}

	return nil
}
