// Package collect turns an open, configured board set into readings: one pass
// per request in single-shot mode, or an unbounded sequence of passes at a
// fixed cadence in streaming mode.
package collect

import (
	"context"
	"time"

	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

// EmitFunc receives each collected result. Returning an error stops the
// stream and propagates out of Stream.
type EmitFunc func(*Result) error

// Engine drives collection passes over a source registry. The boards must
// already be open and configured by the board manager.
type Engine struct {
	svc     hardware.Service
	sources []config.Source
	log     logger.Logger
}

func NewEngine(svc hardware.Service, sources []config.Source, log logger.Logger) *Engine {
	return &Engine{
		svc:     svc,
		sources: sources,
		log:     log,
	}
}

// Collect performs one pass: slow-changing fields first (once per distinct
// board, accumulating per visited channel), then dynamic readings per source,
// both in registry order. Individual read failures degrade to absent fields
// and never abort the pass.
func (e *Engine) Collect(_ context.Context, mask FieldMask) *Result {
	res := &Result{
		Boards: make(map[uint8]*BoardInfo),
	}

	if mask.AnyStatic() {
		for _, src := range e.sources {
			info, ok := res.Boards[src.Address]
			if !ok {
				info = &BoardInfo{Address: src.Address}
				res.Boards[src.Address] = info
			}
			e.collectBoardInfo(info, src.Channel, mask)
		}
	}

	for _, src := range e.sources {
		res.Readings = append(res.Readings, e.collectReading(src, mask))
		e.log.Debug().
			Uint8("address", src.Address).
			Uint8("channel", src.Channel).
			Msg("Reading collected")
	}

	return res
}

// Stream emits one static result (when static fields are requested), then
// re-collects and emits dynamic readings at 1/hz wall-clock cadence until ctx
// is cancelled. Ticks are independent; a cancellation observed between ticks
// produces no partial output.
func (e *Engine) Stream(ctx context.Context, hz int, mask FieldMask, emit EmitFunc) error {
	period := time.Second / time.Duration(hz)

	if mask.AnyStatic() {
		static := e.Collect(ctx, mask.Static())
		if err := emit(static); err != nil {
			return err
		}
	}

	dynamic := mask.Dynamic()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		res := e.Collect(ctx, dynamic)
		if err := emit(res); err != nil {
			return err
		}

		// Sleep is not adjusted for collection time, so the actual rate
		// is at most hz.
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(period):
		}
	}
}

func (e *Engine) collectBoardInfo(info *BoardInfo, channel uint8, mask FieldMask) {
	if mask.Serial && info.Serial == "" {
		if serial, err := e.svc.Serial(info.Address); err == nil {
			info.Serial = serial
		} else {
			e.log.Debug().Err(err).Uint8("address", info.Address).Msg("Serial read failed")
		}
	}

	if mask.Interval && info.UpdateInterval == nil {
		if interval, err := e.svc.UpdateInterval(info.Address); err == nil {
			info.UpdateInterval = &interval
		} else {
			e.log.Debug().Err(err).Uint8("address", info.Address).Msg("Update interval read failed")
		}
	}

	if channel >= hardware.NumChannels {
		return
	}

	if mask.CalDate && info.Channels[channel].CalDate == "" {
		if date, err := e.svc.CalibrationDate(info.Address); err == nil {
			info.Channels[channel].CalDate = date
		} else {
			e.log.Debug().Err(err).Uint8("address", info.Address).Msg("Calibration date read failed")
		}
	}

	if mask.CalCoeffs && info.Channels[channel].CalCoeffs == nil {
		if cal, err := e.svc.CalibrationCoeffs(info.Address, channel); err == nil {
			info.Channels[channel].CalCoeffs = &cal
		} else {
			e.log.Debug().
				Err(err).
				Uint8("address", info.Address).
				Uint8("channel", channel).
				Msg("Calibration coefficients read failed")
		}
	}
}

func (e *Engine) collectReading(src config.Source, mask FieldMask) ChannelReading {
	reading := ChannelReading{
		Address: src.Address,
		Channel: src.Channel,
	}

	if mask.Temperature {
		if v, err := e.svc.ReadTemperature(src.Address, src.Channel); err == nil {
			reading.Temperature = &v
		} else {
			e.log.Debug().
				Err(err).
				Uint8("address", src.Address).
				Uint8("channel", src.Channel).
				Msg("Temperature read failed")
		}
	}

	if mask.ADC {
		if v, err := e.svc.ReadADC(src.Address, src.Channel); err == nil {
			reading.ADCVoltage = &v
		} else {
			e.log.Debug().
				Err(err).
				Uint8("address", src.Address).
				Uint8("channel", src.Channel).
				Msg("ADC read failed")
		}
	}

	if mask.CJC {
		if v, err := e.svc.ReadCJC(src.Address, src.Channel); err == nil {
			reading.CJCTemp = &v
		} else {
			e.log.Debug().
				Err(err).
				Uint8("address", src.Address).
				Uint8("channel", src.Channel).
				Msg("CJC read failed")
		}
	}

	return reading
}
