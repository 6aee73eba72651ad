package collect

import (
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
)

// ChannelReading is one source's snapshot from a single collection pass.
// A nil field means the field was not requested or its read failed; the
// distinction is deliberate, operators see a missing value rather than a
// fabricated zero.
type ChannelReading struct {
	Address     uint8
	Channel     uint8
	Temperature *float64
	ADCVoltage  *float64
	CJCTemp     *float64
}

// ChannelConfig holds slow-changing attributes of one board channel.
type ChannelConfig struct {
	CalDate   string
	CalCoeffs *hardware.Calibration
}

// BoardInfo accumulates slow-changing attributes of one board as its channels
// are visited. Once created for an address it is never re-initialized within
// a run.
type BoardInfo struct {
	Address        uint8
	Serial         string
	UpdateInterval *uint8
	Channels       [hardware.NumChannels]ChannelConfig
}

// Result is the outcome of one collection pass: one reading per source in
// registry order, plus board info keyed by address for any requested
// slow-changing fields.
type Result struct {
	Readings []ChannelReading
	Boards   map[uint8]*BoardInfo
}
