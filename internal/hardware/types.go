package hardware

import (
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
)

// Hardware family bounds for the MCC 134 DAQ HAT.
const (
	NumChannels = 4
	MaxBoards   = 8
)

// Special temperature values reported by the board in place of a reading.
const (
	OpenTCValue       = -9999.0
	OverrangeTCValue  = -8888.0
	CommonModeTCValue = -7777.0
)

// TCType identifies a thermocouple type as understood by the board firmware.
type TCType uint8

const (
	TCTypeJ TCType = iota
	TCTypeK
	TCTypeT
	TCTypeE
	TCTypeR
	TCTypeS
	TCTypeB
	TCTypeN
	TCDisabled
)

var tcTypeNames = map[TCType]string{
	TCTypeJ:    "J",
	TCTypeK:    "K",
	TCTypeT:    "T",
	TCTypeE:    "E",
	TCTypeR:    "R",
	TCTypeS:    "S",
	TCTypeB:    "B",
	TCTypeN:    "N",
	TCDisabled: "DISABLED",
}

func (t TCType) String() string {
	if name, ok := tcTypeNames[t]; ok {
		return name
	}

	return "UNKNOWN"
}

// ParseTCType converts a configuration string ("K", "J", ...) to a TCType.
func ParseTCType(s string) (TCType, error) {
	for t, name := range tcTypeNames {
		if name == s {
			return t, nil
		}
	}

	return TCDisabled, errors.New().WithData(errors.ErrInvalidTCType, s)
}

// Calibration holds the per-channel linear correction pair.
type Calibration struct {
	Slope  float64
	Offset float64
}

// BoardDesc describes one detected board, open or not.
type BoardDesc struct {
	Address     uint8
	ID          string
	ProductName string
}
