//go:build !daqhats

package hardware

import (
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

// New reports that this binary was built without vendor-library support.
// Build with -tags daqhats on a Raspberry Pi with the MCC daqhats package
// installed, or run with --sim.
func New(_ logger.Logger) (Service, error) {
	return nil, errors.New().WithMessage(errors.ErrUnavailable,
		"built without daqhats support; rebuild with -tags daqhats or use --sim")
}
