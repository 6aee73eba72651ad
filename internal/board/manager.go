// Package board owns the open/close lifecycle of the physical boards behind a
// source registry. Boards are opened once per distinct address no matter how
// many logical sources share them, and every opened board is closed on every
// exit path.
package board

import (
	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

// Manager tracks which board addresses this invocation has opened. It is the
// exclusive owner of those sessions; no other component opens or closes a
// board directly.
type Manager struct {
	svc    hardware.Service
	log    logger.Logger
	opened map[uint8]bool
}

func NewManager(svc hardware.Service, log logger.Logger) *Manager {
	return &Manager{
		svc:    svc,
		log:    log,
		opened: make(map[uint8]bool),
	}
}

// Init opens every distinct board referenced by sources, exactly once each.
// All-or-nothing: if any open fails, boards already opened by this call are
// closed and the whole operation fails. A non-default update interval on the
// source that first references a board is applied right after that board
// opens; failure to apply it is a warning, not an open failure.
func (m *Manager) Init(sources []config.Source) error {
	errFactory := errors.New()

	for _, src := range sources {
		if m.opened[src.Address] {
			continue
		}

		m.log.Debug().Uint8("address", src.Address).Msg("Opening board")
		if err := m.svc.Open(src.Address); err != nil {
			m.log.ErrorWithCode(errFactory.Wrap(hardware.ErrOpenFailed, err)).
				Uint8("address", src.Address).
				Msg("Failed to open board")
			m.Close()
			return errFactory.Wrap(hardware.ErrOpenFailed, err)
		}
		m.opened[src.Address] = true

		if src.UpdateInterval > 0 && src.UpdateInterval != config.DefaultUpdateInterval {
			m.log.Debug().
				Uint8("address", src.Address).
				Uint8("interval", src.UpdateInterval).
				Msg("Setting update interval")
			if err := m.svc.SetUpdateInterval(src.Address, src.UpdateInterval); err != nil {
				m.log.Warn().
					Err(err).
					Uint8("address", src.Address).
					Msg("Failed to set update interval")
			}
		}
	}

	return nil
}

// Configure applies per-channel settings for every source. Calibration
// coefficients are written only when they differ from the compiled-in default
// pair; the thermocouple type is always written because temperature and ADC
// reads are undefined until a type is set. Per-source failures are warnings
// and do not abort subsequent sources.
func (m *Manager) Configure(sources []config.Source) {
	def := config.DefaultCalibration()

	for _, src := range sources {
		if src.Calibration != def {
			m.log.Debug().
				Uint8("address", src.Address).
				Uint8("channel", src.Channel).
				Float64("slope", src.Calibration.Slope).
				Float64("offset", src.Calibration.Offset).
				Msg("Setting calibration coefficients")
			if err := m.svc.SetCalibrationCoeffs(src.Address, src.Channel, src.Calibration); err != nil {
				m.log.Warn().
					Err(err).
					Uint8("address", src.Address).
					Uint8("channel", src.Channel).
					Msg("Failed to set calibration coefficients")
			}
		}

		if err := m.svc.SetTCType(src.Address, src.Channel, src.TCType); err != nil {
			m.log.Warn().
				Err(err).
				Uint8("address", src.Address).
				Uint8("channel", src.Channel).
				Msg("Failed to set TC type")
		}
	}
}

// Close closes every board this manager opened, exactly once each, and clears
// the bookkeeping. Safe to call more than once.
func (m *Manager) Close() {
	for address := range m.opened {
		m.log.Debug().Uint8("address", address).Msg("Closing board")
		if err := m.svc.Close(address); err != nil {
			m.log.Warn().Err(err).Uint8("address", address).Msg("Failed to close board")
		}
	}
	m.opened = make(map[uint8]bool)
}

// IsOpen reports whether this manager holds an open session for address.
func (m *Manager) IsOpen(address uint8) bool {
	return m.opened[address]
}

// OpenCount returns the number of boards this manager currently holds open.
func (m *Manager) OpenCount() int {
	return len(m.opened)
}
