package hardware

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

const (
	simAmbientTemp   = 23.5
	simTempSwing     = 1.5
	simPeriodSeconds = 30.0
	simMicrovoltsPerDegree = 41e-6 // roughly type K Seebeck coefficient
)

type simChannel struct {
	tcType TCType
	tcSet  bool
	cal    Calibration
}

type simBoard struct {
	open     bool
	interval uint8
	channels [NumChannels]simChannel
}

// Sim is a software stand-in for the DAQ boards so the CLI can run on hosts
// without HATs attached. Readings are a deterministic function of time and
// channel, which keeps streamed output plausible and tests reproducible.
type Sim struct {
	boards  [MaxBoards]simBoard
	present map[uint8]bool
	start   time.Time
	log     logger.Logger
	mu      sync.Mutex
}

// NewSim creates a simulated service with boards at the given addresses.
// With no addresses it presents a single board at address 0.
func NewSim(log logger.Logger, addresses ...uint8) *Sim {
	present := make(map[uint8]bool)
	for _, a := range addresses {
		if a < MaxBoards {
			present[a] = true
		}
	}
	if len(present) == 0 {
		present[0] = true
	}

	s := &Sim{
		present: present,
		start:   time.Now(),
		log:     log,
	}
	for i := range s.boards {
		s.boards[i].interval = 1
		for c := range s.boards[i].channels {
			s.boards[i].channels[c] = simChannel{
				tcType: TCDisabled,
				cal:    Calibration{Slope: 1.0, Offset: 0.0},
			}
		}
	}

	return s
}

func (s *Sim) Open(address uint8) error {
	errFactory := errors.New()
	if err := ValidateAddress(address); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present[address] {
		return errFactory.WithData(ErrOpenFailed, address)
	}
	s.boards[address].open = true
	s.log.Debug().Uint8("address", address).Msg("Simulated board opened")

	return nil
}

func (s *Sim) Close(address uint8) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.boards[address].open = false
	s.log.Debug().Uint8("address", address).Msg("Simulated board closed")

	return nil
}

func (s *Sim) IsOpen(address uint8) bool {
	if address >= MaxBoards {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.boards[address].open
}

func (s *Sim) ListBoards() ([]BoardDesc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var descs []BoardDesc
	for a := uint8(0); a < MaxBoards; a++ {
		if s.present[a] {
			descs = append(descs, BoardDesc{
				Address:     a,
				ID:          "MCC 134",
				ProductName: "MCC 134 (simulated)",
			})
		}
	}

	return descs, nil
}

func (s *Sim) Serial(address uint8) (string, error) {
	if err := s.requireOpen(address); err != nil {
		return "", err
	}

	return fmt.Sprintf("SIM%05d", address), nil
}

func (s *Sim) CalibrationDate(address uint8) (string, error) {
	if err := s.requireOpen(address); err != nil {
		return "", err
	}

	return "2024-01-01", nil
}

func (s *Sim) CalibrationCoeffs(address, channel uint8) (Calibration, error) {
	if err := s.requireChannel(address, channel); err != nil {
		return Calibration{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.boards[address].channels[channel].cal, nil
}

func (s *Sim) UpdateInterval(address uint8) (uint8, error) {
	if err := s.requireOpen(address); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.boards[address].interval, nil
}

func (s *Sim) SetCalibrationCoeffs(address, channel uint8, cal Calibration) error {
	if err := s.requireChannel(address, channel); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.boards[address].channels[channel].cal = cal

	return nil
}

func (s *Sim) SetUpdateInterval(address uint8, interval uint8) error {
	errFactory := errors.New()
	if err := s.requireOpen(address); err != nil {
		return err
	}
	if interval < 1 {
		return errFactory.WithData(ErrIntervalWrite, interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.boards[address].interval = interval

	return nil
}

func (s *Sim) SetTCType(address, channel uint8, tc TCType) error {
	if err := s.requireChannel(address, channel); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.boards[address].channels[channel].tcType = tc
	s.boards[address].channels[channel].tcSet = true

	return nil
}

func (s *Sim) ReadTemperature(address, channel uint8) (float64, error) {
	errFactory := errors.New()
	if err := s.requireChannel(address, channel); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.boards[address].channels[channel]
	if !ch.tcSet {
		return 0, errFactory.WithData(ErrTCTypeNotSet, channel)
	}
	if ch.tcType == TCDisabled {
		return 0, errFactory.WithData(ErrChannelDisabled, channel)
	}

	return s.syntheticTemp(address, channel), nil
}

func (s *Sim) ReadADC(address, channel uint8) (float64, error) {
	errFactory := errors.New()
	if err := s.requireChannel(address, channel); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.boards[address].channels[channel]
	if !ch.tcSet {
		return 0, errFactory.WithData(ErrTCTypeNotSet, channel)
	}
	if ch.tcType == TCDisabled {
		return 0, errFactory.WithData(ErrChannelDisabled, channel)
	}

	// Voltage consistent with the synthetic temperature above CJC.
	delta := s.syntheticTemp(address, channel) - simAmbientTemp
	return delta * simMicrovoltsPerDegree, nil
}

func (s *Sim) ReadCJC(address, channel uint8) (float64, error) {
	if err := s.requireChannel(address, channel); err != nil {
		return 0, err
	}

	return simAmbientTemp, nil
}

func (s *Sim) WaitForReadings() {
	// Real boards need a conversion cycle after TC type changes; the
	// simulation has values immediately.
}

func (s *Sim) syntheticTemp(address, channel uint8) float64 {
	elapsed := time.Since(s.start).Seconds()
	phase := float64(address)*0.7 + float64(channel)*0.3
	return simAmbientTemp + float64(channel) +
		simTempSwing*math.Sin(2*math.Pi*elapsed/simPeriodSeconds+phase)
}

func (s *Sim) requireOpen(address uint8) error {
	errFactory := errors.New()
	if err := ValidateAddress(address); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.boards[address].open {
		return errFactory.WithData(ErrNotOpen, address)
	}

	return nil
}

func (s *Sim) requireChannel(address, channel uint8) error {
	if err := s.requireOpen(address); err != nil {
		return err
	}

	return ValidateChannel(channel)
}
