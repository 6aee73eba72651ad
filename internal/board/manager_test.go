package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom1484/cmg-10m-thermal/internal/board"
	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

// fakeService records every call the manager makes.
type fakeService struct {
	hardware.Service

	opens      []uint8
	closes     []uint8
	intervals  map[uint8]uint8
	calWrites  map[[2]uint8]hardware.Calibration
	tcWrites   map[[2]uint8]hardware.TCType
	failOpenAt *uint8
}

func newFakeService() *fakeService {
	return &fakeService{
		intervals: make(map[uint8]uint8),
		calWrites: make(map[[2]uint8]hardware.Calibration),
		tcWrites:  make(map[[2]uint8]hardware.TCType),
	}
}

func (f *fakeService) Open(address uint8) error {
	if f.failOpenAt != nil && *f.failOpenAt == address {
		return errors.New().New(hardware.ErrOpenFailed)
	}
	f.opens = append(f.opens, address)
	return nil
}

func (f *fakeService) Close(address uint8) error {
	f.closes = append(f.closes, address)
	return nil
}

func (f *fakeService) SetUpdateInterval(address, interval uint8) error {
	f.intervals[address] = interval
	return nil
}

func (f *fakeService) SetCalibrationCoeffs(address, channel uint8, cal hardware.Calibration) error {
	f.calWrites[[2]uint8{address, channel}] = cal
	return nil
}

func (f *fakeService) SetTCType(address, channel uint8, tc hardware.TCType) error {
	f.tcWrites[[2]uint8{address, channel}] = tc
	return nil
}

func testSources() []config.Source {
	return []config.Source{
		{Key: "A", Address: 0, Channel: 0, TCType: hardware.TCTypeK, Calibration: config.DefaultCalibration(), UpdateInterval: config.DefaultUpdateInterval},
		{Key: "B", Address: 0, Channel: 1, TCType: hardware.TCTypeK, Calibration: config.DefaultCalibration(), UpdateInterval: config.DefaultUpdateInterval},
		{Key: "C", Address: 1, Channel: 0, TCType: hardware.TCTypeJ, Calibration: config.DefaultCalibration(), UpdateInterval: config.DefaultUpdateInterval},
	}
}

func TestInitOpensEachBoardOnce(t *testing.T) {
	logger.Init(false, false, "")
	svc := newFakeService()
	mgr := board.NewManager(svc, logger.Default())

	require.NoError(t, mgr.Init(testSources()))

	assert.Equal(t, []uint8{0, 1}, svc.opens, "Expected one open per distinct address")
	assert.Equal(t, 2, mgr.OpenCount())
	assert.True(t, mgr.IsOpen(0))
	assert.True(t, mgr.IsOpen(1))
	assert.Empty(t, svc.intervals, "Default interval must not be written")
}

func TestInitRollsBackOnFailure(t *testing.T) {
	logger.Init(false, false, "")
	svc := newFakeService()
	failAt := uint8(1)
	svc.failOpenAt = &failAt
	mgr := board.NewManager(svc, logger.Default())

	err := mgr.Init(testSources())
	require.Error(t, err)
	assert.Equal(t, hardware.ErrOpenFailed, errors.CodeOf(err))

	assert.Equal(t, []uint8{0}, svc.opens)
	assert.Equal(t, []uint8{0}, svc.closes, "Boards opened before the failure must be closed")
	assert.Equal(t, 0, mgr.OpenCount())
}

func TestInitAppliesNonDefaultInterval(t *testing.T) {
	logger.Init(false, false, "")
	svc := newFakeService()
	mgr := board.NewManager(svc, logger.Default())

	sources := testSources()
	sources[0].UpdateInterval = 5

	require.NoError(t, mgr.Init(sources))
	assert.Equal(t, uint8(5), svc.intervals[0])
	_, ok := svc.intervals[1]
	assert.False(t, ok)
}

func TestConfigureSkipsDefaultCalibration(t *testing.T) {
	logger.Init(false, false, "")
	svc := newFakeService()
	mgr := board.NewManager(svc, logger.Default())

	sources := testSources()
	sources[2].Calibration = hardware.Calibration{Slope: 1.002, Offset: 0.1}

	require.NoError(t, mgr.Init(sources))
	mgr.Configure(sources)

	assert.Len(t, svc.calWrites, 1, "Only the non-default calibration should be written")
	assert.Equal(t, sources[2].Calibration, svc.calWrites[[2]uint8{1, 0}])

	// TC type is always written, reads are undefined without it.
	assert.Len(t, svc.tcWrites, 3)
	assert.Equal(t, hardware.TCTypeJ, svc.tcWrites[[2]uint8{1, 0}])
}

func TestCloseIsIdempotent(t *testing.T) {
	logger.Init(false, false, "")
	svc := newFakeService()
	mgr := board.NewManager(svc, logger.Default())

	require.NoError(t, mgr.Init(testSources()))
	mgr.Close()
	mgr.Close()

	assert.Len(t, svc.closes, 2, "Each board closed exactly once")
	assert.Equal(t, 0, mgr.OpenCount())
}
