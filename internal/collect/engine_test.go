package collect_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom1484/cmg-10m-thermal/internal/board"
	"github.com/tom1484/cmg-10m-thermal/internal/collect"
	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

func simEngine(t *testing.T, sources []config.Source) (*collect.Engine, *hardware.Sim) {
	t.Helper()
	logger.Init(false, false, "")
	log := logger.Default()

	addresses := make([]uint8, 0, len(sources))
	for _, src := range sources {
		addresses = append(addresses, src.Address)
	}
	svc := hardware.NewSim(log, addresses...)

	mgr := board.NewManager(svc, log)
	require.NoError(t, mgr.Init(sources))
	t.Cleanup(mgr.Close)
	mgr.Configure(sources)

	return collect.NewEngine(svc, sources, log), svc
}

func twoSources() []config.Source {
	return []config.Source{
		{Key: "T1", Address: 0, Channel: 0, TCType: hardware.TCTypeK, Calibration: config.DefaultCalibration(), UpdateInterval: config.DefaultUpdateInterval},
		{Key: "T2", Address: 1, Channel: 3, TCType: hardware.TCTypeJ, Calibration: config.DefaultCalibration(), UpdateInterval: config.DefaultUpdateInterval},
	}
}

func TestCollectDefaultFields(t *testing.T) {
	engine, _ := simEngine(t, twoSources())

	res := engine.Collect(context.Background(), collect.DefaultFields())
	require.Len(t, res.Readings, 2)

	assert.Equal(t, uint8(0), res.Readings[0].Address)
	assert.Equal(t, uint8(0), res.Readings[0].Channel)
	assert.Equal(t, uint8(1), res.Readings[1].Address)
	assert.Equal(t, uint8(3), res.Readings[1].Channel)

	for _, r := range res.Readings {
		require.NotNil(t, r.Temperature, "Temperature requested, reads succeed")
		assert.Nil(t, r.ADCVoltage, "ADC not requested")
		assert.Nil(t, r.CJCTemp, "CJC not requested")
	}
	assert.Empty(t, res.Boards, "No static fields requested")
}

func TestCollectStaticFields(t *testing.T) {
	engine, _ := simEngine(t, twoSources())

	mask := collect.FieldMask{Serial: true, CalDate: true, CalCoeffs: true, Interval: true}
	res := engine.Collect(context.Background(), mask)

	require.Len(t, res.Boards, 2)
	for _, src := range twoSources() {
		info := res.Boards[src.Address]
		require.NotNil(t, info)
		assert.NotEmpty(t, info.Serial)
		require.NotNil(t, info.UpdateInterval)
		assert.NotEmpty(t, info.Channels[src.Channel].CalDate)
		assert.NotNil(t, info.Channels[src.Channel].CalCoeffs)
	}

	// Readings are still emitted per source, with no dynamic fields set.
	require.Len(t, res.Readings, 2)
	assert.Nil(t, res.Readings[0].Temperature)
}

func TestCollectDegradesOnReadFailure(t *testing.T) {
	sources := twoSources()
	engine, svc := simEngine(t, sources)

	// Disabling the thermocouple makes temperature and ADC reads fail while
	// CJC still works.
	require.NoError(t, svc.SetTCType(0, 0, hardware.TCDisabled))

	mask := collect.FieldMask{Temperature: true, ADC: true, CJC: true}
	res := engine.Collect(context.Background(), mask)
	require.Len(t, res.Readings, 2)

	assert.Nil(t, res.Readings[0].Temperature, "Failed read must be absent, not zero")
	assert.Nil(t, res.Readings[0].ADCVoltage)
	assert.NotNil(t, res.Readings[0].CJCTemp)

	require.NotNil(t, res.Readings[1].Temperature, "Other sources are unaffected")
}

func TestStreamEmitsUntilCancelled(t *testing.T) {
	engine, _ := simEngine(t, twoSources())

	ctx, cancel := context.WithCancel(context.Background())
	var results []*collect.Result
	err := engine.Stream(ctx, 100, collect.DefaultFields(), func(res *collect.Result) error {
		results = append(results, res)
		if len(results) == 3 {
			cancel()
		}
		return nil
	})

	require.NoError(t, err, "Cancellation is a clean stop")
	assert.Len(t, results, 3)
	for _, res := range results {
		assert.Len(t, res.Readings, 2)
	}
}

func TestStreamEmitsStaticOnce(t *testing.T) {
	engine, _ := simEngine(t, twoSources())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mask := collect.FieldMask{Serial: true, Temperature: true}
	var results []*collect.Result
	err := engine.Stream(ctx, 100, mask, func(res *collect.Result) error {
		results = append(results, res)
		if len(results) == 3 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NotEmpty(t, results[0].Boards, "First emit carries static fields")
	assert.Nil(t, results[0].Readings[0].Temperature)

	for _, res := range results[1:] {
		assert.Empty(t, res.Boards, "Ticks carry dynamic fields only")
		assert.NotNil(t, res.Readings[0].Temperature)
	}
}

func TestStreamStopsOnEmitError(t *testing.T) {
	engine, _ := simEngine(t, twoSources())

	wantErr := assert.AnError
	calls := 0
	err := engine.Stream(context.Background(), 100, collect.DefaultFields(), func(*collect.Result) error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestStreamCadence(t *testing.T) {
	engine, _ := simEngine(t, twoSources())

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	count := 0
	err := engine.Stream(ctx, 20, collect.DefaultFields(), func(*collect.Result) error {
		count++
		return nil
	})
	require.NoError(t, err)

	// 20 Hz over 120ms gives at most 3 ticks; sleep-after-collect means the
	// rate never exceeds the requested one.
	assert.GreaterOrEqual(t, count, 1)
	assert.LessOrEqual(t, count, 4)
}
