package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom1484/cmg-10m-thermal/internal/collect"
	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
	"github.com/tom1484/cmg-10m-thermal/internal/render"
)

func f(v float64) *float64 { return &v }

func singleSource() []config.Source {
	return []config.Source{{Key: "T1", Address: 0, Channel: 0}}
}

func TestJSONSingleSourceFlatObject(t *testing.T) {
	res := &collect.Result{
		Readings: []collect.ChannelReading{
			{Address: 0, Channel: 0, Temperature: f(23.456)},
		},
		Boards: map[uint8]*collect.BoardInfo{},
	}

	out, err := render.JSON(res, singleSource())
	require.NoError(t, err)
	assert.Equal(t, `{"KEY":"T1","ADDRESS":0,"CHANNEL":0,"TEMPERATURE":23.456}`, out)
}

func TestJSONMultipleSourcesArray(t *testing.T) {
	res := &collect.Result{
		Readings: []collect.ChannelReading{
			{Address: 0, Channel: 0, Temperature: f(20.5)},
			{Address: 1, Channel: 2, Temperature: f(21.25)},
		},
		Boards: map[uint8]*collect.BoardInfo{},
	}
	sources := []config.Source{
		{Key: "A", Address: 0, Channel: 0},
		{Key: "B", Address: 1, Channel: 2},
	}

	out, err := render.JSON(res, sources)
	require.NoError(t, err)
	assert.Equal(t, `[{"KEY":"A","ADDRESS":0,"CHANNEL":0,"TEMPERATURE":20.5},{"KEY":"B","ADDRESS":1,"CHANNEL":2,"TEMPERATURE":21.25}]`, out)
}

func TestJSONOmitsFailedFields(t *testing.T) {
	res := &collect.Result{
		Readings: []collect.ChannelReading{
			{Address: 0, Channel: 0, CJCTemp: f(22.0)},
		},
		Boards: map[uint8]*collect.BoardInfo{},
	}

	out, err := render.JSON(res, singleSource())
	require.NoError(t, err)
	assert.NotContains(t, out, "TEMPERATURE", "Failed reads are omitted, not zeroed")
	assert.NotContains(t, out, "ADC")
	assert.Contains(t, out, `"CJC":22`)
	assert.Contains(t, out, `"ADDRESS":0`, "Address and channel always present")
	assert.Contains(t, out, `"CHANNEL":0`)
}

func TestJSONStaticFields(t *testing.T) {
	interval := uint8(2)
	res := &collect.Result{
		Readings: []collect.ChannelReading{
			{Address: 0, Channel: 1},
		},
		Boards: map[uint8]*collect.BoardInfo{
			0: {
				Address:        0,
				Serial:         "01E5B3C2",
				UpdateInterval: &interval,
				Channels: [hardware.NumChannels]collect.ChannelConfig{
					1: {
						CalDate:   "2024-03-01",
						CalCoeffs: &hardware.Calibration{Slope: 1.0005, Offset: -0.25},
					},
				},
			},
		},
	}
	sources := []config.Source{{Key: "T1", Address: 0, Channel: 1}}

	out, err := render.JSON(res, sources)
	require.NoError(t, err)
	assert.Contains(t, out, `"SERIAL":"01E5B3C2"`)
	assert.Contains(t, out, `"UPDATE_INTERVAL":2`)
	assert.Contains(t, out, `"CALIBRATION":{"DATE":"2024-03-01","SLOPE":1.0005,"OFFSET":-0.25}`)
}

func TestJSONKeylessSource(t *testing.T) {
	res := &collect.Result{
		Readings: []collect.ChannelReading{
			{Address: 3, Channel: 2, Temperature: f(25)},
		},
		Boards: map[uint8]*collect.BoardInfo{},
	}

	out, err := render.JSON(res, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"ADDRESS":3,"CHANNEL":2,"TEMPERATURE":25}`, out)
}

func TestTable(t *testing.T) {
	res := &collect.Result{
		Readings: []collect.ChannelReading{
			{Address: 0, Channel: 0, Temperature: f(23.456789), CJCTemp: f(22.1)},
		},
		Boards: map[uint8]*collect.BoardInfo{},
	}

	var buf bytes.Buffer
	render.Table(&buf, res, singleSource(), false)
	out := buf.String()

	assert.Contains(t, out, "T1 (Address: 0, Channel: 0):")
	assert.Contains(t, out, "Temperature")
	assert.Contains(t, out, "23.456789 degC")
	assert.Contains(t, out, "22.100000 degC")
	assert.Equal(t, 2, strings.Count(out, "----------------------------------------"))
}

func TestTableClean(t *testing.T) {
	res := &collect.Result{
		Readings: []collect.ChannelReading{
			{Address: 0, Channel: 0, Temperature: f(23.4)},
		},
		Boards: map[uint8]*collect.BoardInfo{},
	}

	var buf bytes.Buffer
	render.Table(&buf, res, singleSource(), true)
	assert.NotContains(t, buf.String(), "----", "Clean mode drops the separators")
}

func TestBoardsTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	render.BoardsTable(&buf, nil)
	assert.Contains(t, buf.String(), "No MCC 134 boards detected.")
}

func TestBoardsJSON(t *testing.T) {
	out, err := render.BoardsJSON([]hardware.BoardDesc{
		{Address: 0, ID: "0x0143", ProductName: "MCC 134"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, `"boards"`)
	assert.Contains(t, out, `"address": 0`)
	assert.Contains(t, out, `"id": "0x0143"`)
	assert.Contains(t, out, `"name": "MCC 134"`)
}
