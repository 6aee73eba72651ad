// Package render turns collection results into operator-facing output:
// compact JSON or aligned key/value tables.
package render

import (
	"encoding/json"

	"github.com/tom1484/cmg-10m-thermal/internal/collect"
	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
)

type calibrationJSON struct {
	Date   string   `json:"DATE,omitempty"`
	Slope  *float64 `json:"SLOPE,omitempty"`
	Offset *float64 `json:"OFFSET,omitempty"`
}

type readingJSON struct {
	Key            string           `json:"KEY,omitempty"`
	Address        uint8            `json:"ADDRESS"`
	Channel        uint8            `json:"CHANNEL"`
	Serial         string           `json:"SERIAL,omitempty"`
	Calibration    *calibrationJSON `json:"CALIBRATION,omitempty"`
	UpdateInterval *uint8           `json:"UPDATE_INTERVAL,omitempty"`
	Temperature    *float64         `json:"TEMPERATURE,omitempty"`
	ADC            *float64         `json:"ADC,omitempty"`
	CJC            *float64         `json:"CJC,omitempty"`
}

// JSON renders a collection result as one compact line. A single source
// yields a flat object; multiple sources yield an array. Fields whose reads
// failed are omitted rather than zeroed.
func JSON(res *collect.Result, sources []config.Source) (string, error) {
	objs := make([]readingJSON, 0, len(res.Readings))
	for i, reading := range res.Readings {
		var key string
		if i < len(sources) {
			key = sources[i].Key
		}
		objs = append(objs, buildReadingJSON(reading, res.Boards[reading.Address], key))
	}

	var (
		data []byte
		err  error
	)
	if len(objs) == 1 {
		data, err = json.Marshal(objs[0])
	} else {
		data, err = json.Marshal(objs)
	}
	if err != nil {
		return "", errors.New().Wrap(errors.ErrInternal, err)
	}

	return string(data), nil
}

func buildReadingJSON(reading collect.ChannelReading, info *collect.BoardInfo, key string) readingJSON {
	obj := readingJSON{
		Key:         key,
		Address:     reading.Address,
		Channel:     reading.Channel,
		Temperature: reading.Temperature,
		ADC:         reading.ADCVoltage,
		CJC:         reading.CJCTemp,
	}

	if info == nil {
		return obj
	}

	obj.Serial = info.Serial
	if info.UpdateInterval != nil {
		obj.UpdateInterval = info.UpdateInterval
	}

	if reading.Channel < hardware.NumChannels {
		ch := info.Channels[reading.Channel]
		if ch.CalDate != "" || ch.CalCoeffs != nil {
			cal := &calibrationJSON{Date: ch.CalDate}
			if ch.CalCoeffs != nil {
				cal.Slope = &ch.CalCoeffs.Slope
				cal.Offset = &ch.CalCoeffs.Offset
			}
			obj.Calibration = cal
		}
	}

	return obj
}

// BoardsJSON renders the board list as {"boards":[...]}.
func BoardsJSON(boards []hardware.BoardDesc) (string, error) {
	type boardJSON struct {
		Address uint8  `json:"address"`
		ID      string `json:"id"`
		Name    string `json:"name"`
	}

	out := struct {
		Boards []boardJSON `json:"boards"`
	}{
		Boards: make([]boardJSON, 0, len(boards)),
	}
	for _, b := range boards {
		out.Boards = append(out.Boards, boardJSON{
			Address: b.Address,
			ID:      b.ID,
			Name:    b.ProductName,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", errors.New().Wrap(errors.ErrInternal, err)
	}

	return string(data), nil
}
