package render

import (
	"fmt"
	"io"
	"math"

	"github.com/tom1484/cmg-10m-thermal/internal/collect"
	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
)

const (
	tableIndent    = "    "
	tableSeparator = "----------------------------------------"
)

type tableRow struct {
	label string
	value string
	unit  string
}

// Table renders a collection result as aligned key/value blocks, one per
// source, in registry order. clean suppresses the separator lines so the
// output can be consumed by line-oriented tools.
func Table(w io.Writer, res *collect.Result, sources []config.Source, clean bool) {
	if !clean {
		fmt.Fprintln(w, tableSeparator)
	}

	for i, reading := range res.Readings {
		var key string
		if i < len(sources) {
			key = sources[i].Key
		}

		if key != "" {
			fmt.Fprintf(w, "%s (Address: %d, Channel: %d):\n", key, reading.Address, reading.Channel)
		} else {
			fmt.Fprintf(w, "Address: %d, Channel: %d:\n", reading.Address, reading.Channel)
		}

		rows := buildRows(reading, res.Boards[reading.Address])
		printRows(w, rows)

		if !clean {
			fmt.Fprintln(w, tableSeparator)
		}
	}

	if clean {
		fmt.Fprintln(w)
	}
}

func buildRows(reading collect.ChannelReading, info *collect.BoardInfo) []tableRow {
	var rows []tableRow

	if info != nil {
		if info.Serial != "" {
			rows = append(rows, tableRow{label: "Serial", value: info.Serial})
		}
		if reading.Channel < hardware.NumChannels {
			ch := info.Channels[reading.Channel]
			if ch.CalDate != "" {
				rows = append(rows, tableRow{label: "Calibration Date", value: ch.CalDate})
			}
			if ch.CalCoeffs != nil {
				rows = append(rows,
					tableRow{label: "Slope", value: formatValue(ch.CalCoeffs.Slope)},
					tableRow{label: "Offset", value: formatValue(ch.CalCoeffs.Offset)},
				)
			}
		}
		if info.UpdateInterval != nil {
			rows = append(rows, tableRow{
				label: "Update Interval",
				value: fmt.Sprintf("%d", *info.UpdateInterval),
				unit:  "s",
			})
		}
	}

	if reading.Temperature != nil {
		rows = append(rows, tableRow{label: "Temperature", value: formatValue(*reading.Temperature), unit: "degC"})
	}
	if reading.ADCVoltage != nil {
		rows = append(rows, tableRow{label: "ADC", value: formatValue(*reading.ADCVoltage), unit: "V"})
	}
	if reading.CJCTemp != nil {
		rows = append(rows, tableRow{label: "CJC", value: formatValue(*reading.CJCTemp), unit: "degC"})
	}

	return rows
}

func printRows(w io.Writer, rows []tableRow) {
	labelWidth, valueWidth := 0, 0
	for _, row := range rows {
		if len(row.label) > labelWidth {
			labelWidth = len(row.label)
		}
		if len(row.value) > valueWidth {
			valueWidth = len(row.value)
		}
	}

	for _, row := range rows {
		if row.unit != "" {
			fmt.Fprintf(w, "%s%-*s: %*s %s\n", tableIndent, labelWidth, row.label, valueWidth, row.value, row.unit)
		} else {
			fmt.Fprintf(w, "%s%-*s: %*s\n", tableIndent, labelWidth, row.label, valueWidth, row.value)
		}
	}
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}

	return fmt.Sprintf("%.6f", v)
}

// BoardsTable renders the board list as a simple aligned table.
func BoardsTable(w io.Writer, boards []hardware.BoardDesc) {
	if len(boards) == 0 {
		fmt.Fprintln(w, "No MCC 134 boards detected.")
		return
	}

	nameWidth := len("Name")
	for _, b := range boards {
		if len(b.ProductName) > nameWidth {
			nameWidth = len(b.ProductName)
		}
	}

	fmt.Fprintf(w, "%-7s  %-7s  %-*s\n", "Address", "ID", nameWidth, "Name")
	for _, b := range boards {
		fmt.Fprintf(w, "%-7d  %-7s  %-*s\n", b.Address, b.ID, nameWidth, b.ProductName)
	}
}
