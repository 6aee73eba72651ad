package fuse

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTimeFormat is an ISO-8601 local time with 6-digit microseconds.
const DefaultTimeFormat = "%Y-%m-%dT%H:%M:%S.%f"

// FormatTimestamp expands a strftime-style pattern. Only the specifiers the
// bridge documents are supported; %f expands to 6-digit microseconds, which
// time.Format alone cannot express in this position.
func FormatTimestamp(t time.Time, format string) string {
	var b strings.Builder
	b.Grow(len(format) + 16)

	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			b.WriteByte(format[i])
			continue
		}

		i++
		switch format[i] {
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'y':
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'M':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'f':
			fmt.Fprintf(&b, "%06d", t.Nanosecond()/1000)
		case 'j':
			fmt.Fprintf(&b, "%03d", t.YearDay())
		case 'z':
			b.WriteString(t.Format("-0700"))
		case 'Z':
			b.WriteString(t.Format("MST"))
		case '%':
			b.WriteByte('%')
		default:
			// Unknown specifier: emit as-is, matching strftime's
			// common behavior.
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}

	return b.String()
}
