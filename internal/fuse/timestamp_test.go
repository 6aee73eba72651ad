package fuse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, time.January, 2, 3, 4, 5, 678901000, time.UTC)

	tests := []struct {
		format string
		want   string
	}{
		{DefaultTimeFormat, "2024-01-02T03:04:05.678901"},
		{"%Y-%m-%d", "2024-01-02"},
		{"%H:%M:%S", "03:04:05"},
		{"%y%j", "24002"},
		{"100%%", "100%"},
		{"no specifiers", "no specifiers"},
		{"%Q", "%Q"},
		{"trailing %", "trailing %"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(ts, tt.format))
		})
	}
}

func TestFormatTimestampMicrosecondsPadded(t *testing.T) {
	ts := time.Date(2024, time.June, 1, 12, 0, 0, 42000, time.UTC)
	assert.Equal(t, "000042", FormatTimestamp(ts, "%f"))
}
