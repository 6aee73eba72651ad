package fuse

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

func testBridge(t *testing.T, configure bool) *Bridge {
	t.Helper()
	logger.Init(false, false, "")
	log := logger.Default()

	svc := hardware.NewSim(log, 0)
	require.NoError(t, svc.Open(0))
	t.Cleanup(func() { svc.Close(0) })
	if configure {
		require.NoError(t, svc.SetTCType(0, 0, hardware.TCTypeK))
	}

	sources := []config.Source{{Key: "T1", Address: 0, Channel: 0}}
	return NewBridge(svc, sources, nil, "", log)
}

func TestRewriteLinePassThrough(t *testing.T) {
	b := testBridge(t, true)

	for _, line := range []string{
		"plain text",
		"",
		"[1,2,3]",
		`"just a string"`,
		"{not json",
		"null",
	} {
		assert.Equal(t, line, b.rewriteLine(line), "Non-object lines must pass through byte for byte")
	}
}

func TestRewriteLineInjectsMembers(t *testing.T) {
	b := testBridge(t, true)

	out := b.rewriteLine(`{"a":1}`)
	assert.True(t, strings.HasPrefix(out, `{"a":1,"TIMESTAMP":"`), "Original members keep their position: %s", out)
	assert.True(t, json.Valid([]byte(out)), "Rewritten line must stay valid JSON: %s", out)

	var obj struct {
		A            int                `json:"a"`
		Timestamp    string             `json:"TIMESTAMP"`
		Thermocouple map[string]struct {
			Temp *float64 `json:"TEMP"`
			ADC  *float64 `json:"ADC"`
			CJC  *float64 `json:"CJC"`
		} `json:"THERMOCOUPLE"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	assert.Equal(t, 1, obj.A)
	assert.NotEmpty(t, obj.Timestamp)
	require.Contains(t, obj.Thermocouple, "T1")
	assert.NotNil(t, obj.Thermocouple["T1"].Temp)
	assert.NotNil(t, obj.Thermocouple["T1"].ADC)
	assert.NotNil(t, obj.Thermocouple["T1"].CJC)
}

func TestRewriteLineEmptyObject(t *testing.T) {
	b := testBridge(t, true)

	out := b.rewriteLine("{}")
	assert.True(t, strings.HasPrefix(out, `{"TIMESTAMP":"`), "No leading comma in an empty object: %s", out)
	assert.True(t, json.Valid([]byte(out)))
}

func TestRewriteLineFailedReadingIsNull(t *testing.T) {
	// Thermocouple type never set: every read fails.
	b := testBridge(t, false)

	out := b.rewriteLine(`{"seq":7}`)
	require.True(t, json.Valid([]byte(out)), out)
	assert.Contains(t, out, `"TEMP":null`)
	assert.Contains(t, out, `"ADC":null`)
	assert.Contains(t, out, `"CJC":null`)
}

func TestDefaultCommandWrapsExternalProducer(t *testing.T) {
	b := testBridge(t, true)
	// cmg-cli is the wrapped external program, not this binary.
	assert.Equal(t, []string{"stdbuf", "-oL", "-eL", "cmg-cli", "get"}, b.Command)
}

func TestWithJSONFlag(t *testing.T) {
	assert.Equal(t, []string{"--json"}, withJSONFlag(nil))
	assert.Equal(t, []string{"-a", "0", "--json"}, withJSONFlag([]string{"-a", "0"}))
	assert.Equal(t, []string{"--json", "-a", "0"}, withJSONFlag([]string{"--json", "-a", "0"}))
	assert.Equal(t, []string{"-j"}, withJSONFlag([]string{"-j"}))
}

func TestRunRewritesChildStream(t *testing.T) {
	logger.Init(false, false, "")
	log := logger.Default()

	svc := hardware.NewSim(log, 0)
	sources := []config.Source{{Key: "T1", Address: 0, Channel: 0, TCType: hardware.TCTypeK, Calibration: config.DefaultCalibration(), UpdateInterval: config.DefaultUpdateInterval}}

	b := NewBridge(svc, sources, nil, "", log)
	b.Command = []string{"sh", "-c", `printf 'starting\n{"seq":1}\n'`}
	var out bytes.Buffer
	b.Stdout = &out

	code, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, StateClosed, b.State())
	assert.False(t, svc.IsOpen(0), "Boards closed after the child exits")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "starting", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `{"seq":1,"TIMESTAMP":"`), lines[1])
	assert.Contains(t, lines[1], `"THERMOCOUPLE":{"T1":{"TEMP":`)
}

func TestRunHandlesOverlongLines(t *testing.T) {
	logger.Init(false, false, "")
	log := logger.Default()

	svc := hardware.NewSim(log, 0)
	sources := []config.Source{{Key: "T1", Address: 0, Channel: 0, TCType: hardware.TCTypeK}}

	// A 3 MB line followed by structured output. The child keeps writing
	// past the line, so any reader that gives up mid-line would leave it
	// blocked on a full pipe and the bridge stuck holding the boards.
	b := NewBridge(svc, sources, nil, "", log)
	b.Command = []string{"sh", "-c",
		`head -c 3000000 /dev/zero | tr '\0' a; echo; echo '{"seq":1}'`}
	var out bytes.Buffer
	b.Stdout = &out

	done := make(chan struct{})
	var code int
	var err error
	go func() {
		code, err = b.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("bridge did not finish after an over-long line")
	}

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.False(t, svc.IsOpen(0), "Boards released after the child exits")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 3000000, "Long line passes through whole")
	assert.True(t, strings.HasPrefix(lines[1], `{"seq":1,"TIMESTAMP":"`), "Rewriting resumes after the long line")
}

func TestRunPropagatesChildExitCode(t *testing.T) {
	logger.Init(false, false, "")
	log := logger.Default()

	svc := hardware.NewSim(log, 0)
	sources := []config.Source{{Key: "T1", Address: 0, Channel: 0, TCType: hardware.TCTypeK}}

	b := NewBridge(svc, sources, nil, "", log)
	b.Command = []string{"sh", "-c", "exit 3"}
	b.Stdout = &bytes.Buffer{}

	code, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunCancellation(t *testing.T) {
	logger.Init(false, false, "")
	log := logger.Default()

	svc := hardware.NewSim(log, 0)
	sources := []config.Source{{Key: "T1", Address: 0, Channel: 0, TCType: hardware.TCTypeK}}

	b := NewBridge(svc, sources, nil, "", log)
	b.Command = []string{"sh", "-c", `printf '{"seq":1}\n'; sleep 30`}
	var out bytes.Buffer
	b.Stdout = &out

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	code, _ := b.Run(ctx)
	assert.Less(t, time.Since(start), 5*time.Second, "Cancellation must not wait for the child's sleep")
	assert.NotEqual(t, 0, code, "A killed child is not a clean exit")
	assert.False(t, svc.IsOpen(0))
	assert.Contains(t, out.String(), `"seq":1`, "Lines before cancellation are delivered")
}
