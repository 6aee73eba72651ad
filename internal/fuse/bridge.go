// Package fuse runs a child process and rewrites its stdout line stream,
// injecting a capture timestamp and fresh thermocouple readings into every
// JSON object the child emits. Non-JSON lines pass through untouched, so the
// child's human-readable output survives the rewrite.
package fuse

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/tom1484/cmg-10m-thermal/internal/board"
	"github.com/tom1484/cmg-10m-thermal/internal/config"
	"github.com/tom1484/cmg-10m-thermal/internal/errors"
	"github.com/tom1484/cmg-10m-thermal/internal/hardware"
	"github.com/tom1484/cmg-10m-thermal/internal/logger"
)

// State tracks the bridge lifecycle. Transitions only move forward; a bridge
// is single-use.
type State int

const (
	StateIdle State = iota
	StateBoardsReady
	StatePiping
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBoardsReady:
		return "boards_ready"
	case StatePiping:
		return "piping"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// defaultCommand is the child argv prefix. cmg-cli is the external data
// producer this tool wraps, not this binary. stdbuf forces the child into
// line-buffered output so the bridge sees lines as they are produced instead
// of in pipe-sized bursts.
var defaultCommand = []string{"stdbuf", "-oL", "-eL", "cmg-cli", "get"}

// Bridge owns the boards and the child process for one fuse session.
type Bridge struct {
	svc        hardware.Service
	mgr        *board.Manager
	sources    []config.Source
	childArgs  []string
	timeFormat string
	log        logger.Logger
	state      State

	// Command is the child argv prefix; childArgs are appended after it.
	// Overridable for tests.
	Command []string
	// Stdout receives the rewritten stream. Defaults to os.Stdout.
	Stdout io.Writer
}

func NewBridge(svc hardware.Service, sources []config.Source, childArgs []string, timeFormat string, log logger.Logger) *Bridge {
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}

	return &Bridge{
		svc:        svc,
		mgr:        board.NewManager(svc, log),
		sources:    sources,
		childArgs:  childArgs,
		timeFormat: timeFormat,
		log:        log,
		state:      StateIdle,
		Command:    defaultCommand,
		Stdout:     os.Stdout,
	}
}

// State returns the bridge's current lifecycle state.
func (b *Bridge) State() State {
	return b.state
}

// Run drives the whole session: open and configure the boards, spawn the
// child, rewrite its output line by line until EOF or cancellation, then
// drain and close. The returned exit code mirrors the child's when it exited
// normally, and is 1 otherwise. Boards are closed on every path.
func (b *Bridge) Run(ctx context.Context) (int, error) {
	errFactory := errors.New()

	if err := b.mgr.Init(b.sources); err != nil {
		b.state = StateClosed
		return 1, err
	}
	defer func() {
		b.mgr.Close()
		b.state = StateClosed
	}()

	b.mgr.Configure(b.sources)
	b.svc.WaitForReadings()
	b.state = StateBoardsReady

	argv := append(append([]string{}, b.Command...), withJSONFlag(b.childArgs)...)
	b.log.Debug().Strs("argv", argv).Msg("Spawning child process")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 1, errFactory.Wrap(errors.ErrChildSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		return 1, errFactory.Wrap(errors.ErrChildSpawn, err)
	}
	b.state = StatePiping

	// ReadString grows to fit the line, so a child emitting arbitrarily long
	// lines stalls neither the rewrite nor the pipe.
	reader := bufio.NewReader(stdout)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			fmt.Fprintln(b.Stdout, b.rewriteLine(strings.TrimSuffix(line, "\n")))
		}
		if err != nil {
			if err != io.EOF {
				b.log.Warn().Err(err).Msg("Child output read failed")
			}
			break
		}

		if ctx.Err() != nil {
			break
		}
	}

	b.state = StateDraining

	// The child may still be writing into the pipe; keep consuming so it can
	// reach its own exit instead of blocking forever on a full pipe.
	if _, err := io.Copy(io.Discard, stdout); err != nil {
		b.log.Debug().Err(err).Msg("Child output drain failed")
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return exitErr.ExitCode(), nil
		}
		return 1, errFactory.Wrap(errors.ErrChildFailed, err)
	}

	return 0, nil
}

// rewriteLine returns the line to emit for one child output line. A line that
// parses as a JSON object gains TIMESTAMP and THERMOCOUPLE members; anything
// else is returned verbatim.
func (b *Bridge) rewriteLine(line string) string {
	ts := time.Now()

	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		return line
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return line
	}

	var buf bytes.Buffer
	buf.WriteString(trimmed[:len(trimmed)-1])
	if len(obj) > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"TIMESTAMP":`)
	quoted, _ := json.Marshal(FormatTimestamp(ts, b.timeFormat))
	buf.Write(quoted)
	buf.WriteString(`,"THERMOCOUPLE":`)
	buf.Write(b.acquire())
	buf.WriteByte('}')

	return buf.String()
}

// fusedValue marshals NaN as null so a failed reading stays representable in
// the fixed output schema.
type fusedValue float64

func (v fusedValue) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(v)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(v))
}

type fusedReading struct {
	Temp fusedValue `json:"TEMP"`
	ADC  fusedValue `json:"ADC"`
	CJC  fusedValue `json:"CJC"`
}

// acquire reads every configured source once and encodes the result in source
// order. A failed read becomes NaN rather than dropping the key; the schema
// never changes shape between lines.
func (b *Bridge) acquire() []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, src := range b.sources {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(src.Key)
		buf.Write(key)
		buf.WriteByte(':')

		val, _ := json.Marshal(fusedReading{
			Temp: b.readOrNaN(src, b.svc.ReadTemperature),
			ADC:  b.readOrNaN(src, b.svc.ReadADC),
			CJC:  b.readOrNaN(src, b.svc.ReadCJC),
		})
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes()
}

func (b *Bridge) readOrNaN(src config.Source, read func(address, channel uint8) (float64, error)) fusedValue {
	v, err := read(src.Address, src.Channel)
	if err != nil {
		b.log.Debug().
			Err(err).
			Str("key", src.Key).
			Msg("Reading failed, emitting null")
		return fusedValue(math.NaN())
	}
	return fusedValue(v)
}

// withJSONFlag returns args with --json appended unless the caller already
// asked for it. The bridge can only rewrite machine-readable output.
func withJSONFlag(args []string) []string {
	for _, a := range args {
		if a == "--json" || a == "-j" {
			return args
		}
	}
	return append(append([]string{}, args...), "--json")
}
