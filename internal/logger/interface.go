package logger

import "github.com/tom1484/cmg-10m-thermal/internal/errors"

// Logger defines the interface for logging operations.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
}

// global satisfies Logger by delegating to the package-level logger.
type global struct{}

func (global) Debug() *LogEvent { return Debug() }
func (global) Info() *LogEvent  { return Info() }
func (global) Warn() *LogEvent  { return Warn() }
func (global) Error() *LogEvent { return Error() }

func (global) ErrorWithCode(err errors.Error) *LogEvent { return ErrorWithCode(err) }

// Default returns a Logger backed by the package-level logger.
func Default() Logger {
	return global{}
}
