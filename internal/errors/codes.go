package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrNotImplemented  ErrorCode = "not_implemented"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig  ErrorCode = "invalid_configuration"
	ErrMissingConfig  ErrorCode = "missing_configuration"
	ErrReadConfig     ErrorCode = "read_config_failed"
	ErrWriteConfig    ErrorCode = "write_config_failed"
	ErrInvalidSource  ErrorCode = "invalid_source"
	ErrNoSources      ErrorCode = "no_sources_defined"
	ErrInvalidAddress ErrorCode = "invalid_board_address"
	ErrInvalidChannel ErrorCode = "invalid_channel"
	ErrInvalidTCType  ErrorCode = "invalid_tc_type"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Resource errors
	ErrResourceBusy      ErrorCode = "resource_busy"
	ErrResourceNotFound  ErrorCode = "resource_not_found"
	ErrResourceExhausted ErrorCode = "resource_exhausted"

	// Operation errors
	ErrOperationFailed  ErrorCode = "operation_failed"
	ErrTimeout          ErrorCode = "operation_timeout"
	ErrInvalidOperation ErrorCode = "invalid_operation"
	ErrCancelled        ErrorCode = "operation_cancelled"

	// Child process errors
	ErrChildSpawn  ErrorCode = "child_spawn_failed"
	ErrChildFailed ErrorCode = "child_process_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:          "Internal error occurred",
	ErrInvalidArgument:   "Invalid argument provided",
	ErrNotImplemented:    "Operation not implemented",
	ErrUnavailable:       "Service unavailable",
	ErrInvalidConfig:     "Invalid configuration",
	ErrMissingConfig:     "Missing configuration",
	ErrReadConfig:        "Failed to read configuration",
	ErrWriteConfig:       "Failed to write configuration",
	ErrInvalidSource:     "Invalid source definition",
	ErrNoSources:         "No sources defined",
	ErrInvalidAddress:    "Board address must be 0-7",
	ErrInvalidChannel:    "Channel must be 0-3",
	ErrInvalidTCType:     "Unknown thermocouple type",
	ErrInvalidLogLevel:   "Invalid log level",
	ErrInitFailed:        "Initialization failed",
	ErrShutdownFailed:    "Shutdown failed",
	ErrAlreadyRunning:    "Another instance is already running",
	ErrResourceBusy:      "Resource is busy",
	ErrResourceNotFound:  "Resource not found",
	ErrResourceExhausted: "Resource exhausted",
	ErrOperationFailed:   "Operation failed",
	ErrTimeout:           "Operation timed out",
	ErrInvalidOperation:  "Invalid operation",
	ErrCancelled:         "Operation cancelled",
	ErrChildSpawn:        "Failed to spawn child process",
	ErrChildFailed:       "Child process terminated abnormally",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
