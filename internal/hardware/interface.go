package hardware

// Service is the boundary to the physical thermocouple boards. All calls are
// synchronous and fail independently; callers decide whether a failure is
// fatal. A board must be open before any per-board call, and a channel's
// thermocouple type must be set before temperature or ADC reads are defined.
type Service interface {
	// Lifecycle
	Open(address uint8) error
	Close(address uint8) error
	IsOpen(address uint8) bool

	// Discovery (no open required)
	ListBoards() ([]BoardDesc, error)

	// Static board attributes
	Serial(address uint8) (string, error)
	CalibrationDate(address uint8) (string, error)
	CalibrationCoeffs(address, channel uint8) (Calibration, error)
	UpdateInterval(address uint8) (uint8, error)

	// Configuration writes
	SetCalibrationCoeffs(address, channel uint8, cal Calibration) error
	SetUpdateInterval(address uint8, interval uint8) error
	SetTCType(address, channel uint8, tc TCType) error

	// Instantaneous readings
	ReadTemperature(address, channel uint8) (float64, error)
	ReadADC(address, channel uint8) (float64, error)
	ReadCJC(address, channel uint8) (float64, error)

	// WaitForReadings blocks until the board's conversion cycle has
	// produced values for freshly configured channels.
	WaitForReadings()
}
