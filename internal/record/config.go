package record

// Config controls the reading logbook.
type Config struct {
	DBPath       string
	BatchSize    int
	BatchTimeout int // seconds
}

// DefaultConfig returns logbook settings suitable for streaming at a few Hz.
func DefaultConfig(path string) Config {
	return Config{
		DBPath:       path,
		BatchSize:    32,
		BatchTimeout: 5,
	}
}
