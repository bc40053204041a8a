package config

const (
	MinMaxDigits = 1
	MaxMaxDigits = 15
	MinPrecision = 0
	MaxPrecision = 15
)

type Config interface {
	MaxDigits() int
	Precision() int
	AllowNonRootAccess() bool
	// AutoClear is a cron expression for clearing the session, "" when off.
	AutoClear() string

	SetMaxDigits(int)
	SetPrecision(int)
	SetAllowNonRootAccess(bool)
	SetAutoClear(string)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
