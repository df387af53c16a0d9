package types

// RunMode is the mode the engine host process runs in
type RunMode string

const (
	RunModeLocal RunMode = "local"
	RunModeProd  RunMode = "prod"
)

// LogLevel is the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
