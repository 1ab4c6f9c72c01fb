package log

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

// Level controls logger verbosity.
type Level logging.Level

// Supported verbosity levels, from most to least verbose.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var (
	format = logging.MustStringFormatter(
		`%{color}[%{time:15:04:05.000}] [%{module}] [%{level:.4s}]%{color:reset} %{message}`,
	)

	backend      logging.LeveledBackend
	currentLevel = Notice
)

// The logger interface used by all packages.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Noticef(format string, v ...interface{})
	Warningf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new logger for the named module.
func New(module string) Logger {
	return logging.MustGetLogger(module)
}

// Redirect log output to sink. The current verbosity is preserved.
func SetSink(sink io.Writer) {
	formatted := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	backend = logging.AddModuleLevel(formatted)
	logging.SetBackend(backend)
	SetLevel(currentLevel)
}

// Set logger verbosity for all modules.
func SetLevel(level Level) {
	currentLevel = level
	backend.SetLevel(toBackendLevel(level), "")
}

// Parse a level name such as "debug" or "warning". Unknown names map to
// Notice.
func ParseLevel(name string) Level {
	switch strings.ToLower(name) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "warning", "warn":
		return Warning
	case "error":
		return Error
	}
	return Notice
}

func toBackendLevel(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	}
	return logging.NOTICE
}

func init() {
	SetSink(os.Stdout)
}
