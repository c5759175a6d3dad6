package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// transport owns the ring buffer and log-socket connection Init wires in
// when Config.SocketPath is set. nil when the transport is disabled.
var transport *ringSink

// Level represents a log level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer

	// SocketPath, if set, is a local socket Init ships newline-terminated
	// JSON log records to, per §6. Unreachable at startup is not fatal:
	// records buffer in a 1024-entry ring until a connection succeeds.
	SocketPath string
}

// Init initializes the global logger. Calling it again replaces Logger and,
// if a transport was already running, stops it before starting a new one.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}

	if transport != nil {
		transport.stop()
		transport = nil
	}
	if cfg.SocketPath != "" {
		transport = newRingSink(cfg.SocketPath)
		Logger = Logger.Hook(transport)
	}
}

// StopTransport stops the log-socket drain goroutine, if one is running.
// Safe to call even when no transport was configured.
func StopTransport() {
	if transport != nil {
		transport.stop()
	}
}

// WithComponent creates a child logger tagging every record with a
// component name (e.g. "scan", "control", "plugin").
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}

func Fatal(msg string) {
	Logger.Fatal().Msg(msg)
}
