// Package logger configures the zerolog instance shared by the API
// server, the ops sidecar, and the CLIs.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Log is the shared logger. Entrypoints retag it with their own process
// name via SetService.
var Log zerolog.Logger

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	Log = New("ordena")
}

// New returns a console logger tagged with a service name.
func New(service string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}

	return zerolog.New(output).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Caller().
		Str("service", service).
		Logger()
}

// SetService names the running process in every line the shared logger
// emits.
func SetService(service string) {
	Log = New(service)
}

// SetLevel applies the log level process-wide. The gin "release" server
// mode maps to info.
func SetLevel(levelStr string) {
	if levelStr == "release" {
		levelStr = "info"
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}
