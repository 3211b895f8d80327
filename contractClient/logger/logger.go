package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rasm-P/Event-Ticket-Smart-Contract/contractClient/config"
)

// Init creates the process logger from the log settings in cfg. Logs go to
// stderr so command output on stdout stays machine readable.
func Init(cfg config.Config) zerolog.Logger {
	return NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogSampler)
}

// New creates a new zerolog logger with the specified configuration.
// Supports console/json format, level filtering, and optional sampling.
func New(logLevel int, logFormat string, logSampler bool) zerolog.Logger {
	return NewWithWriter(os.Stdout, logLevel, logFormat, logSampler)
}

// NewWithWriter is New writing to out.
func NewWithWriter(out io.Writer, logLevel int, logFormat string, logSampler bool) zerolog.Logger {
	writer := out
	if logFormat != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(writer).
		Level(zerolog.Level(logLevel)).
		With().
		Timestamp().
		Logger()

	if logSampler {
		logger = logger.Sample(&zerolog.BasicSampler{N: 5})
	}
	return logger
}
