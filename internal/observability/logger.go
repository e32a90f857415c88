// Package observability provides structured logging, Prometheus
// metrics, and optional OpenTelemetry tracing for a disktest run.
package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog for structured logging.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new structured logger tagged with a run ID.
func NewLogger(runID string, quiet int, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	switch {
	case quiet >= 2:
		level = zerolog.Disabled
	case quiet == 1:
		level = zerolog.WarnLevel
	}

	logger := zerolog.New(output).Level(level).With().
		Timestamp().
		Str("service", "disktest").
		Str("run_id", runID).
		Logger()

	return &Logger{logger: logger}
}

// WithDevice adds device-path context to the logger.
func (l *Logger) WithDevice(path string) *Logger {
	return &Logger{logger: l.logger.With().Str("device", path).Logger()}
}

// Error logs an error message.
func (l *Logger) Error(err error, msg string) {
	l.logger.Error().Err(err).Msg(msg)
}

// RunStarted logs the start of a write or verify run.
func (l *Logger) RunStarted(mode string, seek, maxBytes uint64, algorithm string, threads int) {
	l.logger.Info().
		Str("mode", mode).
		Uint64("seek", seek).
		Uint64("max_bytes", maxBytes).
		Str("algorithm", algorithm).
		Int("threads", threads).
		Msg("run started")
}

// Progress logs periodic byte-accounting progress.
func (l *Logger) Progress(mode string, bytesDone uint64, human string) {
	l.logger.Info().
		Str("mode", mode).
		Uint64("bytes", bytesDone).
		Str("human", human).
		Msg("progress")
}

// Mismatch logs a verify mismatch at a byte offset.
func (l *Logger) Mismatch(offset uint64) {
	l.logger.Error().
		Uint64("offset", offset).
		Msg("verify mismatch")
}

// RunCompleted logs successful completion of a run.
func (l *Logger) RunCompleted(mode string, bytesDone uint64, human string, elapsed time.Duration) {
	l.logger.Info().
		Str("mode", mode).
		Uint64("bytes", bytesDone).
		Str("human", human).
		Float64("elapsed_seconds", elapsed.Seconds()).
		Msg("run completed")
}

// NoSpace logs the graceful write-terminated-by-no-space path.
func (l *Logger) NoSpace(bytesWritten uint64, human string) {
	l.logger.Info().
		Uint64("bytes", bytesWritten).
		Str("human", human).
		Msg("device full, write terminated successfully")
}
