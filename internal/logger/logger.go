package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the application-wide logger type, aliased to zerolog.Logger.
// Other packages depend on certview/internal/logger instead of importing zerolog directly.
type Logger = zerolog.Logger

// Event is an alias for zerolog.Event to allow building log entries without importing zerolog.
type Event = zerolog.Event

// Options selects the logger's level, format and destinations.
type Options struct {
	Level    string
	Format   string // "console" or "json"
	Output   string // "stdout", "file" or "both"
	FilePath string
}

// Init configures the global logger. Problems with the requested outputs are
// reported once the logger is usable instead of failing startup.
func Init(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	outputMode := strings.ToLower(strings.TrimSpace(opts.Output))
	if outputMode == "" {
		outputMode = "stdout"
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}
	filePath := strings.TrimSpace(opts.FilePath)

	writers := make([]io.Writer, 0, 2)
	var warnings []string

	if outputMode == "stdout" || outputMode == "both" {
		writers = append(writers, formatWriter(os.Stdout, format))
	}
	if outputMode == "file" || outputMode == "both" {
		if filePath == "" {
			warnings = append(warnings, "file logging requested but no file path is set; disabling file logging")
		} else if file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to open log file %q, disabling file logging: %v", filePath, err))
		} else {
			writers = append(writers, formatWriter(file, format))
		}
	}
	if len(writers) == 0 {
		writers = append(writers, formatWriter(os.Stdout, "console"))
		warnings = append(warnings, "no valid log output configured, falling back to stdout console")
	}

	var output io.Writer = writers[0]
	if len(writers) > 1 {
		output = zerolog.MultiLevelWriter(writers...)
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || lvl == zerolog.NoLevel {
		warnings = append(warnings, fmt.Sprintf("invalid log level %q, defaulting to info", opts.Level))
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(output).Level(lvl).With().Timestamp().Logger()

	for _, msg := range warnings {
		log.Warn().Msg(msg)
	}
	log.Debug().
		Str("level", lvl.String()).
		Str("output_mode", outputMode).
		Str("format", format).
		Str("log_file_path", filePath).
		Msg("Logger initialized")
}

func formatWriter(w io.Writer, format string) io.Writer {
	if format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
}

// Get returns a pointer to the configured logger instance.
func Get() *zerolog.Logger {
	return &log.Logger
}

// SetOutput redirects log output, mostly for capturing logs in tests.
func SetOutput(w io.Writer) {
	log.Logger = log.Output(w)
}

// HTTPEvent logs HTTP request events with standardized fields.
func HTTPEvent(method, path string, status int, durationMs float64) *zerolog.Event {
	return log.Info().
		Str("event_category", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Float64("duration_ms", durationMs)
}

// HTTPError logs HTTP error events.
func HTTPError(method, path string, status int, err error) *zerolog.Event {
	return log.Error().
		Str("event_category", "http").
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Err(err)
}

// ViewEvent logs fetch and render cycle events for one request sequence number.
func ViewEvent(action string, seq uint64, showAll bool) *zerolog.Event {
	return log.Debug().
		Str("event_category", "view").
		Str("action", action).
		Uint64("seq", seq).
		Bool("show_all", showAll)
}

// ViewError logs a failed fetch cycle.
func ViewError(seq uint64, showAll bool, kind string, err error) *zerolog.Event {
	return log.Warn().
		Str("event_category", "view").
		Uint64("seq", seq).
		Bool("show_all", showAll).
		Str("kind", kind).
		Err(err)
}

// PanicEvent logs panic recovery events.
func PanicEvent(err interface{}, stack string) *zerolog.Event {
	return log.Error().
		Str("event_category", "panic").
		Interface("error", err).
		Str("stack", stack)
}
