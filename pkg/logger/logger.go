// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level  string    // zerolog level name, info when empty or unknown
	Pretty bool      // Enable pretty console output
	File   string    // Optional rotating log file
	Out    io.Writer // Console writer, os.Stdout when nil
}

// New creates a new structured logger
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	console := cfg.Out
	if console == nil {
		console = os.Stdout
	}

	output := console
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: "15:04:05",
		}
	}

	var fileErr error
	if cfg.File != "" {
		if fileErr = os.MkdirAll(filepath.Dir(cfg.File), 0o755); fileErr == nil {
			output = io.MultiWriter(output, RotatingFile(cfg.File))
		}
	}

	l := zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()

	if fileErr != nil {
		l.Warn().Err(fileErr).Str("file", cfg.File).Msg("File logging disabled, cannot create log directory")
	}
	return l
}

// RotatingFile returns a size-rotated, compressed log file writer.
func RotatingFile(filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}
}

// SetGlobalLogger sets the package-level logger
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
