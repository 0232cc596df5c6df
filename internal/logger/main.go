// Package logger configures the process-wide zerolog logger from the Log
// config section: console and rolling-file sinks split by level, plus a
// prometheus counter per log level.
package logger

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// levelWriter routes log lines to one of two sinks: warnings and worse go
// to the error sink, everything else to the info sink.
type levelWriter struct {
	io.Writer
	errorWriter io.Writer
	infoWriter  io.Writer
}

// WriteLevel implements zerolog.LevelWriter.
func (lw *levelWriter) WriteLevel(l zerolog.Level, p []byte) (n int, err error) {
	if l == zerolog.Disabled {
		return 0, nil
	}

	if l >= zerolog.WarnLevel {
		return lw.errorWriter.Write(p) //nolint:wrapcheck
	}

	return lw.infoWriter.Write(p) //nolint:wrapcheck
}

// Init configures the global zerolog logger.
// With no sink enabled in the config nothing is logged at all.
func Init(cfg Log) error {
	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("loglevel %s is not supported", cfg.LogLevel))
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	// trace level also attaches error stacks
	stack := logLevel == zerolog.TraceLevel
	if stack {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.ErrorHandler = reportWriteFailure //nolint:reassign

	var writers []io.Writer

	if cfg.Console.Enabled {
		writers = append(writers, newConsoleWriter(cfg))
	}

	if cfg.File.Enabled {
		writers = append(writers, newRollingFiles(cfg))
	}

	mw := zerolog.MultiLevelWriter(writers...)
	hook := NewMetricsHook(cfg.ServiceName)

	switch {
	case cfg.ReportCaller && stack:
		log.Logger = zerolog.New(mw).Hook(hook).With().Timestamp().Stack().Logger()
	case cfg.ReportCaller:
		log.Logger = zerolog.New(mw).Hook(hook).With().Timestamp().Caller().Logger()
	default:
		log.Logger = zerolog.New(mw).Hook(hook).With().Timestamp().Logger()
	}

	return nil
}

// reportWriteFailure is installed as zerolog's write-error handler; a broken
// sink must not take the process down with it.
func reportWriteFailure(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "logger: dropped log event: %v\n", err)
}

// newRollingFiles builds the file sinks, a rolling error file and a rolling
// info file, via lumberjack.
func newRollingFiles(cfg Log) io.Writer {
	if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil { //nolint: mnd
		log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

		return nil
	}

	return &levelWriter{
		errorWriter: &lumberjack.Logger{
			Filename:   path.Join(cfg.File.Path, cfg.File.ErrorLog),
			MaxSize:    cfg.File.ErrorMaxSize,
			MaxAge:     cfg.File.ErrorMaxAge,
			MaxBackups: cfg.File.ErrorMaxBackups,
		},
		infoWriter: &lumberjack.Logger{
			Filename:   path.Join(cfg.File.Path, cfg.File.InfoLog),
			MaxSize:    cfg.File.InfoMaxSize,
			MaxAge:     cfg.File.InfoMaxAge,
			MaxBackups: cfg.File.InfoMaxBackups,
		},
	}
}

// newConsoleWriter builds the console sink. Warnings and errors go to
// stderr, the rest to stdout. UseConsoleWriter switches from JSON lines to
// zerolog's human-readable format.
func newConsoleWriter(cfg Log) io.Writer {
	if !cfg.Console.UseConsoleWriter {
		return &levelWriter{errorWriter: os.Stderr, infoWriter: os.Stdout}
	}

	return &levelWriter{
		errorWriter: zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: zerolog.TimeFieldFormat,
		},
		infoWriter: zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: zerolog.TimeFieldFormat,
		},
	}
}
