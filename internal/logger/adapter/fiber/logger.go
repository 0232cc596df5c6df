// Package fiber provides a fiber access-log middleware writing zerolog JSON
// lines, with an optional rolling access-log file.
package fiber

import (
	"bytes"
	"io"
	"os"
	"path"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/guildpoint/guildpoint/internal/logger"
)

// Config configures the access-log middleware.
type Config struct {
	// Next skips this middleware when it returns true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Log is the logger config section; it decides which sinks receive
	// access lines.
	Log logger.Log

	// CheckAliveURI is the health endpoint whose calls are dropped from the
	// access log when Log.DisableCheckAlive is set.
	CheckAliveURI string
}

// New creates the access logging middleware.
func New(cfg Config) fiber.Handler {
	var (
		writers    []io.Writer
		once       sync.Once
		errHandler fiber.ErrorHandler
	)

	if cfg.Log.File.Enabled {
		writers = append(writers, newRollingAccessFile(&cfg.Log))
	}

	// console access lines need both Console.Enabled and the access flag
	if cfg.Log.Console.Enabled && cfg.Log.EnableAccessLogToConsole {
		if cfg.Log.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{"level"},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	accessLogger := zerolog.New(
		zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(ctx *fiber.Ctx) (err error) {
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		once.Do(func() {
			errHandler = ctx.App().ErrorHandler
		})

		start := time.Now()

		chainErr := ctx.Next()
		if chainErr != nil {
			if errH := errHandler(ctx, chainErr); errH != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck // ok here
			}
		}

		elapsed := time.Since(start).Seconds()

		URI := ctx.Request().RequestURI()
		if cfg.Log.DisableCheckAlive && bytes.Equal(URI, []byte(cfg.CheckAliveURI)) {
			return nil
		}

		// fasthttp normalizes paths, /a//b becomes /a/b; the access log wants
		// the path as it was requested.
		p := ctx.Path()
		if len(ctx.Queries()) > 0 {
			p = p + "?" + string(ctx.Request().URI().QueryString())
		}

		line := accessLogger.Log().
			Str("ip", ctx.IP()).
			Int("status", ctx.Response().StatusCode()).
			Float64("elapsed", elapsed).
			Str("uri", p).
			Str("method", ctx.Method()).
			Bytes("host", ctx.Request().Host()).
			Str(fiber.HeaderXForwardedFor, ctx.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, ctx.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderReferer, ctx.Get(fiber.HeaderReferer))

		if chainErr != nil {
			line.Err(chainErr)
		}

		line.Send()

		return nil
	}
}

// newRollingAccessFile builds the rolling access-log file via lumberjack.
func newRollingAccessFile(cfg *logger.Log) io.Writer {
	if cfg.File.Path != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

			return nil
		}
	}

	return &lumberjack.Logger{
		Filename:   path.Join(cfg.File.Path, cfg.File.AccessLog),
		MaxSize:    cfg.File.AccessMaxSize,
		MaxAge:     cfg.File.AccessMaxAge,
		MaxBackups: cfg.File.AccessMaxBackups,
	}
}
