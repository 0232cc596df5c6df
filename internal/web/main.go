package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
	fiberlogger "github.com/guildpoint/guildpoint/internal/logger/adapter/fiber"
	"github.com/guildpoint/guildpoint/internal/web/handler/account"
	"github.com/guildpoint/guildpoint/internal/web/handler/organization"
	"github.com/guildpoint/guildpoint/internal/web/handler/organization/event"
	"github.com/guildpoint/guildpoint/internal/web/handler/organization/event/comment"
	"github.com/guildpoint/guildpoint/internal/web/handler/organization/event/review"
	"github.com/guildpoint/guildpoint/internal/web/handler/organization/member"
	"github.com/guildpoint/guildpoint/internal/web/handler/organization/role"
)

// checkAliveURI is the liveness endpoint used by load balancers.
const checkAliveURI = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize:    8192,
			AppName:           cfg.Title,
			CaseSensitive:     true,
			Prefork:           false,
			Immutable:         true,
			EnablePrintRoutes: cfg.DevMode,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(fiberrecover.New())
	}

	// access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Log:           cfg.Log,
		CheckAliveURI: checkAliveURI,
	}))

	// Initialize auth service
	authService := auth.NewService(db)

	// init web service
	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}
	service.alive.Store(true)

	app.Get(checkAliveURI, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// init handlers (they register their own routes with their gate stages)
	account.Handler.Init(app, cfg, db, authService)
	organization.Handler.Init(app, cfg, db, authService)
	role.Handler.Init(app, cfg, db, authService)
	member.Handler.Init(app, cfg, db, authService)
	event.Handler.Init(app, cfg, db, authService)
	comment.Handler.Init(app, cfg, db, authService)
	review.Handler.Init(app, cfg, db, authService)

	return service
}
