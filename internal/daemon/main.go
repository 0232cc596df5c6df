// Package daemon wires the database, session store, and web service together.
package daemon

import (
	"fmt"

	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/gofiber/storage"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/guildpoint/guildpoint/internal/auth"
	"github.com/guildpoint/guildpoint/internal/config"
	"github.com/guildpoint/guildpoint/internal/db/dsn"
	"github.com/guildpoint/guildpoint/internal/db/models"
	"github.com/guildpoint/guildpoint/internal/web"
	"github.com/guildpoint/guildpoint/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	go d.webService.WaitShutdown()

	return d.webService.Start(addr)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Role{},
		&models.RolePermission{},
		&models.Membership{},
		&models.Invite{},
		&models.Event{},
		&models.Comment{},
		&models.Review{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	// Stored permission strings must match the catalog before serving a
	// single request. A drifted row means a code/data mismatch that silent
	// denial would hide.
	if err = auth.NewService(db).ValidateStoredPermissions(); err != nil {
		log.Fatal().Err(err).Msg("stored permissions do not match the catalog")
		return nil
	}

	seed(cfg, db)

	session.Init(sessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}

// openDialector selects the gorm driver from the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	if cfg.DB.GormEngine == config.EnginePostgres {
		return gormpostgres.Open(dsn.Create(cfg))
	}

	return gormmysql.Open(dsn.Create(cfg))
}

// sessionStorage creates the fiber session storage matching the configured engine.
func sessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == config.EnginePostgres {
		return sessionpostgres.New(sessionpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			Username: cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			Table:    "sessions",
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})
}
