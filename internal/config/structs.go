package config

import (
	"time"

	"github.com/guildpoint/guildpoint/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Auth      Auth
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool    // disable the panic recover middleware
	Domain         string  // domain scoping the session cookie
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Auth groups the authentication provider settings.
type Auth struct {
	LocalDB LocalDBAuth
	OIDC    OIDCAuth
}

// LocalDBAuth holds local username/password authentication settings.
type LocalDBAuth struct {
	Enabled bool
	// RegistrationOpen controls whether self-service registration is allowed.
	RegistrationOpen bool
}

// OIDCAuth holds OpenID Connect authentication settings.
type OIDCAuth struct {
	Enabled      bool
	ProviderURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}
