package config

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestReadConfig(t *testing.T) {
	var (
		err         error
		projectRoot string
	)

	// Get the project root by going up from internal/config
	projectRoot, err = filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	configPath := filepath.Join(projectRoot, "etc") + string(filepath.Separator)

	var cfg Config

	cfg, err = ReadConfig(configPath)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	if cfg.DB.Host == "" {
		t.Error("DB.Host should not be empty")
	}

	if cfg.DB.GormEngine != EngineMySQL && cfg.DB.GormEngine != EnginePostgres {
		t.Errorf("DB.GormEngine = %q, want a known engine", cfg.DB.GormEngine)
	}
}

func TestReadConfigJSONOverride(t *testing.T) {
	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	configPath := filepath.Join(projectRoot, "etc") + string(filepath.Separator)

	t.Setenv(EnvConfigJSON, `{"Webserver": {"Port": 9999, "URL": "http://override"}}`)

	cfg, err := ReadConfig(configPath)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Webserver.Port != 9999 {
		t.Errorf("Webserver.Port = %d, want 9999 from env override", cfg.Webserver.Port)
	}

	if cfg.Webserver.URL != "http://override" {
		t.Errorf("Webserver.URL = %q, want env override", cfg.Webserver.URL)
	}

	// toml values not touched by the override must survive the merge
	if cfg.Title == "" {
		t.Error("Config.Title should survive the JSON merge")
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title: "GuildPoint",
		DB:    DB{Host: "127.0.0.1", Port: 3306, GormEngine: EngineMySQL},
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	dump, err := DumpConfig(cfg)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	// a dump must decode back into an equal config
	var decoded Config
	if _, err = toml.Decode(dump, &decoded); err != nil {
		t.Fatalf("failed to decode dumped toml: %v", err)
	}

	if decoded.Title != cfg.Title {
		t.Errorf("Title = %q, want %q", decoded.Title, cfg.Title)
	}

	if decoded.Webserver.Port != cfg.Webserver.Port {
		t.Errorf("Webserver.Port = %d, want %d", decoded.Webserver.Port, cfg.Webserver.Port)
	}

	if decoded.DB.GormEngine != cfg.DB.GormEngine {
		t.Errorf("DB.GormEngine = %q, want %q", decoded.DB.GormEngine, cfg.DB.GormEngine)
	}
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:     "GuildPoint",
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
	}

	dump, err := DumpConfigJSON(cfg)
	if err != nil {
		t.Fatalf("DumpConfigJSON() error = %v", err)
	}

	var decoded Config
	if err = json.Unmarshal([]byte(dump), &decoded); err != nil {
		t.Fatalf("failed to decode dumped json: %v", err)
	}

	if decoded.Title != cfg.Title {
		t.Errorf("Title = %q, want %q", decoded.Title, cfg.Title)
	}

	if decoded.Webserver.URL != cfg.Webserver.URL {
		t.Errorf("Webserver.URL = %q, want %q", decoded.Webserver.URL, cfg.Webserver.URL)
	}
}

func TestConfigValidation(t *testing.T) {
	valid := Config{
		Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{
			name:   "valid config",
			mutate: func(_ *Config) {},
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Webserver.Port = 0 },
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name:    "empty url",
			mutate:  func(c *Config) { c.Webserver.URL = "" },
			wantErr: ErrEmptyURL,
		},
		{
			name:    "unknown gorm engine",
			mutate:  func(c *Config) { c.DB.GormEngine = "oracle" },
			wantErr: ErrUnknownGormEngine,
		},
		{
			name:   "postgres engine accepted",
			mutate: func(c *Config) { c.DB.GormEngine = EnginePostgres },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := validate(&cfg)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("validate() error = %v, want nil", err)
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaultsShutDownTime(t *testing.T) {
	cfg := Config{Webserver: Webserver{Port: 8080, URL: "http://localhost"}}

	if err := validate(&cfg); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if cfg.Webserver.ShutDownTime != 5 {
		t.Errorf("ShutDownTime = %d, want default 5", cfg.Webserver.ShutDownTime)
	}
}
