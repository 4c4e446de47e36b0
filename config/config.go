package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxTokenTTLMinutes is the longest custom token lifetime the identity
// toolkit accepts.
const maxTokenTTLMinutes = 60

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Steam    SteamConfig    `yaml:"steam"`
	Identity IdentityConfig `yaml:"identity"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	StaticDir       string  `yaml:"static_dir"`
	FrontendURL     string  `yaml:"frontend_url"`
	PublicURL       string  `yaml:"public_url"`
	RedirectPath    string  `yaml:"redirect_path"`
}

// SteamConfig holds everything needed to talk to Steam and the inspection service.
type SteamConfig struct {
	APIKey                string   `yaml:"api_key"`
	CommunityURL          string   `yaml:"community_url"`
	APIURL                string   `yaml:"api_url"`
	InspectURL            string   `yaml:"inspect_url"`
	OpenIDURL             string   `yaml:"openid_url"`
	HTTPProxy             string   `yaml:"http_proxy"`
	ImageHosts            []string `yaml:"image_hosts"`
	GeneralTimeoutSeconds int      `yaml:"general_timeout_seconds"`
	MarketTimeoutSeconds  int      `yaml:"market_timeout_seconds"`
	MinIntervalMillis     int      `yaml:"min_interval_ms"`
	MarketCacheTTLSeconds int      `yaml:"market_cache_ttl_seconds"`
	SkinCacheTTLSeconds   int      `yaml:"skin_cache_ttl_seconds"`
	BreakerMaxFailures    int      `yaml:"breaker_max_failures"`
	BreakerTimeoutSeconds int      `yaml:"breaker_timeout_seconds"`
	MarketCurrency        int      `yaml:"market_currency"`
	DefaultAppID          string   `yaml:"default_app_id"`
	DefaultContextID      string   `yaml:"default_context_id"`

	GeneralTimeout time.Duration `yaml:"-"` // Derived from the *Seconds fields
	MarketTimeout  time.Duration `yaml:"-"`
	MinInterval    time.Duration `yaml:"-"`
	MarketCacheTTL time.Duration `yaml:"-"`
	SkinCacheTTL   time.Duration `yaml:"-"`
	BreakerTimeout time.Duration `yaml:"-"`
}

// IdentityConfig holds the identity service credentials.
type IdentityConfig struct {
	// ServiceAccount is the raw JSON credential blob of the identity service account.
	ServiceAccount  string        `yaml:"service_account"`
	TokenTTLMinutes int           `yaml:"token_ttl_minutes"`
	TokenTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the user directory connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the configuration from the given path, applies environment
// overrides and fills in defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.Server.FrontendURL = v
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		cfg.Server.PublicURL = v
	}
	if v := os.Getenv("FIREBASE_SERVICE_ACCOUNT"); v != "" {
		cfg.Identity.ServiceAccount = v
	}
	if v := os.Getenv("STEAM_API_KEY"); v != "" {
		cfg.Steam.APIKey = v
	}
	if v := os.Getenv("HTTP_PROXY_URL"); v != "" {
		cfg.Steam.HTTPProxy = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 20
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 40
	}
	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = "./dist"
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Server.RedirectPath == "" {
		cfg.Server.RedirectPath = "/auth/callback"
	}
	cfg.Server.FrontendURL = strings.TrimRight(cfg.Server.FrontendURL, "/")
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")

	s := &cfg.Steam
	if s.CommunityURL == "" {
		s.CommunityURL = "https://steamcommunity.com"
	}
	if s.APIURL == "" {
		s.APIURL = "https://api.steampowered.com"
	}
	if s.InspectURL == "" {
		s.InspectURL = "https://api.csgofloat.com/"
	}
	if s.OpenIDURL == "" {
		s.OpenIDURL = "https://steamcommunity.com/openid/login"
	}
	if len(s.ImageHosts) == 0 {
		s.ImageHosts = []string{"community.cloudflare.steamstatic.com", "steamcommunity-a.akamaihd.net"}
	}
	if s.GeneralTimeoutSeconds <= 0 {
		s.GeneralTimeoutSeconds = 15
	}
	if s.MarketTimeoutSeconds <= 0 {
		s.MarketTimeoutSeconds = 10
	}
	if s.MinIntervalMillis <= 0 {
		s.MinIntervalMillis = 2000
	}
	if s.MarketCacheTTLSeconds <= 0 {
		s.MarketCacheTTLSeconds = 300
	}
	if s.SkinCacheTTLSeconds <= 0 {
		s.SkinCacheTTLSeconds = 300
	}
	if s.BreakerMaxFailures <= 0 {
		s.BreakerMaxFailures = 5
	}
	if s.BreakerTimeoutSeconds <= 0 {
		s.BreakerTimeoutSeconds = 30
	}
	if s.MarketCurrency <= 0 {
		s.MarketCurrency = 7
	}
	if s.DefaultAppID == "" {
		s.DefaultAppID = "730"
	}
	if s.DefaultContextID == "" {
		s.DefaultContextID = "2"
	}
	s.GeneralTimeout = time.Duration(s.GeneralTimeoutSeconds) * time.Second
	s.MarketTimeout = time.Duration(s.MarketTimeoutSeconds) * time.Second
	s.MinInterval = time.Duration(s.MinIntervalMillis) * time.Millisecond
	s.MarketCacheTTL = time.Duration(s.MarketCacheTTLSeconds) * time.Second
	s.SkinCacheTTL = time.Duration(s.SkinCacheTTLSeconds) * time.Second
	s.BreakerTimeout = time.Duration(s.BreakerTimeoutSeconds) * time.Second

	if cfg.Identity.TokenTTLMinutes <= 0 {
		cfg.Identity.TokenTTLMinutes = 60
	}
	cfg.Identity.TokenTTL = time.Duration(cfg.Identity.TokenTTLMinutes) * time.Minute

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file::memory:?cache=shared"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Identity.ServiceAccount == "" {
		return errors.New("identity.service_account (FIREBASE_SERVICE_ACCOUNT) is required")
	}
	if c.Server.FrontendURL == "" {
		return errors.New("server.frontend_url (FRONTEND_URL) is required")
	}
	if c.Identity.TokenTTLMinutes > maxTokenTTLMinutes {
		return fmt.Errorf("identity.token_ttl_minutes must not exceed %d", maxTokenTTLMinutes)
	}
	return nil
}
