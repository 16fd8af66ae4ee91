// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct shared by the gateway
// and the image optimizer.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Membership  MembershipConfig  `mapstructure:"membership"`
	Reservation ReservationConfig `mapstructure:"reservation"`
	QR          QRConfig          `mapstructure:"qr"`
	Optimizer   OptimizerConfig   `mapstructure:"optimizer"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
	GinMode        string `mapstructure:"gin_mode"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// --- Membership verification ---

type MembershipConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
	StrictShapes bool   `mapstructure:"strict_shapes"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // seconds, 0 disables the cache
}

// LookupURL returns the endpoint for a validated member id.
func (m MembershipConfig) LookupURL(id string) string {
	return fmt.Sprintf("%s/%s", trimSlash(m.BaseURL), id)
}

type ReservationConfig struct {
	RedirectURL    string `mapstructure:"redirect_url"`
	ActivitiesFile string `mapstructure:"activities_file"` // JSON catalogue, built-in list when empty
}

type QRConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	LogoURL  string `mapstructure:"logo_url"`
	Size     int    `mapstructure:"size"`
	LogoSize int    `mapstructure:"logo_size"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
}

// --- Image optimizer ---

type OptimizerConfig struct {
	Root         string            `mapstructure:"root"`
	Manifest     string            `mapstructure:"manifest"`
	Quality      int               `mapstructure:"quality"`
	Workers      int               `mapstructure:"workers"`
	DefaultWidth int               `mapstructure:"default_width"`
	FailOnError  bool              `mapstructure:"fail_on_error"`
	Rules        []WidthRuleConfig `mapstructure:"rules"`
}

// WidthRuleConfig maps a path pattern (case-insensitive regexp) to a width preset.
type WidthRuleConfig struct {
	Name    string `mapstructure:"name"`
	Pattern string `mapstructure:"pattern"`
	Width   int    `mapstructure:"width"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
