// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"club-la-victoria/internal/common/validation"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultMembershipBaseURL = "https://www.api.clublavictoria.com.ar/api/v1/socios/reserva"
	DefaultQRBaseURL         = "https://api.qrserver.com/v1/create-qr-code/"
	DefaultQRLogoURL         = "https://i.ibb.co/9yqvMc4/logo-fondo-limpio.png"
)

// Load reads config.yaml, then config.{APP_ENVIRONMENT}.yaml, then environment
// overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setViperDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setViperDefaults registers every key so AutomaticEnv can override it
// during Unmarshal, and covers booleans whose zero value is not the default.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "club-la-victoria")
	v.SetDefault("app.environment", "development")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origins", "*")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("membership.base_url", DefaultMembershipBaseURL)
	v.SetDefault("membership.timeout", 10000)
	v.SetDefault("membership.strict_shapes", true)
	v.SetDefault("membership.cache_ttl", 300)
	v.SetDefault("reservation.redirect_url", "")
	v.SetDefault("reservation.activities_file", "")
	v.SetDefault("qr.base_url", DefaultQRBaseURL)
	v.SetDefault("qr.logo_url", DefaultQRLogoURL)
	v.SetDefault("qr.size", 400)
	v.SetDefault("qr.logo_size", 80)
	v.SetDefault("qr.timeout", 10000)
	v.SetDefault("optimizer.root", "src/assets")
	v.SetDefault("optimizer.manifest", "")
	v.SetDefault("optimizer.quality", 80)
	v.SetDefault("optimizer.workers", 1)
	v.SetDefault("optimizer.default_width", 1200)
	v.SetDefault("optimizer.fail_on_error", true)
	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values. An unset
// variable expands to "" so optional settings stay disabled.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that are conventionally provided under
// unprefixed names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.Reservation.RedirectURL == "" {
		if val := os.Getenv("RESERVATION_REDIRECT_URL"); val != "" {
			cfg.Reservation.RedirectURL = val
		}
	}
}

// applyDefaults repairs values that were explicitly set to zero.
func applyDefaults(cfg *Config) {
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Membership.Timeout <= 0 {
		cfg.Membership.Timeout = 10000
	}
	if cfg.QR.Timeout <= 0 {
		cfg.QR.Timeout = 10000
	}
	if cfg.QR.Size <= 0 {
		cfg.QR.Size = 400
	}
	if cfg.QR.LogoSize <= 0 {
		cfg.QR.LogoSize = 80
	}

	if cfg.Optimizer.Quality == 0 {
		cfg.Optimizer.Quality = 80
	}
	if cfg.Optimizer.Workers <= 0 {
		cfg.Optimizer.Workers = 1
	}
	if cfg.Optimizer.DefaultWidth <= 0 {
		cfg.Optimizer.DefaultWidth = 1200
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

// validateConfig validates settings shared by every binary.
func validateConfig(cfg *Config) error {
	if cfg.Membership.BaseURL == "" {
		return fmt.Errorf("membership.base_url is required")
	}
	if cfg.Membership.CacheTTL < 0 {
		return fmt.Errorf("membership.cache_ttl must not be negative")
	}
	if cfg.QR.BaseURL == "" {
		return fmt.Errorf("qr.base_url is required")
	}
	if cfg.Optimizer.Quality < 1 || cfg.Optimizer.Quality > 100 {
		return fmt.Errorf("optimizer.quality must be between 1 and 100")
	}
	for i, rule := range cfg.Optimizer.Rules {
		if rule.Pattern == "" {
			return fmt.Errorf("optimizer.rules[%d].pattern is required", i)
		}
		if rule.Width <= 0 {
			return fmt.Errorf("optimizer.rules[%d].width must be positive", i)
		}
	}
	return nil
}

// ValidateGateway checks the settings only the HTTP gateway needs.
func (c *Config) ValidateGateway() error {
	if c.Reservation.RedirectURL == "" {
		return fmt.Errorf("reservation.redirect_url is required")
	}
	if !validation.ValidateURL(c.Reservation.RedirectURL) {
		return fmt.Errorf("reservation.redirect_url must be an http(s) URL")
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
