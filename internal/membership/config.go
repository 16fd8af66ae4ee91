package membership

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"club-la-victoria/internal/common/config"
)

type Config struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	StrictShapes bool          `mapstructure:"strict_shapes"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:      config.DefaultMembershipBaseURL,
		Timeout:      10 * time.Second,
		StrictShapes: true,
		CacheTTL:     5 * time.Minute,
	}
}

// FromAppConfig converts the application level section.
func FromAppConfig(c config.MembershipConfig) *Config {
	return &Config{
		BaseURL:      c.BaseURL,
		Timeout:      config.GetDuration(c.Timeout),
		StrictShapes: c.StrictShapes,
		CacheTTL:     time.Duration(c.CacheTTL) * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("base_url is invalid: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	return nil
}

// LookupURL returns GET {base}/{id}.
func (c *Config) LookupURL(id string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + url.PathEscape(id)
}
