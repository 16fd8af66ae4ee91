package accessqr

import (
	"fmt"
	"time"

	"club-la-victoria/internal/common/config"
)

type Config struct {
	BaseURL  string
	LogoURL  string
	Size     int
	LogoSize int
	Timeout  time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:  config.DefaultQRBaseURL,
		LogoURL:  config.DefaultQRLogoURL,
		Size:     400,
		LogoSize: 80,
		Timeout:  10 * time.Second,
	}
}

func FromAppConfig(c config.QRConfig) *Config {
	return &Config{
		BaseURL:  c.BaseURL,
		LogoURL:  c.LogoURL,
		Size:     c.Size,
		LogoSize: c.LogoSize,
		Timeout:  config.GetDuration(c.Timeout),
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Size <= 0 || c.LogoSize <= 0 {
		return fmt.Errorf("size and logo_size must be positive")
	}
	if c.LogoSize >= c.Size {
		return fmt.Errorf("logo_size must be smaller than size")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
