package optimizer

import (
	"fmt"

	"club-la-victoria/internal/common/config"
)

type Config struct {
	Root         string
	Manifest     string
	Quality      int
	Workers      int
	DefaultWidth int
	FailOnError  bool
	Rules        []WidthRule
}

func DefaultConfig() *Config {
	return &Config{
		Root:         "src/assets",
		Quality:      80,
		Workers:      1,
		DefaultWidth: DefaultWidth,
		FailOnError:  true,
		Rules:        DefaultRules(),
	}
}

// FromAppConfig compiles the configured rules, falling back to DefaultRules
// when none are set.
func FromAppConfig(c config.OptimizerConfig) (*Config, error) {
	cfg := &Config{
		Root:         c.Root,
		Manifest:     c.Manifest,
		Quality:      c.Quality,
		Workers:      c.Workers,
		DefaultWidth: c.DefaultWidth,
		FailOnError:  c.FailOnError,
		Rules:        DefaultRules(),
	}
	if len(c.Rules) > 0 {
		cfg.Rules = make([]WidthRule, 0, len(c.Rules))
		for i, rc := range c.Rules {
			name := rc.Name
			if name == "" {
				name = fmt.Sprintf("rule-%d", i)
			}
			rule, err := NewWidthRule(name, rc.Pattern, rc.Width)
			if err != nil {
				return nil, err
			}
			cfg.Rules = append(cfg.Rules, rule)
		}
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Root == "" && c.Manifest == "" {
		return fmt.Errorf("root or manifest is required")
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}
