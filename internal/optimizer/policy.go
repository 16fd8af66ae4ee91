package optimizer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// WidthRule maps paths matching Pattern to a width preset.
type WidthRule struct {
	Name    string
	Pattern *regexp.Regexp
	Width   int
}

// NewWidthRule compiles pattern case-insensitively.
func NewWidthRule(name, pattern string, width int) (WidthRule, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return WidthRule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	if width <= 0 {
		return WidthRule{}, fmt.Errorf("rule %q: width must be positive", name)
	}
	return WidthRule{Name: name, Pattern: re, Width: width}, nil
}

const DefaultWidth = 1200

// DefaultRules is the built-in ordered policy. Paths are matched with a
// leading slash, so "/merchandising/" also matches a top level directory.
func DefaultRules() []WidthRule {
	return []WidthRule{
		{Name: "hero", Pattern: regexp.MustCompile(`(?i)hero`), Width: 1920},
		{Name: "icon", Pattern: regexp.MustCompile(`(?i)logo|mascota|icon`), Width: 800},
		{Name: "merchandising", Pattern: regexp.MustCompile(`(?i)/merchandising/`), Width: 1000},
		{Name: "facility", Pattern: regexp.MustCompile(`(?i)tennis|padel|pool|gym|facilit`), Width: 1200},
	}
}

// Policy evaluates rules top to bottom; the first match wins.
type Policy struct {
	rules        []WidthRule
	defaultWidth int
}

func NewPolicy(rules []WidthRule, defaultWidth int) *Policy {
	if defaultWidth <= 0 {
		defaultWidth = DefaultWidth
	}
	return &Policy{rules: rules, defaultWidth: defaultWidth}
}

// Width returns the preset for path and the name of the matching rule,
// "default" when none matched.
func (p *Policy) Width(path string) (int, string) {
	key := filepath.ToSlash(path)
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	for _, rule := range p.rules {
		if rule.Pattern.MatchString(key) {
			return rule.Width, rule.Name
		}
	}
	return p.defaultWidth, "default"
}
