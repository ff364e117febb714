// Package config provides configuration loading and management for ccattrib.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/ccattrib/pkg/attribution"
	"github.com/coolbeans/ccattrib/pkg/transform"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the complete ccattrib configuration
type Config struct {
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
	Locale   LocaleConfig   `yaml:"locale"`
	Sites    []SiteConfig   `yaml:"sites,omitempty"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// CacheConfig configures the document cache
type CacheConfig struct {
	// MaxDocuments bounds the cache; 0 keeps every analyzed document
	MaxDocuments int `yaml:"max_documents"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Encoding is "console" or "json"
	Encoding string `yaml:"encoding"`
}

// LocaleConfig overrides user-facing strings
type LocaleConfig struct {
	// Messages maps message names to translations. Plural messages separate
	// their forms with ";" and use %d for the count.
	Messages map[string]string `yaml:"messages,omitempty"`
}

// SiteConfig describes the fixes applied to statements parsed from pages
// matching Pattern
type SiteConfig struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`

	RewritePredicates []RewriteConfig `yaml:"rewrite_predicates,omitempty"`
	DropPredicates    []string        `yaml:"drop_predicates,omitempty"`
	RewriteSubjects   []RewriteConfig `yaml:"rewrite_subjects,omitempty"`

	// DefaultLicense is asserted for the page when it declares none
	DefaultLicense string `yaml:"default_license,omitempty"`
}

// RewriteConfig maps one URI (or URI prefix) onto another
type RewriteConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// SnapshotConfig configures the on-disk snapshot used by the CLI
type SnapshotConfig struct {
	// Path is the sqlite database file; empty means the user cache directory
	Path string `yaml:"path,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			MaxDocuments: 256,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Cache.MaxDocuments < 0 {
		return fmt.Errorf("%w: cache.max_documents must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Log.ZapLevel(); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.encoding must be console or json, got %q", ErrInvalidConfig, c.Log.Encoding)
	}

	names := make(map[string]bool, len(c.Sites))
	for index, site := range c.Sites {
		if err := site.validate(); err != nil {
			return fmt.Errorf("%w: sites[%d]: %v", ErrInvalidConfig, index, err)
		}
		if names[site.Name] {
			return fmt.Errorf("%w: sites[%d]: duplicate name %q", ErrInvalidConfig, index, site.Name)
		}
		names[site.Name] = true
	}

	return nil
}

func (s SiteConfig) validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Pattern == "" {
		return errors.New("pattern is required")
	}
	if !doublestar.ValidatePattern(s.Pattern) {
		return fmt.Errorf("invalid pattern %q", s.Pattern)
	}
	if len(s.RewritePredicates) == 0 && len(s.DropPredicates) == 0 &&
		len(s.RewriteSubjects) == 0 && s.DefaultLicense == "" {
		return errors.New("at least one transform is required")
	}
	for _, rewrite := range append(append([]RewriteConfig(nil), s.RewritePredicates...), s.RewriteSubjects...) {
		if rewrite.From == "" || rewrite.To == "" {
			return errors.New("rewrites need both from and to")
		}
	}
	return nil
}

// ZapLevel parses Level.
func (l LogConfig) ZapLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(l.Level)
}

// Localizer returns the default English messages with the configured
// overrides applied.
func (c *Config) Localizer() *attribution.Messages {
	return attribution.DefaultMessages().Merge(c.Locale.Messages)
}

// Pipeline builds the transform pipeline described by Sites.
func (c *Config) Pipeline() (*transform.Pipeline, error) {
	rules := make([]transform.Rule, 0, len(c.Sites))
	for _, site := range c.Sites {
		rules = append(rules, site.Rule())
	}
	return transform.NewPipeline(rules...)
}

// Rule converts the site into a transform rule. Transforms run in the order
// subject rewrites, predicate rewrites, drops, default license.
func (s SiteConfig) Rule() transform.Rule {
	rule := transform.Rule{Name: s.Name, Pattern: s.Pattern}
	for _, rewrite := range s.RewriteSubjects {
		rule.Transforms = append(rule.Transforms, transform.RewriteSubjectPrefix(rewrite.From, rewrite.To))
	}
	for _, rewrite := range s.RewritePredicates {
		rule.Transforms = append(rule.Transforms, transform.RewritePredicate(rewrite.From, rewrite.To))
	}
	for _, predicate := range s.DropPredicates {
		rule.Transforms = append(rule.Transforms, transform.DropPredicate(predicate))
	}
	if s.DefaultLicense != "" {
		rule.Transforms = append(rule.Transforms, transform.AssertLicense(s.DefaultLicense))
	}
	return rule
}

// SnapshotPath resolves the snapshot database path, expanding a leading "~".
func (c *Config) SnapshotPath() (string, error) {
	path := c.Snapshot.Path
	if path == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate cache directory: %w", err)
		}
		return filepath.Join(cacheDir, "ccattrib", "snapshot.db"), nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values). Sites are appended; locale messages are overlaid.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Cache.MaxDocuments != 0 {
		c.Cache.MaxDocuments = other.Cache.MaxDocuments
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Encoding != "" {
		c.Log.Encoding = other.Log.Encoding
	}

	if len(other.Locale.Messages) > 0 {
		merged := make(map[string]string, len(c.Locale.Messages)+len(other.Locale.Messages))
		for name, value := range c.Locale.Messages {
			merged[name] = value
		}
		for name, value := range other.Locale.Messages {
			merged[name] = value
		}
		c.Locale.Messages = merged
	}

	c.Sites = append(c.Sites, other.Sites...)

	if other.Snapshot.Path != "" {
		c.Snapshot.Path = other.Snapshot.Path
	}
}
