package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Upstream  UpstreamConfig    `yaml:"upstream"`
	Cache     CacheConfig       `yaml:"cache"`
	Templates TemplatesConfig   `yaml:"templates"`
	Session   SessionConfig     `yaml:"session"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Upstream.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Templates.Validate(); err != nil {
		return err
	}
	return c.Session.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// UpstreamConfig points at the finance API every page is backed by.
type UpstreamConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	LoginURL string        `yaml:"login_url"`
}

// Validate validates the upstream configuration.
func (c *UpstreamConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.LoginURL, is.URL),
	)
}

// LoginTarget is where /login sends the browser: the configured login URL,
// or the upstream's own login page.
func (c *UpstreamConfig) LoginTarget() string {
	if c.LoginURL != "" {
		return c.LoginURL
	}
	return c.BaseURL + "/authentication/login"
}

// CacheConfig holds the local cache database configuration.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// TemplatesConfig optionally overrides the embedded page templates with a
// directory on disk.
type TemplatesConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the templates configuration.
func (c *TemplatesConfig) Validate() error {
	if c.Watch && c.Dir == "" {
		return fmt.Errorf("templates: watch is enabled but dir is empty")
	}
	return nil
}

// SessionConfig bounds the per-browser views kept in memory.
type SessionConfig struct {
	IdleTTL  time.Duration `yaml:"idle_ttl"`
	MaxViews int           `yaml:"max_views"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IdleTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.MaxViews, validation.Required, validation.Min(1)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Upstream: UpstreamConfig{
			BaseURL: "http://localhost:33333",
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Path: "./finboard.db",
		},
		Session: SessionConfig{
			IdleTTL:  30 * time.Minute,
			MaxViews: 1024,
		},
	}
}
