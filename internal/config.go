package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lcsc2kicad/internal/easyeda"
	"github.com/starford/lcsc2kicad/internal/logging"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Library LibraryConfig     `yaml:"library"`
	Source  SourceConfig      `yaml:"source"`
	Batch   BatchConfig       `yaml:"batch"`
	Index   IndexConfig       `yaml:"index"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Library.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Batch.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = logging.FormatAuto
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(logging.FormatJSON, logging.FormatText, logging.FormatAuto)),
	); err != nil {
		return err
	}
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

// LibraryConfig describes the output library.
//
// Dir holds <Name>.kicad_sym, <Name>.pretty/ and <Name>.3dshapes/. 3D model
// paths are written relative to ${KIPRJMOD} when ProjectRelative is set and
// relative to ${GlobalEnv} otherwise.
type LibraryConfig struct {
	Dir             string `yaml:"dir"`
	Name            string `yaml:"name"`
	ProjectRelative bool   `yaml:"project_relative"`
	GlobalEnv       string `yaml:"global_env"`
	Overwrite       bool   `yaml:"overwrite"`
}

// Validate validates the library configuration.
func (c *LibraryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.GlobalEnv, validation.When(!c.ProjectRelative, validation.Required)),
	)
}

// SourceConfig configures the remote component source.
type SourceConfig struct {
	BaseURL   string        `yaml:"base_url"`
	ModelsURL string        `yaml:"models_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Retries   int           `yaml:"retries"`
	Backoff   time.Duration `yaml:"backoff"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.ModelsURL, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Retries, validation.Min(0)),
		validation.Field(&c.Backoff, validation.Min(time.Duration(0))),
	)
}

// ClientOptions maps the section onto easyeda.Options.
func (c *SourceConfig) ClientOptions() easyeda.Options {
	return easyeda.Options{
		BaseURL:   c.BaseURL,
		ModelsURL: c.ModelsURL,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
		Retries:   c.Retries,
		Backoff:   c.Backoff,
	}
}

// BatchConfig holds batch defaults.
type BatchConfig struct {
	Parallel        int  `yaml:"parallel"`
	ContinueOnError bool `yaml:"continue_on_error"`
}

// Validate validates the batch configuration.
func (c *BatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Parallel, validation.Min(1), validation.Max(64)),
	)
}

// IndexConfig holds the catalog database location.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: logging.FormatAuto,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Library: LibraryConfig{
			Dir:             "./lcsc",
			Name:            "lcsc",
			ProjectRelative: false,
			GlobalEnv:       "LCSC2KICAD_3DMODELS",
		},
		Source: SourceConfig{
			BaseURL:   easyeda.DefaultBaseURL,
			ModelsURL: easyeda.DefaultModelsURL,
			UserAgent: easyeda.DefaultUserAgent,
			Timeout:   30 * time.Second,
			Retries:   3,
			Backoff:   500 * time.Millisecond,
		},
		Batch: BatchConfig{
			Parallel: 4,
		},
		Index: IndexConfig{
			Path: "./lcsc2kicad.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
