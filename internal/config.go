package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/odl/pkg/astro"
	"github.com/starford/odl/pkg/odl"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Programs ProgramsConfig    `yaml:"programs"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Database DatabaseConfig    `yaml:"database"`
	Site     astro.Site        `yaml:"site"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Programs.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	return validateSite(&c.Site)
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

// ProgramsConfig holds the path to the program directory.
type ProgramsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the programs configuration.
func (c *ProgramsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
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

// DatabaseConfig points the client at the observatory database.
type DatabaseConfig struct {
	UploadURL   string        `yaml:"upload_url"`
	DownloadURL string        `yaml:"download_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.UploadURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.DownloadURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// ClientOptions returns the odl.Client options for this database.
func (c *DatabaseConfig) ClientOptions() []odl.ClientOption {
	opts := []odl.ClientOption{
		odl.WithUploadURL(c.UploadURL),
		odl.WithDownloadURL(c.DownloadURL),
	}
	if c.Timeout > 0 {
		opts = append(opts, odl.WithTimeout(c.Timeout))
	}
	return opts
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

func validateSite(s *astro.Site) error {
	return validation.ValidateStruct(s,
		validation.Field(&s.LatDeg, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&s.LonDeg, validation.Min(-180.0), validation.Max(180.0)),
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
		Programs: ProgramsConfig{
			Path: "./programs",
		},
		SQLite: SQLiteConfig{
			Path: "./odl.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Database: DatabaseConfig{
			UploadURL:   odl.DefaultUploadURL,
			DownloadURL: odl.DefaultDownloadURL,
			Timeout:     odl.DefaultTimeout,
		},
		Site: astro.Keck(),
	}
}
