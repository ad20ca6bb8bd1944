package internal

import (
	"errors"

	"github.com/starford/odl/pkg/odl"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	registry *odl.Registry
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithRegistry sets the instrument registry used to decode programs.
// DefaultRegistry is used when unset.
func WithRegistry(reg *odl.Registry) Option {
	return func(a *application) {
		a.registry = reg
	}
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, errors.New("config is required")
	}
	if app.registry == nil {
		app.registry = odl.DefaultRegistry()
	}
	return app, nil
}
