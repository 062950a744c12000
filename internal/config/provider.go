package config

import (
	"sync"

	"github.com/travellive/tourquery/internal/domain"
)

// Provider hands out the process-wide connection settings. The first call
// validates and freezes them; every later call returns the identical value or
// the identical error, so cache keys derived from it never drift.
type Provider struct {
	get func() (domain.ConnectionConfig, error)
}

// NewProvider creates a provider over a loaded configuration.
func NewProvider(cfg Config) *Provider {
	return &Provider{get: sync.OnceValues(func() (domain.ConnectionConfig, error) {
		conn := cfg.Connection()
		if err := conn.Validate(); err != nil {
			return domain.ConnectionConfig{}, err
		}
		return conn, nil
	})}
}

// Connection returns the validated connection settings, or a configuration
// error wrapping domain.ErrConfiguration.
func (p *Provider) Connection() (domain.ConnectionConfig, error) {
	return p.get()
}
