package config

import (
	"fmt"

	"github.com/jpalmerr/sitecheck"
	"github.com/jpalmerr/sitecheck/registry"
)

// BuildRegistry converts the configured groups into a [registry.Registry].
func BuildRegistry(cfg *Config) (*registry.Registry, error) {
	reg, err := registry.New(cfg.Groups)
	if err != nil {
		return nil, fmt.Errorf("invalid groups: %w", err)
	}
	return reg, nil
}

// BuildOptions converts parsed configuration into SDK options for
// [sitecheck.New]. Callers add their own logger and callbacks.
func BuildOptions(cfg *Config) ([]sitecheck.Option, error) {
	reg, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	return []sitecheck.Option{
		sitecheck.WithRegistry(reg),
		sitecheck.WithTitle(cfg.Title),
		sitecheck.WithPort(cfg.Port),
		sitecheck.WithRefreshInterval(cfg.RefreshInterval.Duration()),
		sitecheck.WithCheckTimeout(cfg.CheckTimeout.Duration()),
		sitecheck.WithMaxConcurrency(cfg.MaxConcurrency),
	}, nil
}
