// Package configsource defines the uniform contract every backend that
// can supply configuration must satisfy, so the cache and HTTP layers
// depend only on this interface rather than on Git specifically.
package configsource

import (
	"context"

	"github.com/cburgosro9303/vortex-config/internal/propertysource"
)

// Query identifies one requested configuration view.
type Query struct {
	Application string
	Profiles    []string
	Label       string
}

// Result is the effective configuration returned by Fetch.
type Result struct {
	Name            string
	Profiles        []string
	Label           string
	Version         string
	HasVersion      bool
	PropertySources propertysource.List
}

// Source is the uniform fetch/health-check/refresh contract every
// configuration backend exposes, per spec.md §4.7.
type Source interface {
	Fetch(ctx context.Context, query Query) (*Result, error)
	HealthCheck(ctx context.Context) error
	Name() string
	Refresh(ctx context.Context) error
	SupportsRefresh() bool
	DefaultLabel() string
}
