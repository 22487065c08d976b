package health

import (
	"context"
	"time"

	"github.com/kailas-cloud/smartshopper/internal/domain"
)

const serviceName = "smartshopper"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "healthy"
	// Degraded indicates the service answers but some dependency is impaired.
	Degraded Status = "degraded"
	// Unhealthy indicates the product index is unreachable.
	Unhealthy Status = "unhealthy"
)

// Cache check results.
const (
	CacheOK       = "ok"
	CacheError    = "error"
	CacheDisabled = "disabled"
)

// Dependency names in the report.
const (
	DependencyIndex = "index"
	DependencyCache = "cache"
)

// Report aggregates health check results.
type Report struct {
	Status       Status            `json:"status"`
	Service      string            `json:"service"`
	Version      string            `json:"version"`
	Environment  string            `json:"environment"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
}

// Service coordinates health checks.
type Service struct {
	index        IndexChecker
	cache        CachePinger
	capabilities CapabilitySource
	version      string
	environment  string
	now          func() time.Time
}

// New creates a Service. cache and capabilities can be nil.
func New(index IndexChecker, cache CachePinger, capabilities CapabilitySource, version, environment string) *Service {
	return &Service{
		index:        index,
		cache:        cache,
		capabilities: capabilities,
		version:      version,
		environment:  environment,
		now:          time.Now,
	}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	deps := make(map[string]string)

	index := s.index.Health(ctx)
	deps[DependencyIndex] = string(index)

	cache := CacheDisabled
	if s.cache != nil && s.cache.Enabled() {
		cache = CacheOK
		if err := s.cache.Ping(ctx); err != nil {
			cache = CacheError
		}
	}
	deps[DependencyCache] = cache

	if s.capabilities != nil {
		for name, st := range s.capabilities.Snapshot() {
			deps[name] = st
		}
	}

	status := Healthy
	switch {
	case index == domain.IndexDown:
		status = Unhealthy
	case index != domain.IndexUp, cache == CacheError:
		status = Degraded
	}

	return Report{
		Status:       status,
		Service:      serviceName,
		Version:      s.version,
		Environment:  s.environment,
		Timestamp:    s.now().UTC(),
		Dependencies: deps,
	}
}
