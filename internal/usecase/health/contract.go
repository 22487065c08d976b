package health

import (
	"context"

	"github.com/kailas-cloud/smartshopper/internal/domain"
)

// IndexChecker reports product index status.
type IndexChecker interface {
	Health(ctx context.Context) domain.IndexStatus
}

// CachePinger checks cache store availability.
type CachePinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// CapabilitySource lists optional features resolved at startup.
type CapabilitySource interface {
	Snapshot() map[string]string
}
