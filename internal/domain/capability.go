package domain

import "maps"

// Capability names.
const (
	CapabilityImageEmbedding = "vision.embedding"
	CapabilityImageAnalysis  = "vision.analysis"
	CapabilityCache          = "cache"
	// CapabilityGenerationPrefix is joined with a provider name, e.g. "generation.openai".
	CapabilityGenerationPrefix = "generation."
)

// Capability statuses reported by health checks.
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// Capabilities is the set of optional features resolved once at startup.
// It is populated before serving starts and only read afterwards.
type Capabilities struct {
	set map[string]bool
}

// NewCapabilities returns an empty set.
func NewCapabilities() *Capabilities {
	return &Capabilities{set: make(map[string]bool)}
}

// Set records whether a capability is usable.
func (c *Capabilities) Set(name string, available bool) {
	c.set[name] = available
}

// Has reports whether the capability is usable.
func (c *Capabilities) Has(name string) bool {
	if c == nil {
		return false
	}
	return c.set[name]
}

// Snapshot returns name -> status for reporting.
func (c *Capabilities) Snapshot() map[string]string {
	out := make(map[string]string, len(c.set))
	for name, ok := range maps.All(c.set) {
		if ok {
			out[name] = StatusAvailable
		} else {
			out[name] = StatusUnavailable
		}
	}
	return out
}

// IndexStatus is the coarse product index status.
type IndexStatus string

// Index states.
const (
	IndexUp       IndexStatus = "up"
	IndexDegraded IndexStatus = "degraded"
	IndexDown     IndexStatus = "down"
)
