package services

import (
	"context"

	"github.com/dukex/campaigner/pkg/cache"
	"github.com/dukex/campaigner/pkg/persistence"
)

// HealthCheck is the state of one dependency.
type HealthCheck struct {
	Message string `json:"message"`
	Healthy bool   `json:"healthy"`
}

type HealthReport struct {
	Healthy     bool        `json:"healthy"`
	Persistence HealthCheck `json:"persistence"`
	Cache       HealthCheck `json:"cache"`
	N8n         HealthCheck `json:"n8n"`
}

// Health reports the state of the process dependencies. Only persistence is
// required for the process to be healthy; cache and n8n outages degrade it.
type Health struct {
	persistence persistence.Persistence
	cache       *cache.Cache
	lifecycle   *Lifecycle
}

func NewHealth(p persistence.Persistence, c *cache.Cache, lifecycle *Lifecycle) *Health {
	return &Health{persistence: p, cache: c, lifecycle: lifecycle}
}

func (h *Health) Check(ctx context.Context) HealthReport {
	report := HealthReport{
		Persistence: HealthCheck{Message: "Persistence layer is healthy", Healthy: true},
		Cache:       HealthCheck{Message: "Cache is healthy", Healthy: true},
		N8n:         HealthCheck{Message: "n8n connection is healthy", Healthy: true},
	}

	if err := h.persistence.HealthCheck(ctx); err != nil {
		report.Persistence = HealthCheck{Message: "Persistence layer is unhealthy: " + err.Error()}
	}

	if err := h.cache.Ping(ctx); err != nil {
		report.Cache = HealthCheck{Message: "Cache is unhealthy: " + err.Error()}
	}

	if !h.lifecycle.RemoteConnection(ctx) {
		report.N8n = HealthCheck{Message: "n8n is unreachable or rejected the API key"}
	}

	report.Healthy = report.Persistence.Healthy

	return report
}
