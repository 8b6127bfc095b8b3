package types

// HealthStatus is reported per dependency and rolled up for the whole service.
type HealthStatus string

// A failing feedback store makes the service DOWN. A failing rate-limit Redis
// only makes it DEGRADED, since submissions still go through.
const (
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusDown     HealthStatus = "DOWN"
)

// HealthComponent is the check result for one dependency ("storage", "redis").
type HealthComponent struct {
	Status HealthStatus `json:"status"`
	// Details is a short reason when the check fails.
	Details string `json:"details,omitempty"`
}

// HealthCheck is the body of GET /health and /health/readiness. Backend names
// the configured feedback store (file, postgres or supabase).
type HealthCheck struct {
	Status     HealthStatus               `json:"status"`
	Backend    string                     `json:"backend"`
	Components map[string]HealthComponent `json:"components"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
	Timestamp  string                     `json:"timestamp"`
}
