package ollamamodel

import (
	"time"

	"github.com/effective-security/ollama-mcp/olerrors"
)

// responsiveThresholdMS is the round-trip budget below which the daemon is
// considered responsive.
const responsiveThresholdMS = 5000

// HealthStatus reports the outcome of a daemon health check. When Healthy
// is false, Error carries the reason.
type HealthStatus struct {
	Healthy        bool      `json:"healthy"`
	Host           string    `json:"host"`
	ModelsCount    int       `json:"models_count"`
	ResponseTimeMS *float64  `json:"response_time_ms,omitempty"`
	Error          string    `json:"error,omitempty"`
	LastChecked    time.Time `json:"last_checked"`
}

// Validate enforces that an unhealthy status carries an error message.
func (h *HealthStatus) Validate() error {
	if !h.Healthy && h.Error == "" {
		return olerrors.Validation("unhealthy status must carry an error")
	}
	return nil
}

// StatusText returns HEALTHY or UNHEALTHY.
func (h *HealthStatus) StatusText() string {
	if h.Healthy {
		return "HEALTHY"
	}
	return "UNHEALTHY"
}

// IsResponsive reports whether the measured round-trip stayed under 5s.
func (h *HealthStatus) IsResponsive() bool {
	return h.ResponseTimeMS != nil && *h.ResponseTimeMS < responsiveThresholdMS
}
