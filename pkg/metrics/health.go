package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/lifecycle"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plctypes"
	"github.com/sitaram-kernallogicautomation/openplc-runtime-v4/pkg/plugin"
)

// Status is the payload served by the /health and /ready endpoints.
type Status struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	State     string            `json:"lifecycle_state"`
	Plugins   map[string]string `json:"plugins,omitempty"`
	Message   string            `json:"message,omitempty"`
	Uptime    string            `json:"uptime"`
}

// HealthSource answers /health, /ready, and /live directly from the
// lifecycle state machine, the plugin driver, and the scan engine's
// heartbeat. There is no separate registry of component status to fall out
// of sync with what those packages already track.
type HealthSource struct {
	Manager   *lifecycle.Manager
	Driver    *plugin.Driver
	Heartbeat *atomic.Int64
	StartTime time.Time
}

func (s *HealthSource) pluginStatuses() map[string]string {
	statuses := make(map[string]string)
	for _, p := range s.Driver.Plugins() {
		switch {
		case !p.Config.Enabled:
			statuses[p.Config.Name] = "disabled"
		case p.Running:
			statuses[p.Config.Name] = "running"
		default:
			statuses[p.Config.Name] = "stopped"
		}
	}
	return statuses
}

// Health reports unhealthy when the lifecycle machine is in ERROR or an
// enabled plugin has failed to start; healthy otherwise.
func (s *HealthSource) Health() Status {
	state := s.Manager.State()
	plugins := s.pluginStatuses()

	status := "healthy"
	message := ""
	switch {
	case state == plctypes.Error:
		status = "unhealthy"
		message = "lifecycle state machine in ERROR"
	default:
		for name, st := range plugins {
			if st == "stopped" {
				status = "unhealthy"
				message = "plugin " + name + " is enabled but not running"
				break
			}
		}
	}

	return Status{
		Status:    status,
		Timestamp: time.Now(),
		State:     state.String(),
		Plugins:   plugins,
		Message:   message,
		Uptime:    time.Since(s.StartTime).String(),
	}
}

// Readiness reports ready once the lifecycle machine has completed
// initialization (RUNNING or STOPPED) and is not in ERROR; EMPTY and INIT
// are not_ready.
func (s *HealthSource) Readiness() Status {
	state := s.Manager.State()

	status := "ready"
	message := ""
	switch state {
	case plctypes.Empty, plctypes.Init:
		status = "not_ready"
		message = "lifecycle state machine has not completed initialization"
	case plctypes.Error:
		status = "not_ready"
		message = "lifecycle state machine in ERROR"
	}

	return Status{
		Status:    status,
		Timestamp: time.Now(),
		State:     state.String(),
		Message:   message,
		Uptime:    time.Since(s.StartTime).String(),
	}
}

// HealthHandler serves /health.
func (s *HealthSource) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := s.Health()

		w.Header().Set("Content-Type", "application/json")
		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)

		_ = json.NewEncoder(w).Encode(health)
	}
}

// ReadyHandler serves /ready.
func (s *HealthSource) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		readiness := s.Readiness()

		w.Header().Set("Content-Type", "application/json")
		statusCode := http.StatusOK
		if readiness.Status != "ready" {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)

		_ = json.NewEncoder(w).Encode(readiness)
	}
}

// LivenessHandler serves /live. It reports only that the process is running
// and how old its heartbeat is; acting on a stalled heartbeat while RUNNING
// is the watchdog's job, not this endpoint's.
func (s *HealthSource) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		age := time.Now().Unix() - s.Heartbeat.Load()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":                "alive",
			"uptime":                time.Since(s.StartTime).String(),
			"heartbeat_age_seconds": age,
		})
	}
}
