package balancer

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Status represents the health status of the balancer
type Status struct {
	Status          string    `json:"status"` // "healthy", "unhealthy"
	Timestamp       time.Time `json:"timestamp"`
	Uptime          string    `json:"uptime"`
	PacketsReceived uint64    `json:"packets_received"`
	PacketsRelayed  uint64    `json:"packets_relayed"`
	PacketsDropped  uint64    `json:"packets_dropped"`
}

// statusHandler manages health check state
type statusHandler struct {
	startTime       time.Time
	packetsReceived atomic.Uint64
	packetsRelayed  atomic.Uint64
	packetsDropped  atomic.Uint64
}

// newStatusHandler creates a new health checker
func newStatusHandler() *statusHandler {
	return &statusHandler{
		startTime: time.Now(),
	}
}

func (h *statusHandler) packetReceived() {
	if h == nil {
		return
	}
	h.packetsReceived.Add(1)
}

func (h *statusHandler) packetRelayed() {
	if h == nil {
		return
	}
	h.packetsRelayed.Add(1)
}

func (h *statusHandler) packetDropped() {
	if h == nil {
		return
	}
	h.packetsDropped.Add(1)
}

// getStatus returns the current health status
func (h *statusHandler) getStatus() Status {
	if h == nil {
		return Status{}
	}

	return Status{
		Status:          "healthy",
		Timestamp:       time.Now(),
		Uptime:          time.Since(h.startTime).String(),
		PacketsReceived: h.packetsReceived.Load(),
		PacketsRelayed:  h.packetsRelayed.Load(),
		PacketsDropped:  h.packetsDropped.Load(),
	}
}

// ServeHTTP implements http.Handler for the health check endpoint
func (h *statusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status := h.getStatus()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	json.NewEncoder(w).Encode(status)
}
