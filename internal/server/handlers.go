package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/vmi/dashboard/internal/scheduler"
)

// SystemStatusResponse is the payload of /api/system/status
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	Database      string  `json:"database"`
	Dialect       string  `json:"dialect"`
	Uptime        string  `json:"uptime"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	Goroutines    int     `json:"goroutines"`

	Jobs []scheduler.JobInfo `json:"jobs"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "vmi-dashboard",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus reports database reachability and host load
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	resp := SystemStatusResponse{
		Status:     "ok",
		Database:   "ok",
		Uptime:     time.Since(s.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}

	if s.cfg.DB == nil {
		resp.Database = "unavailable"
		resp.Status = "degraded"
	} else {
		resp.Dialect = string(s.cfg.DB.Dialect())
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.cfg.DB.HealthCheck(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Database health check failed")
			resp.Database = "error"
			resp.Status = "degraded"
		}
	}

	resp.Jobs = []scheduler.JobInfo{}
	if s.cfg.Jobs != nil {
		resp.Jobs = s.cfg.Jobs.Jobs()
	}

	resp.CPUPercent, resp.MemoryPercent = s.systemStats()
	s.writeJSON(w, http.StatusOK, resp)
}

// systemStats samples CPU over 100ms so the endpoint stays fast
func (s *Server) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
