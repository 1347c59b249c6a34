package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aristath/chartpresets/internal/database"
	"github.com/aristath/chartpresets/internal/modules/charts"
	"github.com/aristath/chartpresets/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	databases   []*database.DB
	charts      *charts.Service
	scheduler   *scheduler.Scheduler
}

// NewSystemHandlers creates a new system handlers instance. Nil databases are ignored.
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	databases []*database.DB,
	chartService *charts.Service,
	sched *scheduler.Scheduler,
) *SystemHandlers {
	var dbs []*database.DB
	for _, db := range databases {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		databases:   dbs,
		charts:      chartService,
		scheduler:   sched,
	}
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status          string         `json:"status"`
	Uptime          string         `json:"uptime"`
	StartedAt       string         `json:"started_at"`
	CPUPercent      float64        `json:"cpu_percent"`
	MemoryPercent   float64        `json:"memory_percent"`
	Goroutines      int            `json:"goroutines"`
	DataDirSizeMB   float64        `json:"data_dir_size_mb"`
	ChartInstances  int            `json:"chart_instances"`
	RendersByStatus map[string]int `json:"renders_by_status"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	resp := SystemStatusResponse{
		Status:        "healthy",
		Uptime:        time.Since(h.startupTime).Round(time.Second).String(),
		StartedAt:     h.startupTime.Format(time.RFC3339),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		DataDirSizeMB: h.getDirSize(h.dataDir),
	}

	if h.charts != nil {
		resp.ChartInstances = h.charts.Manager().Len()
		stats, err := h.charts.RenderStats()
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to count renders")
		}
		resp.RendersByStatus = stats
	}

	writeJSON(h.log, w, http.StatusOK, resp)
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats := make([]*database.Stats, 0, len(h.databases))
	var totalBytes int64
	for _, db := range h.databases {
		s, err := db.GetStats()
		if err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			writeJSON(h.log, w, http.StatusInternalServerError, map[string]string{"error": "Failed to get database stats"})
			return
		}
		totalBytes += s.SizeBytes + s.WALSizeBytes
		stats = append(stats, s)
	}

	writeJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"databases":   stats,
		"total_bytes": totalBytes,
	})
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobInfo{}
	if h.scheduler != nil {
		jobs = h.scheduler.Describe()
	}
	writeJSON(h.log, w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// HandleRunJob handles POST /api/system/jobs/{name}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request, name string) {
	if h.scheduler == nil {
		writeJSON(h.log, w, http.StatusNotFound, map[string]string{"error": "No scheduler configured"})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")
	if err := h.scheduler.RunByName(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			writeJSON(h.log, w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		writeJSON(h.log, w, http.StatusInternalServerError, map[string]string{"status": "error", "message": err.Error()})
		return
	}

	writeJSON(h.log, w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": name + " completed",
	})
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	if dirPath == "" {
		return 0
	}
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats returns CPU and RAM usage percentages. The CPU sample blocks for 100ms.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

func writeJSON(log zerolog.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
