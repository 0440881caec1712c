package api

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/tphakala/graphing-app/internal/logger"
)

// Health status values.
const (
	healthOK       = "ok"
	healthDegraded = "degraded"
)

// healthCheck reports build info, uptime, database reachability and memory use.
// It answers 503 when the database cannot be pinged.
func (s *Server) healthCheck(c echo.Context) error {
	uptime := time.Since(s.startTime)

	ctx, cancel := context.WithTimeout(c.Request().Context(), DefaultHealthTimeout)
	defer cancel()

	status := healthOK
	db := map[string]any{
		"backend": s.dataStore.Backend(),
		"status":  healthOK,
	}
	if err := s.dataStore.Ping(ctx); err != nil {
		status = healthDegraded
		db["status"] = healthDegraded
		db["error"] = "unreachable"
		s.log.Warn("health check database ping failed", logger.Error(err))
	}

	body := map[string]any{
		"status":         status,
		"name":           s.settings.Main.Name,
		"version":        s.settings.Version,
		"build_date":     s.settings.BuildDate,
		"uptime":         uptime.Round(time.Second).String(),
		"uptime_seconds": int64(uptime.Seconds()),
		"timestamp":      time.Now().Format(time.RFC3339),
		"database":       db,
		"system":         systemStats(ctx),
	}

	code := http.StatusOK
	if status != healthOK {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, body)
}

// systemStats omits values the platform cannot report.
func systemStats(ctx context.Context) map[string]any {
	stats := map[string]any{}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats["memory_used_percent"] = vm.UsedPercent
	}
	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfoWithContext(ctx); err == nil {
			stats["process_rss_bytes"] = info.RSS
		}
	}
	return stats
}
