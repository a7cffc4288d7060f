package daemon

import (
	"context"
	"os"
	"time"

	"recall/internal/api"
	"recall/internal/deps"
	"recall/internal/preflight"
	"recall/internal/stage"
)

// Health assembles the report served at /api/health. The daemon is healthy
// while running with a reachable database; failed preflight checks and
// missing binaries are reported without changing the status.
func (d *Daemon) Health(ctx context.Context) api.HealthResponse {
	status := "healthy"
	stages := make([]api.StageHealth, 0, 8)

	dbHealth := stage.Healthy("Memory database")
	if err := d.store.Ping(ctx); err != nil {
		dbHealth = stage.Unhealthy("Memory database", err.Error())
		status = "degraded"
	}
	stages = append(stages, toStageHealth(dbHealth))
	if !d.store.IndexAvailable() {
		stages = append(stages, toStageHealth(stage.Unhealthy("Search index", "full-text index unavailable; using substring search")))
	} else {
		stages = append(stages, toStageHealth(stage.Healthy("Search index")))
	}
	for _, result := range preflight.RunAll(ctx, d.cfg) {
		stages = append(stages, toStageHealth(result.Health()))
	}
	if !d.running.Load() {
		status = "stopped"
	}

	counts := d.registry.Counts()
	jobCounts := make(map[string]int, len(counts))
	for state, n := range counts {
		jobCounts[string(state)] = n
	}

	mediaDeps := deps.CheckMedia(d.cfg)
	dependencies := make([]api.DependencyStatus, 0, len(mediaDeps))
	for _, dep := range mediaDeps {
		dependencies = append(dependencies, api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Path:        dep.Path,
			Detail:      dep.Detail,
		})
	}

	return api.HealthResponse{
		Status:         status,
		Timestamp:      time.Now().Format(time.RFC3339),
		PID:            pid(),
		DatabasePath:   d.store.Path(),
		IndexAvailable: d.store.IndexAvailable(),
		Pool:           d.pool.Stats(),
		Jobs:           jobCounts,
		Stages:         stages,
		Dependencies:   dependencies,
	}
}

func toStageHealth(h stage.Health) api.StageHealth {
	return api.StageHealth{Name: h.Name, Ready: h.Ready, Detail: h.Detail}
}

func pid() int {
	return os.Getpid()
}
