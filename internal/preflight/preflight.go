package preflight

import (
	"context"

	"recall/internal/config"
	"recall/internal/deps"
	"recall/internal/stage"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Health converts the result into stage readiness.
func (r Result) Health() stage.Health {
	if r.Passed {
		h := stage.Healthy(r.Name)
		h.Detail = r.Detail
		return h
	}
	return stage.Unhealthy(r.Name, r.Detail)
}

// RunAll executes the offline checks for the given config: directory access,
// credentials, and media binaries.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Upload directory", cfg.Paths.UploadDir))
	results = append(results, CheckDirectoryAccess("Frames directory", cfg.Paths.FramesDir))
	results = append(results, CheckAPIKey(cfg))
	for _, status := range deps.CheckMedia(cfg) {
		results = append(results, fromDependency(status))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func fromDependency(status deps.Status) Result {
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Path}
	}
	return Result{Name: status.Name, Detail: status.Detail}
}
