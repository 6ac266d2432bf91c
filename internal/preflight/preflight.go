package preflight

import (
	"context"
	"path/filepath"

	"topicsweep/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every check that applies to cfg.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckReadable("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Model directory", cfg.Paths.ModelDir))

	// Run logs are optional, so the log directory only matters when enabled.
	if cfg.Logging.RunLogs {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if cfg.Paths.IndexPath != "" {
		results = append(results, CheckIndex(ctx, cfg.Paths.IndexPath))
	}

	if cfg.Metrics.TextfilePath != "" {
		results = append(results, CheckDirectoryAccess("Metrics directory", filepath.Dir(cfg.Metrics.TextfilePath)))
	}

	return results
}

// Failed counts the results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
