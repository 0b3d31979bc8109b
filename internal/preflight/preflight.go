package preflight

import (
	"context"

	"tunesort/internal/config"
	"tunesort/internal/oracle"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks for cfg and, when checker is non-nil,
// the oracle health check.
func RunAll(ctx context.Context, cfg *config.Config, checker oracle.HealthChecker) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Music root", cfg.Paths.RootFolder))
	if !cfg.InboxIsRoot() {
		results = append(results, CheckDirectoryAccess("Inbox", cfg.InboxPath()))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	results = append(results, CheckAPIKey("API key", cfg.Oracle.APIKey))
	if checker != nil {
		results = append(results, CheckOracle(ctx, "Oracle ("+cfg.Oracle.Provider+")", checker, cfg.OracleTimeout()))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
