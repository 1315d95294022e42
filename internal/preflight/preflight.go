package preflight

import (
	"errors"
	"fmt"
	"strings"

	"usecasesync/internal/config"
)

// ErrCheckFailed is returned by Err when at least one check did not pass.
var ErrCheckFailed = errors.New("preflight check failed")

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects which checks RunAll performs.
type Options struct {
	// SkipDestinations omits write checks, for dry runs.
	SkipDestinations bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Paths.Source != "" {
		results = append(results, CheckFileReadable("Source", cfg.Paths.Source))
	}
	if opts.SkipDestinations {
		return results
	}

	results = append(results, CheckDestination("Catalog", cfg.Paths.Catalog))

	// Registry storage depends on the backend; snapshot mode keeps none.
	if cfg.Registry.Mode != config.ModeSnapshot {
		if cfg.Registry.Backend == config.BackendSQLite {
			results = append(results, CheckDestination("State database", cfg.Paths.StateDB))
		} else {
			results = append(results, CheckDestination("Registry", cfg.Paths.Registry))
		}
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryTree("Log directory", cfg.Paths.LogDir))
	}

	return results
}

// Err folds failed results into one error wrapping ErrCheckFailed, or nil
// when every check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrCheckFailed, strings.Join(failed, "; "))
}
