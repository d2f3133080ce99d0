// Package probe runs startup checks before the service accepts traffic.
// Critical failures abort startup; the rest are logged and the service
// degrades to its fallback behavior.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// defaultTimeout bounds a single check when the probe does not set its own.
const defaultTimeout = 5 * time.Second

// CheckFunc performs one health check. It returns nil on success.
type CheckFunc func(ctx context.Context) error

// Probe is a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // a failure here prevents startup
	Timeout  time.Duration
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Run executes all probes concurrently and returns results in probe order.
// Each check gets its own timeout so one slow vendor cannot stall startup.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()

			timeout := p.Timeout
			if timeout <= 0 {
				timeout = defaultTimeout
			}
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := p.Check(checkCtx)
			results[i] = Result{
				Probe:    p,
				Error:    err,
				Duration: time.Since(start),
			}
		}()
	}
	wg.Wait()

	return results
}

// Summarize logs each result and returns a combined error if any critical
// probe failed.
func Summarize(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup checks")

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-24s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error != nil {
			slog.Error(msg, "error", r.Error)
			if r.Probe.Critical {
				criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
			}
		} else {
			slog.Info(msg)
		}
	}

	if len(criticalErrors) > 0 {
		return errors.Join(criticalErrors...)
	}

	return nil
}
