// Package probe runs startup checks before the simulation begins serving.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single check.
const DefaultTimeout = 10 * time.Second

// Probe is one startup check. Critical failures abort startup; the rest
// are logged and tolerated.
type Probe struct {
	Name     string
	Check    func(ctx context.Context) error
	Critical bool
	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// Result is the outcome of one probe.
type Result struct {
	Name     string
	Critical bool
	Err      error
	Duration time.Duration
}

// Run executes the probes in order and returns a joined error of all
// critical failures, or nil when the application may start. Every result
// is logged.
func Run(ctx context.Context, probes []Probe) error {
	var critical []error

	for _, p := range probes {
		r := runOne(ctx, p)

		if r.Err == nil {
			slog.Info("Startup check passed", "probe", r.Name, "duration", r.Duration.Round(time.Millisecond))
			continue
		}
		if r.Critical {
			slog.Error("Startup check failed", "probe", r.Name, "error", r.Err)
			critical = append(critical, fmt.Errorf("%s: %w", r.Name, r.Err))
		} else {
			slog.Warn("Startup check failed, continuing", "probe", r.Name, "error", r.Err)
		}
	}

	return errors.Join(critical...)
}

func runOne(ctx context.Context, p Probe) Result {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := p.Check(checkCtx)
	return Result{Name: p.Name, Critical: p.Critical, Err: err, Duration: time.Since(start)}
}
