// Package health probes the service's dependencies.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/currencyguard-server/internal/logger"
)

const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// Check probes one dependency and returns nil when it is usable.
type Check func(ctx context.Context) error

// Report is the result of running all checks. Checks maps each check to
// StatusOK or StatusUnavailable; failure details go to the log only.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	return r.Status == StatusOK
}

type namedCheck struct {
	name  string
	check Check
}

// Checker runs the registered checks concurrently, each bounded by timeout.
type Checker struct {
	mu      sync.RWMutex
	checks  []namedCheck
	timeout time.Duration
	logger  *logger.Logger
}

func NewChecker(timeout time.Duration, logger *logger.Logger) *Checker {
	return &Checker{timeout: timeout, logger: logger}
}

// Register adds a named check.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, namedCheck{name: name, check: check})
}

// Check runs all checks and aggregates the result.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	checks := append([]namedCheck(nil), c.checks...)
	c.mu.RUnlock()

	results := make([]string, len(checks))
	var wg sync.WaitGroup
	for i, nc := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			if err := nc.check(checkCtx); err != nil {
				c.logger.Warn("Health checker: dependency check failed",
					"check", nc.name,
					"error", err.Error())
				results[i] = StatusUnavailable
				return
			}
			results[i] = StatusOK
		}()
	}
	wg.Wait()

	report := Report{Status: StatusOK, Checks: make(map[string]string, len(checks))}
	for i, nc := range checks {
		report.Checks[nc.name] = results[i]
		if results[i] != StatusOK {
			report.Status = StatusUnavailable
		}
	}
	return report
}

// Run checks immediately and then every interval, passing each report to update, until ctx is done.
func (c *Checker) Run(ctx context.Context, interval time.Duration, update func(Report)) {
	update(c.Check(ctx))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			update(c.Check(ctx))
		case <-ctx.Done():
			return
		}
	}
}
