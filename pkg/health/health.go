// Package health reports whether the engine's registries and policy are fit
// to serve jobs. Checks run in parallel and roll up to a single status.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/detector"
	"github.com/nvisycom/core/pkg/redaction"
	"github.com/nvisycom/core/pkg/tokenizer"
)

// Status is the health state of a component or the aggregate.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Name      string            `json:"name"`
	Status    Status            `json:"status"`
	Message   string            `json:"message,omitempty"`
	Error     string            `json:"error,omitempty"`
	Duration  time.Duration     `json:"duration"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Critical  bool              `json:"critical"`
}

// Checker probes one component.
type Checker interface {
	Check(ctx context.Context) CheckResult
	Name() string
	IsCritical() bool
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc struct {
	name     string
	critical bool
	checkFn  func(ctx context.Context) CheckResult
}

// NewChecker wraps a check function.
func NewChecker(name string, critical bool, checkFn func(ctx context.Context) CheckResult) *CheckerFunc {
	return &CheckerFunc{name: name, critical: critical, checkFn: checkFn}
}

func (c *CheckerFunc) Check(ctx context.Context) CheckResult { return c.checkFn(ctx) }
func (c *CheckerFunc) Name() string                          { return c.name }
func (c *CheckerFunc) IsCritical() bool                      { return c.critical }

// HealthChecker runs a set of component checks.
type HealthChecker struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	timeout  time.Duration
}

// NewHealthChecker creates a checker manager. A non-positive timeout
// selects 30 seconds.
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HealthChecker{checkers: make(map[string]Checker), timeout: timeout}
}

// AddChecker registers a checker, replacing any with the same name.
func (hc *HealthChecker) AddChecker(checker Checker) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checkers[checker.Name()] = checker
}

// RemoveChecker unregisters a checker.
func (hc *HealthChecker) RemoveChecker(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checkers, name)
}

// Report is the aggregate of one health pass.
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Checks    map[string]CheckResult `json:"checks"`
	Summary   map[string]int         `json:"summary"`
	Critical  bool                   `json:"critical"`
}

// Check runs every registered check in parallel and aggregates.
func (hc *HealthChecker) Check(ctx context.Context, service, version string) Report {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	hc.mu.RLock()
	checkers := make([]Checker, 0, len(hc.checkers))
	for _, c := range hc.checkers {
		checkers = append(checkers, c)
	}
	hc.mu.RUnlock()

	results := make(chan CheckResult, len(checkers))
	var wg sync.WaitGroup
	for _, c := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			results <- runCheck(checkCtx, c)
		}(c)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	checks := make(map[string]CheckResult)
	summary := map[string]int{
		string(StatusHealthy):   0,
		string(StatusDegraded):  0,
		string(StatusUnhealthy): 0,
		string(StatusUnknown):   0,
	}
	criticalFailed := false
	for r := range results {
		checks[r.Name] = r
		summary[string(r.Status)]++
		if r.Critical && r.Status != StatusHealthy {
			criticalFailed = true
		}
	}

	return Report{
		Status:    overallStatus(summary, criticalFailed),
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Service:   service,
		Version:   version,
		Checks:    checks,
		Summary:   summary,
		Critical:  criticalFailed,
	}
}

func runCheck(ctx context.Context, checker Checker) (result CheckResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = CheckResult{
				Name:   checker.Name(),
				Status: StatusUnhealthy,
				Error:  fmt.Sprintf("check panicked: %v", r),
			}
		}
		result.Duration = time.Since(start)
		result.Timestamp = time.Now()
		result.Critical = checker.IsCritical()
		if result.Name == "" {
			result.Name = checker.Name()
		}
	}()
	return checker.Check(ctx)
}

func overallStatus(summary map[string]int, criticalFailed bool) Status {
	switch {
	case criticalFailed, summary[string(StatusUnhealthy)] > 0:
		return StatusUnhealthy
	case summary[string(StatusDegraded)] > 0, summary[string(StatusUnknown)] > 0:
		return StatusDegraded
	}
	return StatusHealthy
}

// TaxonomyChecker verifies the category tree is frozen and populated.
func TaxonomyChecker(reg *category.Registry) Checker {
	return NewChecker("taxonomy", true, func(ctx context.Context) CheckResult {
		leaves := len(reg.Leaves())
		if leaves == 0 {
			return CheckResult{Status: StatusUnhealthy, Message: "taxonomy has no leaf categories"}
		}
		if !reg.Frozen() {
			return CheckResult{
				Status:  StatusDegraded,
				Message: "taxonomy is still mutable; freeze it before serving jobs",
			}
		}
		return CheckResult{
			Status:   StatusHealthy,
			Message:  "taxonomy loaded",
			Metadata: map[string]string{"leaves": fmt.Sprintf("%d", leaves)},
		}
	})
}

// TokenizerChecker verifies every expected content kind has a tokenizer.
func TokenizerChecker(reg *tokenizer.Registry) Checker {
	return NewChecker("tokenizers", true, func(ctx context.Context) CheckResult {
		kinds := reg.Kinds()
		if len(kinds) == 0 {
			return CheckResult{Status: StatusUnhealthy, Message: "no tokenizers registered"}
		}
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		return CheckResult{
			Status:   StatusHealthy,
			Message:  "tokenizers registered",
			Metadata: map[string]string{"kinds": fmt.Sprintf("%v", names)},
		}
	})
}

// DetectorChecker verifies at least one matcher is registered.
func DetectorChecker(reg *detector.Registry) Checker {
	return NewChecker("detectors", true, func(ctx context.Context) CheckResult {
		n := reg.Len()
		if n == 0 {
			return CheckResult{Status: StatusUnhealthy, Message: "no matchers registered"}
		}
		return CheckResult{
			Status:   StatusHealthy,
			Message:  "matchers registered",
			Metadata: map[string]string{"matchers": fmt.Sprintf("%d", n)},
		}
	})
}

// PolicyChecker validates the redaction policy against the available keys.
func PolicyChecker(policy *redaction.Policy, hasHashKey bool) Checker {
	return NewChecker("policy", true, func(ctx context.Context) CheckResult {
		if policy == nil {
			return CheckResult{Status: StatusUnhealthy, Message: "no policy configured"}
		}
		if err := policy.Validate(hasHashKey); err != nil {
			return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: "policy invalid"}
		}
		return CheckResult{Status: StatusHealthy, Message: "policy valid"}
	})
}
