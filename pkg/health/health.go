// Package health runs named checks against a running simulation and
// aggregates them into a single status report.
package health

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// Status values reported by a Checker
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Check is a single named health probe.
type Check interface {
	// Name returns the unique name of this check
	Name() string
	// Check returns an error when the component is unhealthy
	Check(ctx context.Context) error
}

// Report is the aggregated result of every registered check.
type Report struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// Healthy reports whether every check passed
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// Failed returns the names of the failing checks in sorted order
func (r Report) Failed() []string {
	var names []string
	for name, c := range r.Checks {
		if c.Status != StatusHealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ComponentHealth is the result of one check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker holds the registered checks.
type Checker struct {
	checks map[string]Check
	mu     sync.RWMutex
}

// NewChecker creates an empty checker
func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]Check),
	}
}

// AddCheck registers a check. A check with the same name is replaced.
func (hc *Checker) AddCheck(check Check) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a check by name
func (hc *Checker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// Run executes every check. The report is healthy only if all checks pass.
func (hc *Checker) Run(ctx context.Context) Report {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	report := Report{
		Status: StatusHealthy,
		Checks: make(map[string]ComponentHealth, len(hc.checks)),
	}
	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			report.Status = StatusUnhealthy
			report.Checks[name] = ComponentHealth{Status: StatusUnhealthy, Message: err.Error()}
			continue
		}
		report.Checks[name] = ComponentHealth{Status: StatusHealthy}
	}
	return report
}

// FiniteBodiesCheck fails when any collider has a non-finite position,
// velocity or bounds.
type FiniteBodiesCheck struct {
	world *physics.World
}

// NewFiniteBodiesCheck creates a check over the colliders of w
func NewFiniteBodiesCheck(w *physics.World) *FiniteBodiesCheck {
	return &FiniteBodiesCheck{world: w}
}

// Name implements Check.
func (f *FiniteBodiesCheck) Name() string {
	return "finite_bodies"
}

// Check implements Check.
func (f *FiniteBodiesCheck) Check(ctx context.Context) error {
	for _, c := range f.world.Bodies() {
		if c.Removed() {
			continue
		}
		if !finite(c.Position) || !finite(c.Velocity) || !c.Bounds().Finite() {
			return fmt.Errorf("collider %d has non-finite state at %v", c.ID, c.Position)
		}
	}
	return nil
}

func finite(v physics.Vector2D) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// ProgressCheck fails when the frame counter has not moved since the
// previous call.
type ProgressCheck struct {
	frame func() uint64

	mu      sync.Mutex
	last    uint64
	started bool
}

// NewProgressCheck creates a progress check over a frame counter
func NewProgressCheck(frame func() uint64) *ProgressCheck {
	return &ProgressCheck{frame: frame}
}

// Name implements Check.
func (p *ProgressCheck) Name() string {
	return "progress"
}

// Check implements Check. The first call only records the counter.
func (p *ProgressCheck) Check(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.frame()
	if p.started && current == p.last {
		return fmt.Errorf("simulation stalled at frame %d", current)
	}
	p.last, p.started = current, true
	return nil
}

// MemoryCheck fails when memory usage exceeds a limit.
type MemoryCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryCheck creates a check for memory usage in MB
func NewMemoryCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryCheck {
	return &MemoryCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name implements Check.
func (m *MemoryCheck) Name() string {
	return "memory"
}

// Check implements Check.
func (m *MemoryCheck) Check(ctx context.Context) error {
	if currentMB := m.getMemoryUsage(); currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
