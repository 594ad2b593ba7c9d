// Package detector provides the matcher registry and the built-in pattern
// matchers. A matcher scans the decoded text of one content unit and emits
// candidate findings; it never sees document structure and holds no state
// between calls.
package detector

import (
	"fmt"
	"sync"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/core"
)

// Candidate is one potential finding inside a unit's decoded text. Start
// and End are byte offsets into that text, not the document.
type Candidate struct {
	Start      int
	End        int
	Value      string
	Confidence float64
}

// Matcher detects one leaf category. Implementations must be safe for
// concurrent use.
type Matcher interface {
	// Name returns the matcher's unique registration name.
	Name() string

	// Category returns the leaf category this matcher detects.
	Category() category.Category

	// Match scans decoded unit text and returns candidate findings.
	Match(text string) []Candidate
}

// Registry holds matchers in registration order. Order is stable and is the
// final tie-break during overlap resolution, so earlier-registered matchers
// win exact ties.
type Registry struct {
	mu       sync.RWMutex
	matchers []Matcher
	byName   map[string]int
	frozen   bool
}

// NewRegistry creates an empty matcher registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register appends a matcher. Duplicate names and registration after
// Freeze fail.
func (r *Registry) Register(m Matcher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return core.NewError(core.ErrInvalidConfig, "detector",
			fmt.Sprintf("registry is frozen: cannot register %q", m.Name()))
	}
	if _, exists := r.byName[m.Name()]; exists {
		return core.NewError(core.ErrInvalidConfig, "detector",
			fmt.Sprintf("matcher %q already registered", m.Name()))
	}
	r.byName[m.Name()] = len(r.matchers)
	r.matchers = append(r.matchers, m)
	return nil
}

// Freeze makes the registry immutable. The engine freezes it before the
// first job so registration order cannot change mid-run.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Matchers returns the registered matchers in registration order.
func (r *Registry) Matchers() []Matcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Matcher, len(r.matchers))
	copy(out, r.matchers)
	return out
}

// Order returns the registration index of a matcher name, or -1.
func (r *Registry) Order(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.byName[name]; ok {
		return i
	}
	return -1
}

// Len returns the number of registered matchers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matchers)
}

// SafeMatch runs one matcher, converting a panic into a detector_failure
// error so a misbehaving matcher only loses its own results for the unit.
func SafeMatch(m Matcher, text string) (candidates []Candidate, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			candidates = nil
			err = core.NewError(core.ErrDetectorFailure, "detector",
				fmt.Sprintf("matcher %q panicked", m.Name())).
				WithContext("panic", fmt.Sprint(rec))
		}
	}()
	return m.Match(text), nil
}
