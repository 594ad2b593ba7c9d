// Package resolver turns overlapping candidate matches into a final,
// non-overlapping set. Resolution is a pure function of its inputs and is
// deterministic: the same candidates in any arrival order produce the same
// result.
package resolver

import (
	"sort"
	"strings"

	"github.com/nvisycom/core/pkg/category"
)

// Match is one candidate finding inside a unit's decoded text, annotated
// with its detector identity for tie-breaking and reporting.
type Match struct {
	Start         int
	End           int
	Value         string
	Confidence    float64
	Category      category.Category
	Detector      string
	DetectorOrder int
}

// Resolver applies the overlap rules with a taxonomy registry and priority
// table fixed at construction.
type Resolver struct {
	taxonomy   *category.Registry
	priorities category.PriorityTable
}

// New creates a resolver. A nil priority table uses the default table.
func New(taxonomy *category.Registry, priorities category.PriorityTable) *Resolver {
	if priorities == nil {
		priorities = category.DefaultPriorities()
	}
	return &Resolver{taxonomy: taxonomy, priorities: priorities}
}

// Resolve returns the accepted matches for one unit's decoded text, sorted
// by start offset and strictly non-overlapping. Overlaps are decided by,
// in order: longer span, higher confidence, higher category priority,
// earlier detector registration. Adjacent same-category matches separated
// only by whitespace are merged into one.
func (r *Resolver) Resolve(text string, candidates []Match) []Match {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]Match, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return r.less(sorted[i], sorted[j])
	})

	var accepted []Match
	for _, c := range sorted {
		if !overlapsAny(accepted, c) {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Start < accepted[j].Start })
	return r.mergeAdjacent(text, accepted)
}

// less orders candidates so that the sweep considers stronger claims first.
func (r *Resolver) less(a, b Match) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if la, lb := a.End-a.Start, b.End-b.Start; la != lb {
		return la > lb
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	pa := r.taxonomy.Priority(r.priorities, a.Category)
	pb := r.taxonomy.Priority(r.priorities, b.Category)
	if pa != pb {
		return pa > pb
	}
	return a.DetectorOrder < b.DetectorOrder
}

func overlapsAny(accepted []Match, c Match) bool {
	for _, a := range accepted {
		if c.Start < a.End && a.Start < c.End {
			return true
		}
	}
	return false
}

// mergeAdjacent folds runs of same-category matches whose gaps are all
// whitespace into one match, so a value split by formatting is redacted as
// one finding.
func (r *Resolver) mergeAdjacent(text string, matches []Match) []Match {
	if len(matches) < 2 {
		return matches
	}
	out := matches[:1]
	for _, m := range matches[1:] {
		last := &out[len(out)-1]
		if m.Category == last.Category && isWhitespace(text[last.End:m.Start]) {
			last.End = m.End
			last.Value = text[last.Start:last.End]
			if m.Confidence > last.Confidence {
				last.Confidence = m.Confidence
			}
			continue
		}
		out = append(out, m)
	}
	return out
}

func isWhitespace(s string) bool {
	return strings.TrimSpace(s) == "" && len(s) > 0
}
