// Package report builds the audit trail of a detection or redaction job.
// A report lists what was found and what was done about it; it never holds
// raw matched values.
package report

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/core"
)

// Record describes one final match and the action taken on it.
type Record struct {
	UnitIndex  int               `json:"unit_index"`
	Path       string            `json:"path"`
	Start      int               `json:"start"` // offset within the unit's decoded text
	End        int               `json:"end"`
	Category   category.Category `json:"category"`
	Action     string            `json:"action"`
	Confidence float64           `json:"confidence"`
	Detector   string            `json:"detector"`

	// Preview is the masked replacement text, present only when the job
	// enables previews. It never contains the raw value.
	Preview string `json:"preview,omitempty"`
}

// Report is the immutable result snapshot produced by Finalize.
type Report struct {
	ID        uuid.UUID        `json:"id"`
	SessionID uuid.UUID        `json:"session_id"`
	Kind      core.ContentKind `json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
	Duration  time.Duration    `json:"duration"`

	// Digest is the SHA-256 of the scanned document, hex-encoded.
	Digest string `json:"digest,omitempty"`

	UnitCount    int                       `json:"unit_count"`
	Records      []Record                  `json:"records"`
	Degradations []core.Degradation        `json:"degradations,omitempty"`
	Totals       map[category.Category]int `json:"totals"`
}

// MatchCount returns the number of final matches.
func (r *Report) MatchCount() int { return len(r.Records) }

// Builder accumulates records during a job. Detection workers add
// degradations concurrently; match records arrive from the sequential
// application phase already in document order.
type Builder struct {
	mu           sync.Mutex
	id           uuid.UUID
	sessionID    uuid.UUID
	kind         core.ContentKind
	started      time.Time
	digest       string
	unitCount    int
	records      []Record
	degradations []core.Degradation
}

// NewBuilder starts a report for one job.
func NewBuilder(kind core.ContentKind, sessionID uuid.UUID) *Builder {
	return &Builder{
		id:        uuid.New(),
		sessionID: sessionID,
		kind:      kind,
		started:   time.Now(),
	}
}

// AddRecord appends one match record.
func (b *Builder) AddRecord(rec Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, rec)
}

// AddDegradation records a skipped or downgraded unit.
func (b *Builder) AddDegradation(d core.Degradation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.degradations = append(b.degradations, d)
}

// SetDigest records the document digest.
func (b *Builder) SetDigest(digest string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.digest = digest
}

// SetUnitCount records how many units the tokenizer produced.
func (b *Builder) SetUnitCount(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unitCount = n
}

// Finalize produces the immutable snapshot: records sorted by unit index
// and offset, per-category totals computed, slices copied so later builder
// use cannot alter the snapshot.
func (b *Builder) Finalize() *Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	records := make([]Record, len(b.records))
	copy(records, b.records)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UnitIndex != records[j].UnitIndex {
			return records[i].UnitIndex < records[j].UnitIndex
		}
		return records[i].Start < records[j].Start
	})

	degradations := make([]core.Degradation, len(b.degradations))
	copy(degradations, b.degradations)

	totals := make(map[category.Category]int, len(records))
	for _, rec := range records {
		totals[rec.Category]++
	}

	return &Report{
		ID:           b.id,
		SessionID:    b.sessionID,
		Kind:         b.kind,
		CreatedAt:    b.started,
		Duration:     time.Since(b.started),
		Digest:       b.digest,
		UnitCount:    b.unitCount,
		Records:      records,
		Degradations: degradations,
		Totals:       totals,
	}
}
