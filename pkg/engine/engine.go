// Package engine orchestrates the detection-and-redaction pipeline:
// tokenize, detect across a bounded worker pool, resolve overlaps, apply
// redaction strategies, and reassemble the document with an audit report.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/core"
	"github.com/nvisycom/core/pkg/detector"
	"github.com/nvisycom/core/pkg/logger"
	"github.com/nvisycom/core/pkg/redaction"
	"github.com/nvisycom/core/pkg/report"
	"github.com/nvisycom/core/pkg/resolver"
	"github.com/nvisycom/core/pkg/tokenizer"
	"github.com/nvisycom/core/pkg/tokenizer/text"
)

const previewLimit = 48

// Config is the engine's configuration surface. Zero values select
// defaults: the built-in tokenizers and detectors, the default taxonomy
// and priority table, full-mask policy, and GOMAXPROCS workers.
type Config struct {
	// Policy maps categories to redaction strategies. Nil means full mask
	// for everything.
	Policy *redaction.Policy

	// MinConfidence drops candidates scoring below it. Must be in [0,1].
	MinConfidence float64

	// Parallelism bounds the detection worker pool. Zero or negative
	// selects runtime.GOMAXPROCS(0).
	Parallelism int

	// UnitTimeout limits detector execution per content unit. Zero
	// disables the limit.
	UnitTimeout time.Duration

	// TokenKey keys the tokenization fingerprint. Nil selects a random
	// per-engine key, making tokens session-scoped only.
	TokenKey []byte

	// HashKey keys the hash strategy. Required if any rule hashes.
	HashKey []byte

	// Preview includes a truncated masked replacement in report records.
	Preview bool

	Tokenizers *tokenizer.Registry
	Detectors  *detector.Registry
	Taxonomy   *category.Registry
	Priorities category.PriorityTable

	Logger *logger.Logger
}

// Engine runs detection and redaction jobs. It is immutable after New and
// safe for concurrent use; per-job state lives in the redaction session.
type Engine struct {
	policy        *redaction.Policy
	minConfidence float64
	parallelism   int
	unitTimeout   time.Duration
	tokenKey      []byte
	hashKey       []byte
	preview       bool

	tokenizers *tokenizer.Registry
	detectors  *detector.Registry
	resolver   *resolver.Resolver

	log    *logger.Logger
	tracer trace.Tracer
}

// New validates the configuration and builds an engine. Configuration
// failures surface here, before any bytes are processed.
func New(cfg Config) (*Engine, error) {
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return nil, core.NewError(core.ErrInvalidConfig, "engine",
			"min confidence must be in [0,1]").
			WithContext("min_confidence", cfg.MinConfidence)
	}

	policy := cfg.Policy
	if policy == nil {
		policy = redaction.NewPolicy()
	}
	if err := policy.Validate(len(cfg.HashKey) > 0); err != nil {
		return nil, err
	}

	toks := cfg.Tokenizers
	if toks == nil {
		toks = tokenizer.NewRegistry()
		tokenizer.RegisterDefaultsOn(toks)
	}
	dets := cfg.Detectors
	if dets == nil {
		dets = detector.DefaultRegistry()
	}
	taxonomy := cfg.Taxonomy
	if taxonomy == nil {
		taxonomy = category.Default()
	}
	for _, m := range dets.Matchers() {
		if !taxonomy.Contains(m.Category()) {
			return nil, core.NewError(core.ErrInvalidConfig, "engine",
				"matcher registered under unknown category").
				WithContext("matcher", m.Name()).
				WithContext("category", string(m.Category()))
		}
	}

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	return &Engine{
		policy:        policy,
		minConfidence: cfg.MinConfidence,
		parallelism:   parallelism,
		unitTimeout:   cfg.UnitTimeout,
		tokenKey:      cfg.TokenKey,
		hashKey:       cfg.HashKey,
		preview:       cfg.Preview,
		tokenizers:    toks,
		detectors:     dets,
		resolver:      resolver.New(taxonomy, cfg.Priorities),
		log:           log,
		tracer:        otel.Tracer("github.com/nvisycom/core/pkg/engine"),
	}, nil
}

// Detect scans content and returns the audit report without producing a
// redacted copy. Record actions name the strategy the policy would apply.
func (e *Engine) Detect(ctx context.Context, content []byte, kind core.ContentKind) (*report.Report, error) {
	ctx, span := e.tracer.Start(ctx, "engine.detect",
		trace.WithAttributes(
			attribute.String("content.kind", string(kind)),
			attribute.Int("content.bytes", len(content)),
		))
	defer span.End()

	sess, err := redaction.NewSession(e.tokenKey, e.hashKey)
	if err != nil {
		return nil, err
	}
	_, rep, err := e.run(ctx, content, kind, sess, false)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("matches", rep.MatchCount()))
	return rep, nil
}

// Redact scans content and returns the redacted copy plus the audit
// report. When nothing matches the returned bytes are the input, byte for
// byte.
func (e *Engine) Redact(ctx context.Context, content []byte, kind core.ContentKind) ([]byte, *report.Report, error) {
	ctx, span := e.tracer.Start(ctx, "engine.redact",
		trace.WithAttributes(
			attribute.String("content.kind", string(kind)),
			attribute.Int("content.bytes", len(content)),
		))
	defer span.End()

	sess, err := redaction.NewSession(e.tokenKey, e.hashKey)
	if err != nil {
		return nil, nil, err
	}
	out, rep, err := e.run(ctx, content, kind, sess, true)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	span.SetAttributes(attribute.Int("matches", rep.MatchCount()))
	return out, rep, nil
}

// unitResult is one unit's detection outcome, indexed by unit so the
// application phase runs in document order regardless of scheduling.
type unitResult struct {
	matches      []resolver.Match
	degradations []core.Degradation
	skipped      bool
}

// run executes one job against an existing session. mutate selects whether
// strategies are applied and a document rebuilt; detection-only jobs still
// resolve matches and build the full report.
func (e *Engine) run(ctx context.Context, content []byte, kind core.ContentKind, sess *redaction.Session, mutate bool) ([]byte, *report.Report, error) {
	log := e.log.WithContext(ctx).WithFields(map[string]interface{}{
		"kind":  string(kind),
		"bytes": len(content),
	})

	// UTF-16 or BOM-prefixed input is scanned as UTF-8; a redacted copy is
	// emitted as UTF-8, while a zero-match job returns the input bytes.
	normalized, _, err := normalize(content)
	if err != nil {
		return nil, nil, err
	}

	builder := report.NewBuilder(kind, sess.ID())
	builder.SetDigest(core.NewDigestCell(content).Digest())

	units, degradations := e.tokenize(ctx, normalized, kind)
	builder.SetUnitCount(len(units))
	for _, d := range degradations {
		builder.AddDegradation(d)
	}

	results, err := e.detectUnits(ctx, units)
	if err != nil {
		return nil, nil, err
	}

	// Application phase, sequential in document order so tokenization is
	// deterministic regardless of worker scheduling.
	var edits []unitEdit
	for i, unit := range units {
		res := results[i]
		for _, d := range res.degradations {
			builder.AddDegradation(d)
		}
		if res.skipped || len(res.matches) == 0 {
			continue
		}
		newText, changed, err := e.applyUnit(unit, res.matches, sess, builder, mutate)
		if err != nil {
			return nil, nil, err
		}
		if mutate && changed {
			edits = append(edits, unitEdit{unit: unit, newText: newText})
		}
	}

	rep := builder.Finalize()
	log.Info("job complete: %d units, %d matches, %d degradations",
		len(units), rep.MatchCount(), len(rep.Degradations))

	if !mutate {
		return nil, rep, nil
	}
	if len(edits) == 0 {
		// Byte-exact passthrough, including any BOM the normalizer ate.
		return content, rep, nil
	}
	out, err := reassemble(normalized, edits)
	if err != nil {
		return nil, nil, err
	}
	return out, rep, nil
}

// tokenize resolves the tokenizer for kind and splits the document. A
// missing tokenizer or a whole-document parse failure degrades to
// plain-text scanning instead of failing the job.
func (e *Engine) tokenize(ctx context.Context, data []byte, kind core.ContentKind) ([]core.ContentUnit, []core.Degradation) {
	var degradations []core.Degradation

	tok, err := e.tokenizers.Get(kind)
	if err != nil {
		degradations = append(degradations, core.Degradation{
			Kind:   string(core.ErrUnsupportedFormat),
			Reason: fmt.Sprintf("no tokenizer for kind %q, scanning as plain text", kind),
		})
		tok = text.New()
	}

	units, tokDegradations, err := tok.Tokenize(ctx, data)
	degradations = append(degradations, tokDegradations...)
	if err != nil {
		degradations = append(degradations, core.Degradation{
			Kind:   string(core.ErrMalformedEntry),
			Reason: fmt.Sprintf("document failed to parse as %s, scanning as plain text: %v", kind, err),
		})
		units, _, _ = text.New().Tokenize(ctx, data)
	}
	return units, degradations
}

// detectUnits fans detection out across the worker pool. Results land in a
// unit-indexed slice, so arrival order never influences the output.
func (e *Engine) detectUnits(ctx context.Context, units []core.ContentUnit) ([]unitResult, error) {
	results := make([]unitResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range units {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.scanUnit(gctx, units[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scanUnit runs all matchers against one unit under the per-unit timeout.
// A timed-out unit is skipped and reported, never partially matched.
func (e *Engine) scanUnit(ctx context.Context, unit core.ContentUnit) unitResult {
	if e.unitTimeout <= 0 {
		return e.matchUnit(ctx, unit)
	}

	done := make(chan unitResult, 1)
	go func() { done <- e.matchUnit(ctx, unit) }()

	timer := time.NewTimer(e.unitTimeout)
	defer timer.Stop()
	select {
	case res := <-done:
		return res
	case <-timer.C:
		return unitResult{
			skipped: true,
			degradations: []core.Degradation{{
				Path:   unit.Path,
				Kind:   string(core.ErrUnitTimeout),
				Reason: fmt.Sprintf("detection exceeded %s, unit skipped", e.unitTimeout),
			}},
		}
	case <-ctx.Done():
		return unitResult{skipped: true}
	}
}

func (e *Engine) matchUnit(ctx context.Context, unit core.ContentUnit) unitResult {
	var res unitResult
	var candidates []resolver.Match
	for _, m := range e.detectors.Matchers() {
		if ctx.Err() != nil {
			res.skipped = true
			return res
		}
		cands, err := detector.SafeMatch(m, unit.Text)
		if err != nil {
			res.degradations = append(res.degradations, core.Degradation{
				Path:   unit.Path,
				Kind:   string(core.ErrDetectorFailure),
				Reason: fmt.Sprintf("matcher %s: %v", m.Name(), err),
			})
			continue
		}
		for _, c := range cands {
			if c.Confidence < e.minConfidence {
				continue
			}
			candidates = append(candidates, resolver.Match{
				Start:         c.Start,
				End:           c.End,
				Value:         c.Value,
				Confidence:    c.Confidence,
				Category:      m.Category(),
				Detector:      m.Name(),
				DetectorOrder: e.detectors.Order(m.Name()),
			})
		}
	}
	res.matches = e.resolver.Resolve(unit.Text, candidates)
	return res
}

// applyUnit turns one unit's final matches into report records and, when
// mutating, the rewritten unit text. Matches arrive sorted and
// non-overlapping from the resolver; anything else is an internal error.
func (e *Engine) applyUnit(unit core.ContentUnit, matches []resolver.Match, sess *redaction.Session, builder *report.Builder, mutate bool) (string, bool, error) {
	var b strings.Builder
	last := 0
	changed := false

	for _, m := range matches {
		if m.Start < last || m.End > len(unit.Text) {
			return "", false, core.NewError(core.ErrReassemblyConflict, "engine",
				"final matches overlap within a unit").
				WithContext("path", unit.Path).
				WithContext("start", m.Start)
		}

		rule := e.policy.RuleFor(m.Category)
		rec := report.Record{
			UnitIndex:  unit.Index,
			Path:       unit.Path,
			Start:      m.Start,
			End:        m.End,
			Category:   m.Category,
			Confidence: m.Confidence,
			Detector:   m.Detector,
		}

		if mutate {
			replacement, action, err := redaction.Apply(rule, m.Value, m.Category, sess)
			if err != nil {
				return "", false, err
			}
			rec.Action = action
			if e.preview {
				rec.Preview = truncatePreview(replacement)
			}
			b.WriteString(unit.Text[last:m.Start])
			b.WriteString(replacement)
			changed = true
		} else {
			rec.Action = string(rule.Strategy)
		}
		last = m.End
		builder.AddRecord(rec)
	}

	if !mutate {
		return unit.Text, false, nil
	}
	b.WriteString(unit.Text[last:])
	return b.String(), changed, nil
}

func truncatePreview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "..."
}
