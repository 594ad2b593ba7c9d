package detector

import (
	"regexp"
	"strings"

	"github.com/nvisycom/core/pkg/category"
)

// failMode controls what a failed validation does to a candidate.
type failMode int

const (
	// failReject drops the candidate. Default for checksum categories,
	// where an invalid check digit means the value is not of the category.
	failReject failMode = iota
	// failWeaken keeps the candidate at a floor confidence, for categories
	// where validation failure still leaves a plausible finding.
	failWeaken
)

const weakenedConfidence = 0.3

// patternMatcher is the shared machinery behind the built-in matchers: a
// compiled pattern, an optional validator, and optional context-keyword
// gating for formats too generic to stand alone.
type patternMatcher struct {
	name           string
	cat            category.Category
	pattern        *regexp.Regexp
	baseConfidence float64

	// validate checks the normalized match value. Nil means format-only.
	validate func(value string) bool
	onFail   failMode

	// normalize strips formatting before validation (separators, spaces).
	normalize func(value string) string

	// keywords gate or boost the match depending on requireKeyword. The
	// scan window is the surrounding unit text.
	keywords       []string
	requireKeyword bool
	keywordBoost   float64
}

// keywordWindow is how many bytes around a match are searched for context
// keywords.
const keywordWindow = 48

func (m *patternMatcher) Name() string { return m.name }

func (m *patternMatcher) Category() category.Category { return m.cat }

func (m *patternMatcher) Match(text string) []Candidate {
	idx := m.pattern.FindAllStringSubmatchIndex(text, -1)
	if idx == nil {
		return nil
	}

	var out []Candidate
	for _, loc := range idx {
		start, end := loc[0], loc[1]
		// Use the first capture group when present, so patterns can anchor
		// on context without claiming it.
		if len(loc) >= 4 && loc[2] >= 0 {
			start, end = loc[2], loc[3]
		}
		value := text[start:end]

		confidence := m.baseConfidence
		if len(m.keywords) > 0 {
			if m.hasKeyword(text, start, end) {
				confidence += m.keywordBoost
				if confidence > 0.99 {
					confidence = 0.99
				}
			} else if m.requireKeyword {
				continue
			}
		}

		if m.validate != nil {
			v := value
			if m.normalize != nil {
				v = m.normalize(v)
			}
			if !m.validate(v) {
				if m.onFail == failReject {
					continue
				}
				confidence = weakenedConfidence
			}
		}

		out = append(out, Candidate{Start: start, End: end, Value: value, Confidence: confidence})
	}
	return out
}

// hasKeyword reports whether any context keyword appears near the match.
func (m *patternMatcher) hasKeyword(text string, start, end int) bool {
	lo := start - keywordWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + keywordWindow
	if hi > len(text) {
		hi = len(text)
	}
	window := strings.ToLower(text[lo:hi])
	for _, kw := range m.keywords {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}

// stripSeparators removes the common grouping characters from a value.
func stripSeparators(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '-', '.', '_':
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
