// Package text provides the plain-text and log-line tokenizers. Plain text
// is split into paragraph blocks so multi-line values such as postal
// addresses stay within one scannable unit; log content is split per line.
package text

import (
	"context"
	"strconv"

	"github.com/nvisycom/core/pkg/core"
)

// Tokenizer splits unstructured text into scannable units.
type Tokenizer struct {
	name    string
	kind    core.ContentKind
	perLine bool
}

// New creates the plain-text tokenizer. It also serves as the fallback for
// unknown or unparseable content.
func New() *Tokenizer {
	return &Tokenizer{name: "text", kind: core.KindText}
}

// NewLog creates the log tokenizer, emitting one unit per line.
func NewLog() *Tokenizer {
	return &Tokenizer{name: "log", kind: core.KindLog, perLine: true}
}

// Name returns the tokenizer's registration name.
func (t *Tokenizer) Name() string { return t.name }

// Kind returns the content kind this tokenizer handles.
func (t *Tokenizer) Kind() core.ContentKind { return t.kind }

// Tokenize splits the document. Plain text produces paragraph units with
// "offset:N" paths; log content produces line units with "line:N" paths.
func (t *Tokenizer) Tokenize(_ context.Context, data []byte) ([]core.ContentUnit, []core.Degradation, error) {
	if t.perLine {
		return t.tokenizeLines(data), nil, nil
	}
	return t.tokenizeParagraphs(data), nil, nil
}

func (t *Tokenizer) tokenizeLines(data []byte) []core.ContentUnit {
	var units []core.ContentUnit
	for i, span := range core.SplitLines(data) {
		start, end := span[0], span[1]
		if start == end {
			continue
		}
		units = append(units, core.ContentUnit{
			Index:    len(units),
			Path:     "line:" + strconv.Itoa(i+1),
			Start:    start,
			End:      end,
			Text:     string(data[start:end]),
			Encoding: core.EncNone,
		})
	}
	return units
}

// tokenizeParagraphs groups consecutive non-blank lines into one unit. The
// unit span runs from the first line's start to the last line's end, so the
// decoded text keeps interior newlines.
func (t *Tokenizer) tokenizeParagraphs(data []byte) []core.ContentUnit {
	lines := core.SplitLines(data)
	var units []core.ContentUnit

	var blockStart, blockEnd = -1, -1
	flush := func() {
		if blockStart < 0 {
			return
		}
		units = append(units, core.ContentUnit{
			Index:    len(units),
			Path:     "offset:" + strconv.Itoa(blockStart),
			Start:    blockStart,
			End:      blockEnd,
			Text:     string(data[blockStart:blockEnd]),
			Encoding: core.EncNone,
		})
		blockStart, blockEnd = -1, -1
	}

	for _, span := range lines {
		start, end := span[0], span[1]
		if start == end {
			flush()
			continue
		}
		if blockStart < 0 {
			blockStart = start
		}
		blockEnd = end
	}
	flush()
	return units
}
