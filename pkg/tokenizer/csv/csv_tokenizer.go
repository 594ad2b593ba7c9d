// Package csv provides the CSV tokenizer. Every cell is a scannable unit
// addressed as "row:R,col:C". Delimiters and quoting survive redaction
// untouched: spans cover the cell body only, quotes excluded for quoted
// cells. Malformed rows degrade to whole-line plain-text units and the job
// continues.
package csv

import (
	"bytes"
	"context"
	gocsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nvisycom/core/pkg/core"
)

// Tokenizer parses with encoding/csv, using field positions to recover
// byte spans.
type Tokenizer struct {
	// Comma is the field delimiter. Defaults to ','.
	Comma rune
}

// New creates the CSV tokenizer.
func New() *Tokenizer { return &Tokenizer{Comma: ','} }

// Name returns the tokenizer's registration name.
func (t *Tokenizer) Name() string { return "csv" }

// Kind returns the content kind this tokenizer handles.
func (t *Tokenizer) Kind() core.ContentKind { return core.KindCSV }

// Tokenize parses the whole document first; if any record fails it restarts
// in line mode, where each physical line is parsed independently and
// malformed lines degrade to raw text units.
func (t *Tokenizer) Tokenize(ctx context.Context, data []byte) ([]core.ContentUnit, []core.Degradation, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	index := core.NewLineIndex(data)

	units, degradations, err := t.parseWhole(data, index)
	if err == nil {
		return units, degradations, nil
	}
	return t.parseByLine(ctx, data)
}

func (t *Tokenizer) reader(data []byte) *gocsv.Reader {
	r := gocsv.NewReader(bytes.NewReader(data))
	r.Comma = t.Comma
	r.FieldsPerRecord = -1
	return r
}

func (t *Tokenizer) parseWhole(data []byte, index *core.LineIndex) ([]core.ContentUnit, []core.Degradation, error) {
	r := t.reader(data)
	var units []core.ContentUnit
	var degradations []core.Degradation

	for row := 1; ; row++ {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return units, degradations, nil
			}
			return nil, nil, err
		}
		for col, cell := range record {
			line, pos := r.FieldPos(col)
			unit, ok := cellUnit(data, index, row, col, line, pos, cell)
			if !ok {
				if cell != "" {
					degradations = append(degradations, core.Degradation{
						Path:   cellPath(row, col),
						Kind:   string(core.ErrMalformedEntry),
						Reason: "could not locate cell bytes",
					})
				}
				continue
			}
			if unit != nil {
				unit.Index = len(units)
				units = append(units, *unit)
			}
		}
	}
}

// parseByLine parses each physical line as its own record. Quoted cells
// spanning multiple lines are not recoverable in this mode; every line that
// fails to parse becomes one raw text unit with a degradation record.
func (t *Tokenizer) parseByLine(ctx context.Context, data []byte) ([]core.ContentUnit, []core.Degradation, error) {
	var units []core.ContentUnit
	var degradations []core.Degradation

	for i, span := range core.SplitLines(data) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		lineStart, lineEnd := span[0], span[1]
		if lineStart == lineEnd {
			continue
		}
		lineData := data[lineStart:lineEnd]
		lineIndex := core.NewLineIndex(lineData)
		row := i + 1

		r := t.reader(lineData)
		record, err := r.Read()
		if err != nil {
			degradations = append(degradations, core.Degradation{
				Path:   fmt.Sprintf("row:%d", row),
				Kind:   string(core.ErrMalformedEntry),
				Reason: "malformed row scanned as raw text",
			})
			units = append(units, core.ContentUnit{
				Index:    len(units),
				Path:     fmt.Sprintf("row:%d", row),
				Start:    lineStart,
				End:      lineEnd,
				Text:     string(lineData),
				Encoding: core.EncNone,
			})
			continue
		}
		for col, cell := range record {
			_, pos := r.FieldPos(col)
			unit, ok := cellUnit(lineData, lineIndex, row, col, 1, pos, cell)
			if !ok || unit == nil {
				continue
			}
			unit.Index = len(units)
			unit.Start += lineStart
			unit.End += lineStart
			units = append(units, *unit)
		}
	}
	return units, degradations, nil
}

// cellUnit builds the unit for one cell. Returns (nil, true) for empty
// cells and (nil, false) when the cell bytes cannot be located.
func cellUnit(data []byte, index *core.LineIndex, row, col, line, pos int, cell string) (*core.ContentUnit, bool) {
	if cell == "" {
		return nil, true
	}
	off := index.Offset(line, pos)
	if off < 0 || off >= len(data) {
		return nil, false
	}

	if data[off] == '"' {
		body := off + 1
		end, ok := scanQuoted(data, body)
		if !ok {
			return nil, false
		}
		return &core.ContentUnit{
			Path:     cellPath(row, col),
			Start:    body,
			End:      end,
			Text:     cell,
			Encoding: core.EncCSVQuoted,
		}, true
	}

	end := off + len(cell)
	if end > len(data) || !bytes.Equal(data[off:end], []byte(cell)) {
		return nil, false
	}
	return &core.ContentUnit{
		Path:     cellPath(row, col),
		Start:    off,
		End:      end,
		Text:     cell,
		Encoding: core.EncNone,
	}, true
}

// scanQuoted finds the closing quote of a quoted cell body starting at i.
// A doubled quote is an escaped quote, not a terminator.
func scanQuoted(data []byte, i int) (int, bool) {
	for i < len(data) {
		if data[i] == '"' {
			if i+1 < len(data) && data[i+1] == '"' {
				i += 2
				continue
			}
			return i, true
		}
		i++
	}
	return 0, false
}

func cellPath(row, col int) string {
	return fmt.Sprintf("row:%d,col:%d", row, col+1)
}

// EncodeQuoted renders replacement text as a quoted CSV cell body.
func EncodeQuoted(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
