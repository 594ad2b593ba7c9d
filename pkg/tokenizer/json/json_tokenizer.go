// Package json provides the JSON tokenizer. It emits one content unit per
// string value and per object key, addressed by JSON Pointer, with byte
// spans covering the inner (unquoted) body of each string literal.
package json

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nvisycom/core/pkg/core"
)

// Tokenizer walks a JSON document with encoding/json's streaming decoder.
// Numbers, booleans and nulls are not scannable; structural bytes are never
// part of any unit.
type Tokenizer struct{}

// New creates the JSON tokenizer.
func New() *Tokenizer { return &Tokenizer{} }

// Name returns the tokenizer's registration name.
func (t *Tokenizer) Name() string { return "json" }

// Kind returns the content kind this tokenizer handles.
func (t *Tokenizer) Kind() core.ContentKind { return core.KindJSON }

// frame tracks one level of the container stack during the token walk.
type frame struct {
	object     bool
	key        string // current member key inside an object
	expectKey  bool
	arrayIndex int
}

// Tokenize walks the document's token stream. Concatenated top-level values
// (JSON Lines) are accepted. A syntax error fails the whole document; the
// caller falls back to plain-text scanning.
func (t *Tokenizer) Tokenize(ctx context.Context, data []byte) ([]core.ContentUnit, []core.Degradation, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var units []core.ContentUnit
	var stack []frame
	prevEnd := int64(0) // offset just past the previous token

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			// The decoder reports a clean EOF even with containers still
			// open, so a truncated document must be failed here.
			if len(stack) > 0 {
				return nil, nil, core.NewError(core.ErrMalformedEntry, "tokenizer", "truncated JSON document")
			}
			return units, nil, nil
		}
		if err != nil {
			return nil, nil, core.WrapError(core.ErrMalformedEntry, "tokenizer", "invalid JSON document", err)
		}
		end := dec.InputOffset()

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, frame{object: true, expectKey: true})
			case '[':
				stack = append(stack, frame{})
			case '}', ']':
				stack = stack[:len(stack)-1]
				if n := len(stack); n > 0 {
					stack[n-1].advance()
				}
			}
		case string:
			// Between tokens only whitespace, ',' and ':' can appear, so
			// the literal's opening quote is the first '"' at or after the
			// previous token's end.
			open := bytes.IndexByte(data[prevEnd:end], '"')
			if open < 0 {
				return nil, nil, core.NewError(core.ErrMalformedEntry, "tokenizer", "lost position of JSON string literal")
			}
			start := int(prevEnd) + open + 1 // inner body start
			isKey := len(stack) > 0 && stack[len(stack)-1].object && stack[len(stack)-1].expectKey

			path := pointer(stack)
			if isKey {
				path = pointer(stack) + "/" + escapePointer(v)
			}
			units = append(units, core.ContentUnit{
				Index:    len(units),
				Path:     path,
				Start:    start,
				End:      int(end) - 1, // closing quote excluded
				Text:     v,
				Encoding: core.EncJSONString,
			})

			if isKey {
				stack[len(stack)-1].key = v
				stack[len(stack)-1].expectKey = false
			} else if n := len(stack); n > 0 {
				stack[n-1].advance()
			}
		default:
			// Numbers, booleans, nulls: not scannable.
			if n := len(stack); n > 0 {
				stack[n-1].advance()
			}
		}
		prevEnd = end
	}
}

// advance moves the frame past a completed member or element.
func (f *frame) advance() {
	if f.object {
		f.expectKey = true
		f.key = ""
	} else {
		f.arrayIndex++
	}
}

// pointer renders the current container stack as a JSON Pointer.
func pointer(stack []frame) string {
	var b strings.Builder
	for _, f := range stack {
		if f.object {
			if !f.expectKey {
				b.WriteByte('/')
				b.WriteString(escapePointer(f.key))
			}
		} else {
			fmt.Fprintf(&b, "/%d", f.arrayIndex)
		}
	}
	return b.String()
}

// escapePointer applies RFC 6901 token escaping.
func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

// EncodeString renders replacement text as the body of a JSON string
// literal, quotes excluded. Used by the reassembler when splicing units
// with the JSON string encoding hint.
func EncodeString(s string) string {
	enc, _ := json.Marshal(s)
	return string(enc[1 : len(enc)-1])
}
