// Package xml provides the XML tokenizer. It emits one content unit per
// text node and per attribute value, addressed by element paths such as
// "/feed/entry[2]/@id". Text is entity-decoded for scanning; byte spans
// cover the encoded form in the document.
package xml

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nvisycom/core/pkg/core"
)

// Tokenizer walks a document with encoding/xml's streaming decoder.
type Tokenizer struct{}

// New creates the XML tokenizer.
func New() *Tokenizer { return &Tokenizer{} }

// Name returns the tokenizer's registration name.
func (t *Tokenizer) Name() string { return "xml" }

// Kind returns the content kind this tokenizer handles.
func (t *Tokenizer) Kind() core.ContentKind { return core.KindXML }

// elem is one open element on the walk stack. children counts occurrences
// of each child name seen so far, for sibling indexing.
type elem struct {
	name     string
	index    int
	children map[string]int
}

// Tokenize walks the token stream. A well-formedness error fails the whole
// document; the caller falls back to plain-text scanning.
func (t *Tokenizer) Tokenize(ctx context.Context, data []byte) ([]core.ContentUnit, []core.Degradation, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var units []core.ContentUnit
	var degradations []core.Degradation
	var stack []elem

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return units, degradations, nil
		}
		if err != nil {
			return nil, nil, core.WrapError(core.ErrMalformedEntry, "tokenizer", "invalid XML document", err)
		}
		after := dec.InputOffset()

		switch v := tok.(type) {
		case xml.StartElement:
			idx := 1
			if n := len(stack); n > 0 {
				stack[n-1].children[v.Name.Local]++
				idx = stack[n-1].children[v.Name.Local]
			}
			stack = append(stack, elem{name: v.Name.Local, index: idx, children: make(map[string]int)})

			if len(v.Attr) > 0 {
				aus, deg := attrUnits(data[before:after], int(before), pathOf(stack), v.Attr, len(units))
				units = append(units, aus...)
				degradations = append(degradations, deg...)
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			text := string(v)
			if strings.TrimSpace(text) == "" || len(stack) == 0 {
				break
			}
			// The raw span between the surrounding tokens holds the encoded
			// form of exactly this character data.
			units = append(units, core.ContentUnit{
				Index:    len(units),
				Path:     pathOf(stack),
				Start:    int(before),
				End:      int(after),
				Text:     text,
				Encoding: core.EncXMLText,
			})
		}
	}
}

// pathOf renders the open-element stack as an element path with 1-based
// sibling indexes.
func pathOf(stack []elem) string {
	var b strings.Builder
	for _, e := range stack {
		if e.index > 1 {
			fmt.Fprintf(&b, "/%s[%d]", e.name, e.index)
		} else {
			b.WriteByte('/')
			b.WriteString(e.name)
		}
	}
	return b.String()
}

// attrUnits locates each attribute's quoted value inside the raw start-tag
// bytes. Attributes are matched in document order; one that cannot be
// located is reported as a degradation rather than silently dropped.
func attrUnits(rawTag []byte, tagStart int, elemPath string, attrs []xml.Attr, nextIndex int) ([]core.ContentUnit, []core.Degradation) {
	var units []core.ContentUnit
	var degradations []core.Degradation
	cursor := 0

	for _, attr := range attrs {
		start, end, ok := findAttrValue(rawTag, &cursor, attr.Name.Local)
		path := elemPath + "/@" + attr.Name.Local
		if !ok {
			degradations = append(degradations, core.Degradation{
				Path:   path,
				Kind:   string(core.ErrMalformedEntry),
				Reason: "could not locate attribute value in start tag",
			})
			continue
		}
		units = append(units, core.ContentUnit{
			Index:    nextIndex + len(units),
			Path:     path,
			Start:    tagStart + start,
			End:      tagStart + end,
			Text:     attr.Value,
			Encoding: core.EncXMLAttr,
		})
	}
	return units, degradations
}

// findAttrValue scans forward from *cursor for `name`, the '=' sign and the
// quoted value, returning the span of the value body (quotes excluded).
func findAttrValue(rawTag []byte, cursor *int, name string) (int, int, bool) {
	for i := *cursor; i < len(rawTag); i++ {
		if !matchWord(rawTag, i, name) {
			continue
		}
		j := i + len(name)
		for j < len(rawTag) && isSpace(rawTag[j]) {
			j++
		}
		if j >= len(rawTag) || rawTag[j] != '=' {
			continue
		}
		j++
		for j < len(rawTag) && isSpace(rawTag[j]) {
			j++
		}
		if j >= len(rawTag) || (rawTag[j] != '"' && rawTag[j] != '\'') {
			continue
		}
		quote := rawTag[j]
		start := j + 1
		close := bytes.IndexByte(rawTag[start:], quote)
		if close < 0 {
			return 0, 0, false
		}
		*cursor = start + close + 1
		return start, start + close, true
	}
	return 0, 0, false
}

// matchWord reports whether name appears at position i on a word boundary,
// so that attribute "id" does not match inside "uuid".
func matchWord(rawTag []byte, i int, name string) bool {
	if i+len(name) > len(rawTag) {
		return false
	}
	if !bytes.HasPrefix(rawTag[i:], []byte(name)) {
		return false
	}
	if i > 0 && isNameByte(rawTag[i-1]) {
		return false
	}
	if i+len(name) < len(rawTag) && isNameByte(rawTag[i+len(name)]) {
		return false
	}
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' ||
		b == '-' || b == '_' || b == '.' || b == ':'
}

// EncodeText entity-escapes replacement text for an XML text node.
func EncodeText(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}

// EncodeAttr entity-escapes replacement text for a quoted attribute value.
// xml.EscapeText escapes both quote characters, so the result is valid
// inside either quoting style.
func EncodeAttr(s string) string {
	return EncodeText(s)
}
