// Package toml provides the TOML tokenizer. BurntSushi/toml validates the
// document; a line scanner then locates basic-string and literal-string
// value spans, addressed by table-qualified key paths such as
// "servers.alpha.host". Multiline strings degrade to a reported skip.
package toml

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	bstoml "github.com/BurntSushi/toml"

	"github.com/nvisycom/core/pkg/core"
)

// Tokenizer validates with the TOML parser and recovers spans with a line
// scanner. String values are scannable, including string elements of
// single-line arrays and inline tables; numbers, dates and booleans are
// skipped. Containers spanning multiple lines degrade to a reported skip.
type Tokenizer struct{}

// New creates the TOML tokenizer.
func New() *Tokenizer { return &Tokenizer{} }

// Name returns the tokenizer's registration name.
func (t *Tokenizer) Name() string { return "toml" }

// Kind returns the content kind this tokenizer handles.
func (t *Tokenizer) Kind() core.ContentKind { return core.KindTOML }

// Tokenize validates the document, then scans it line by line. A parse
// error fails the whole document; the caller falls back to plain-text
// scanning.
func (t *Tokenizer) Tokenize(ctx context.Context, data []byte) ([]core.ContentUnit, []core.Degradation, error) {
	var doc map[string]any
	if err := bstoml.Unmarshal(data, &doc); err != nil {
		return nil, nil, core.WrapError(core.ErrMalformedEntry, "tokenizer", "invalid TOML document", err)
	}

	var units []core.ContentUnit
	var degradations []core.Degradation
	table := ""

	for _, span := range core.SplitLines(data) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		lineStart := span[0]
		line := string(data[span[0]:span[1]])
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			continue
		case strings.HasPrefix(trimmed, "[[") && strings.HasSuffix(trimmed, "]]"):
			table = strings.TrimSpace(trimmed[2 : len(trimmed)-2])
			continue
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			table = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			continue
		}

		key, valueOff, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		path := key
		if table != "" {
			path = table + "." + key
		}

		rest := line[valueOff:]
		if strings.HasPrefix(rest, "[") || strings.HasPrefix(rest, "{") {
			elems, reason := containerUnits(line, lineStart, valueOff, path)
			if reason != "" {
				degradations = append(degradations, core.Degradation{
					Path:   path,
					Kind:   string(core.ErrMalformedEntry),
					Reason: reason,
				})
				continue
			}
			for i := range elems {
				elems[i].Index = len(units)
				units = append(units, elems[i])
			}
			continue
		}

		unit, reason := stringValueUnit(line, lineStart, valueOff, path)
		if reason != "" {
			degradations = append(degradations, core.Degradation{
				Path:   path,
				Kind:   string(core.ErrMalformedEntry),
				Reason: reason,
			})
			continue
		}
		if unit != nil {
			unit.Index = len(units)
			units = append(units, *unit)
		}
	}
	return units, degradations, nil
}

// splitKeyValue parses `key = ...`, returning the key text and the offset of
// the value within the line. Bare, quoted and dotted keys are accepted.
func splitKeyValue(line string) (string, int, bool) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	keyStart := i

	for i < len(line) {
		switch line[i] {
		case '"', '\'':
			quote := line[i]
			j := strings.IndexByte(line[i+1:], quote)
			if j < 0 {
				return "", 0, false
			}
			i += j + 2
		case '=':
			key := strings.TrimSpace(line[keyStart:i])
			if key == "" {
				return "", 0, false
			}
			v := i + 1
			for v < len(line) && (line[v] == ' ' || line[v] == '\t') {
				v++
			}
			return key, v, v < len(line)
		default:
			i++
		}
	}
	return "", 0, false
}

// stringValueUnit builds a unit for a string value starting at valueOff, or
// returns a degradation reason for multiline strings. Non-string values
// yield neither.
func stringValueUnit(line string, lineStart, valueOff int, path string) (*core.ContentUnit, string) {
	rest := line[valueOff:]
	switch {
	case strings.HasPrefix(rest, `"""`), strings.HasPrefix(rest, "'''"):
		return nil, "multiline string is not addressable"
	case strings.HasPrefix(rest, `"`):
		end, ok := scanBasic(rest, 1)
		if !ok {
			return nil, "unterminated basic string"
		}
		decoded, err := unescapeBasic(rest[1:end])
		if err != nil {
			return nil, fmt.Sprintf("bad basic-string escape: %v", err)
		}
		return &core.ContentUnit{
			Path:     path,
			Start:    lineStart + valueOff + 1,
			End:      lineStart + valueOff + end,
			Text:     decoded,
			Encoding: core.EncTOMLBasic,
		}, ""
	case strings.HasPrefix(rest, "'"):
		end := strings.IndexByte(rest[1:], '\'')
		if end < 0 {
			return nil, "unterminated literal string"
		}
		return &core.ContentUnit{
			Path:     path,
			Start:    lineStart + valueOff + 1,
			End:      lineStart + valueOff + 1 + end,
			Text:     rest[1 : 1+end],
			Encoding: core.EncNone,
		}, ""
	}
	return nil, ""
}

// cframe tracks one nesting level while scanning an array or inline-table
// value.
type cframe struct {
	array     bool
	index     int    // current element inside an array
	key       string // current member key inside an inline table
	expectKey bool
}

// containerUnits builds units for the string literals inside a single-line
// array or inline-table value, addressed as "key[0]" and "key.member". A
// container that runs past the line degrades instead; its units are
// discarded so the skip covers the whole value.
func containerUnits(line string, lineStart, valueOff int, path string) ([]core.ContentUnit, string) {
	rest := line[valueOff:]
	var units []core.ContentUnit
	var stack []cframe
	i := 0
	for i < len(rest) {
		switch c := rest[i]; c {
		case ' ', '\t':
			i++
		case ',':
			top := &stack[len(stack)-1]
			if top.array {
				top.index++
			} else {
				top.key = ""
				top.expectKey = true
			}
			i++
		case '[':
			stack = append(stack, cframe{array: true})
			i++
		case '{':
			stack = append(stack, cframe{expectKey: true})
			i++
		case ']', '}':
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return units, ""
			}
			i++
		case '"', '\'':
			if top := &stack[len(stack)-1]; !top.array && top.expectKey {
				j := strings.IndexByte(rest[i+1:], c)
				if j < 0 {
					return nil, "unterminated key in inline table"
				}
				top.key = rest[i+1 : i+1+j]
				top.expectKey = false
				i += j + 2
				eq := strings.IndexByte(rest[i:], '=')
				if eq < 0 {
					return nil, "inline table member without value"
				}
				i += eq + 1
				continue
			}
			if strings.HasPrefix(rest[i:], `"""`) || strings.HasPrefix(rest[i:], "'''") {
				return nil, "multiline string is not addressable"
			}
			elemPath := elementPath(path, stack)
			if c == '"' {
				end, ok := scanBasic(rest, i+1)
				if !ok {
					return nil, "unterminated basic string"
				}
				decoded, err := unescapeBasic(rest[i+1 : end])
				if err != nil {
					return nil, fmt.Sprintf("bad basic-string escape: %v", err)
				}
				units = append(units, core.ContentUnit{
					Path:     elemPath,
					Start:    lineStart + valueOff + i + 1,
					End:      lineStart + valueOff + end,
					Text:     decoded,
					Encoding: core.EncTOMLBasic,
				})
				i = end + 1
			} else {
				j := strings.IndexByte(rest[i+1:], '\'')
				if j < 0 {
					return nil, "unterminated literal string"
				}
				units = append(units, core.ContentUnit{
					Path:     elemPath,
					Start:    lineStart + valueOff + i + 1,
					End:      lineStart + valueOff + i + 1 + j,
					Text:     rest[i+1 : i+1+j],
					Encoding: core.EncNone,
				})
				i += j + 2
			}
		default:
			if top := &stack[len(stack)-1]; !top.array && top.expectKey {
				eq := strings.IndexByte(rest[i:], '=')
				if eq < 0 {
					return nil, "inline table member without value"
				}
				top.key = strings.TrimSpace(rest[i : i+eq])
				top.expectKey = false
				i += eq + 1
				continue
			}
			// Byte of a non-string scalar element.
			i++
		}
	}
	return nil, "container spans multiple lines and is not addressable"
}

// elementPath renders the container stack as a path suffix under key.
func elementPath(path string, stack []cframe) string {
	var b strings.Builder
	b.WriteString(path)
	for _, f := range stack {
		if f.array {
			fmt.Fprintf(&b, "[%d]", f.index)
		} else if f.key != "" {
			b.WriteByte('.')
			b.WriteString(f.key)
		}
	}
	return b.String()
}

// scanBasic finds the closing quote of a basic string body starting at i,
// honoring backslash escapes.
func scanBasic(s string, i int) (int, bool) {
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
		case '"':
			return i, true
		default:
			i++
		}
	}
	return 0, false
}

// unescapeBasic decodes TOML basic-string escapes.
func unescapeBasic(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling backslash")
		}
		switch s[i] {
		case 'b':
			b.WriteByte('\b')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'u', 'U':
			width := 4
			if s[i] == 'U' {
				width = 8
			}
			if i+1+width > len(s) {
				return "", fmt.Errorf("truncated unicode escape")
			}
			code, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad unicode escape: %w", err)
			}
			b.WriteRune(rune(code))
			i += width
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}

// EncodeBasic renders replacement text as a TOML basic-string body.
func EncodeBasic(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
