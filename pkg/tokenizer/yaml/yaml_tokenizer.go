// Package yaml provides the YAML tokenizer. Scalar keys and values are
// addressed by dotted paths such as "server.hosts[0]". Plain and single-line
// quoted scalars are scannable; block and multiline scalars cannot be
// spliced safely and degrade to a reported skip.
package yaml

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	goyaml "gopkg.in/yaml.v3"

	"github.com/nvisycom/core/pkg/core"
)

// Tokenizer walks the yaml.v3 node tree and recovers byte spans from each
// node's line and column position.
type Tokenizer struct{}

// New creates the YAML tokenizer.
func New() *Tokenizer { return &Tokenizer{} }

// Name returns the tokenizer's registration name.
func (t *Tokenizer) Name() string { return "yaml" }

// Kind returns the content kind this tokenizer handles.
func (t *Tokenizer) Kind() core.ContentKind { return core.KindYAML }

type walker struct {
	data         []byte
	index        *core.LineIndex
	units        []core.ContentUnit
	degradations []core.Degradation
}

// Tokenize parses all documents in the stream. A parse error fails the whole
// document; the caller falls back to plain-text scanning.
func (t *Tokenizer) Tokenize(ctx context.Context, data []byte) ([]core.ContentUnit, []core.Degradation, error) {
	dec := goyaml.NewDecoder(bytes.NewReader(data))
	w := &walker{data: data, index: core.NewLineIndex(data)}

	var docs []*goyaml.Node
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		var root goyaml.Node
		err := dec.Decode(&root)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, core.WrapError(core.ErrMalformedEntry, "tokenizer", "invalid YAML document", err)
		}
		docs = append(docs, &root)
	}

	for i, root := range docs {
		prefix := ""
		if len(docs) > 1 {
			prefix = fmt.Sprintf("doc%d.", i)
		}
		w.walk(root, prefix)
	}
	return w.units, w.degradations, nil
}

func (w *walker) walk(n *goyaml.Node, path string) {
	switch n.Kind {
	case goyaml.DocumentNode:
		for _, c := range n.Content {
			w.walk(c, path)
		}
	case goyaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			childPath := joinPath(path, key.Value)
			if key.Kind == goyaml.ScalarNode {
				w.emitScalar(key, childPath)
			}
			w.walk(val, childPath)
		}
	case goyaml.SequenceNode:
		for i, c := range n.Content {
			w.walk(c, fmt.Sprintf("%s[%d]", strings.TrimSuffix(path, "."), i))
		}
	case goyaml.ScalarNode:
		w.emitScalar(n, path)
	}
	// Alias nodes are skipped: their anchor target is scanned once at its
	// definition site.
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	if strings.HasSuffix(base, ".") {
		return base + key
	}
	return base + "." + key
}

// emitScalar recovers the scalar's byte span from its (line, column)
// position and the raw bytes. Null and non-string-bearing scalars without
// text are skipped; unaddressable scalars degrade.
func (w *walker) emitScalar(n *goyaml.Node, path string) {
	if n.Value == "" || n.Tag == "!!null" {
		return
	}

	start := w.index.Offset(n.Line, n.Column)
	if start < 0 {
		w.degrade(path, "scalar position out of range")
		return
	}

	switch n.Style {
	case 0, goyaml.TaggedStyle:
		// Plain scalar: bytes appear verbatim. Multiline plain scalars fold
		// whitespace and cannot be addressed as one span.
		if strings.ContainsRune(n.Value, '\n') {
			w.degrade(path, "multiline plain scalar is not addressable")
			return
		}
		end := start + len(n.Value)
		if end > len(w.data) || !bytes.Equal(w.data[start:end], []byte(n.Value)) {
			w.degrade(path, "plain scalar bytes do not match reported position")
			return
		}
		w.add(path, start, end, n.Value, core.EncNone)

	case goyaml.SingleQuotedStyle:
		if start >= len(w.data) || w.data[start] != '\'' {
			w.degrade(path, "single-quoted scalar bytes do not match reported position")
			return
		}
		body := start + 1
		end, ok := scanSingleQuoted(w.data, body)
		if !ok || bytes.ContainsRune(w.data[body:end], '\n') {
			w.degrade(path, "single-quoted scalar is not addressable")
			return
		}
		w.add(path, body, end, n.Value, core.EncYAMLSingle)

	case goyaml.DoubleQuotedStyle:
		if start >= len(w.data) || w.data[start] != '"' {
			w.degrade(path, "double-quoted scalar bytes do not match reported position")
			return
		}
		body := start + 1
		end, ok := scanDoubleQuoted(w.data, body)
		if !ok || bytes.ContainsRune(w.data[body:end], '\n') {
			w.degrade(path, "double-quoted scalar is not addressable")
			return
		}
		w.add(path, body, end, n.Value, core.EncYAMLDouble)

	case goyaml.LiteralStyle, goyaml.FoldedStyle:
		w.degrade(path, "block scalar is not addressable")

	default:
		w.degrade(path, "unsupported scalar style")
	}
}

func (w *walker) add(path string, start, end int, text string, enc core.UnitEncoding) {
	w.units = append(w.units, core.ContentUnit{
		Index:    len(w.units),
		Path:     path,
		Start:    start,
		End:      end,
		Text:     text,
		Encoding: enc,
	})
}

func (w *walker) degrade(path, reason string) {
	w.degradations = append(w.degradations, core.Degradation{
		Path:   path,
		Kind:   string(core.ErrMalformedEntry),
		Reason: reason,
	})
}

// scanSingleQuoted finds the end of a single-quoted body starting at i.
// A doubled quote is an escaped quote, not a terminator.
func scanSingleQuoted(data []byte, i int) (int, bool) {
	for i < len(data) {
		if data[i] == '\'' {
			if i+1 < len(data) && data[i+1] == '\'' {
				i += 2
				continue
			}
			return i, true
		}
		i++
	}
	return 0, false
}

// scanDoubleQuoted finds the end of a double-quoted body starting at i,
// honoring backslash escapes.
func scanDoubleQuoted(data []byte, i int) (int, bool) {
	for i < len(data) {
		switch data[i] {
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

// EncodeSingle renders replacement text as a single-quoted YAML scalar body.
func EncodeSingle(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// EncodeDouble renders replacement text as a double-quoted YAML scalar body.
// YAML double-quoted escapes are a superset of JSON's for the characters
// replacements can contain.
func EncodeDouble(s string) string {
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
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
