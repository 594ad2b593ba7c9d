// Package core defines the foundational types shared across the redaction
// engine: content kinds, scannable content units, structured errors, and the
// cached document digest. Tokenizers, detectors, and the engine all build on
// these types while remaining independently testable.
package core

import (
	"path/filepath"
	"strings"
)

// ContentKind classifies the declared format of a document.
type ContentKind string

const (
	KindText    ContentKind = "text"
	KindJSON    ContentKind = "json"
	KindXML     ContentKind = "xml"
	KindYAML    ContentKind = "yaml"
	KindTOML    ContentKind = "toml"
	KindCSV     ContentKind = "csv"
	KindLog     ContentKind = "log"
	KindUnknown ContentKind = "unknown"
)

// KindFromExtension detects a content kind from a file extension.
// The extension may be passed with or without the leading dot.
func KindFromExtension(ext string) ContentKind {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "txt", "text", "md":
		return KindText
	case "json", "jsonl", "ndjson":
		return KindJSON
	case "xml", "xhtml", "svg":
		return KindXML
	case "yaml", "yml":
		return KindYAML
	case "toml":
		return KindTOML
	case "csv", "tsv":
		return KindCSV
	case "log":
		return KindLog
	default:
		return KindUnknown
	}
}

// KindFromPath detects a content kind from a file path.
func KindFromPath(path string) ContentKind {
	return KindFromExtension(filepath.Ext(path))
}

// IsStructured reports whether this kind carries structural delimiters that
// must survive redaction untouched.
func (k ContentKind) IsStructured() bool {
	switch k {
	case KindJSON, KindXML, KindYAML, KindTOML, KindCSV:
		return true
	}
	return false
}

// String returns the kind identifier.
func (k ContentKind) String() string {
	return string(k)
}

// UnitEncoding identifies how a content unit's decoded text must be
// re-encoded when a replacement is spliced back into the document.
type UnitEncoding int

const (
	// EncNone means the unit text appears verbatim in the document.
	EncNone UnitEncoding = iota
	// EncJSONString means the unit is the body of a JSON string literal.
	EncJSONString
	// EncXMLText means the unit is an XML text node (entity-escaped).
	EncXMLText
	// EncXMLAttr means the unit is a double-quoted XML attribute value.
	EncXMLAttr
	// EncCSVQuoted means the unit is the body of a quoted CSV cell.
	EncCSVQuoted
	// EncYAMLDouble means the unit is the body of a double-quoted YAML scalar.
	EncYAMLDouble
	// EncYAMLSingle means the unit is the body of a single-quoted YAML scalar.
	EncYAMLSingle
	// EncTOMLBasic means the unit is the body of a TOML basic string.
	EncTOMLBasic
)

// ContentUnit is one scannable slice of a document. A tokenizer emits units
// in document order; detectors only ever see the decoded Text, while the
// reassembler splices replacements back into the byte span [Start, End).
type ContentUnit struct {
	// Index is the unit's position in document order, assigned by the
	// tokenizer. Report records are ordered by it.
	Index int

	// Path is the format-specific structural locator: a JSON pointer, an
	// XML node path, "row:R,col:C" for CSV, "line:N" for line-oriented
	// content, or "offset:N" for plain text.
	Path string

	// Start and End delimit the unit's byte span in the document. The span
	// covers the encoded form of Text (for example the body of a JSON
	// string literal, quotes excluded).
	Start int
	End   int

	// Text is the decoded text detectors scan. It may differ from the raw
	// bytes when the format escapes content (JSON strings, XML entities).
	Text string

	// Encoding tells the reassembler how to re-encode replacement text.
	Encoding UnitEncoding
}

// Span returns the unit's byte length in the document.
func (u ContentUnit) Span() int {
	return u.End - u.Start
}

// Degradation records a unit or entry that could not be processed normally
// and was downgraded or skipped. Degradations never abort a job; they are
// surfaced through the report.
type Degradation struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`   // error kind, e.g. "malformed_entry"
	Reason string `json:"reason"` // human-readable explanation
}
