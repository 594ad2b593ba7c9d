package engine

import (
	"bytes"
	"sort"

	"github.com/nvisycom/core/pkg/core"
	csvtok "github.com/nvisycom/core/pkg/tokenizer/csv"
	jsontok "github.com/nvisycom/core/pkg/tokenizer/json"
	tomltok "github.com/nvisycom/core/pkg/tokenizer/toml"
	xmltok "github.com/nvisycom/core/pkg/tokenizer/xml"
	yamltok "github.com/nvisycom/core/pkg/tokenizer/yaml"
)

// unitEdit is one unit whose decoded text was rewritten during the
// application phase. Span offsets address the normalized document.
type unitEdit struct {
	unit    core.ContentUnit
	newText string
}

// reassemble splices the re-encoded text of each edited unit into its byte
// span, copying every byte outside an edit untouched. Splicing is
// length-independent; replacements may grow or shrink the unit.
func reassemble(doc []byte, edits []unitEdit) ([]byte, error) {
	if len(edits) == 0 {
		return doc, nil
	}

	sorted := make([]unitEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].unit.Start < sorted[j].unit.Start })

	var out bytes.Buffer
	out.Grow(len(doc))
	last := 0
	for _, e := range sorted {
		u := e.unit
		if u.Start < last || u.End > len(doc) || u.Start > u.End {
			return nil, core.NewError(core.ErrReassemblyConflict, "engine",
				"edited unit spans overlap").
				WithContext("path", u.Path).
				WithContext("start", u.Start).
				WithContext("end", u.End)
		}
		out.Write(doc[last:u.Start])
		out.WriteString(encodeUnit(e.newText, u.Encoding))
		last = u.End
	}
	out.Write(doc[last:])
	return out.Bytes(), nil
}

// encodeUnit re-applies the source encoding the tokenizer decoded, so the
// spliced document stays syntactically valid for its format.
func encodeUnit(text string, enc core.UnitEncoding) string {
	switch enc {
	case core.EncJSONString:
		return jsontok.EncodeString(text)
	case core.EncXMLText:
		return xmltok.EncodeText(text)
	case core.EncXMLAttr:
		return xmltok.EncodeAttr(text)
	case core.EncCSVQuoted:
		return csvtok.EncodeQuoted(text)
	case core.EncYAMLDouble:
		return yamltok.EncodeDouble(text)
	case core.EncYAMLSingle:
		return yamltok.EncodeSingle(text)
	case core.EncTOMLBasic:
		return tomltok.EncodeBasic(text)
	default:
		return text
	}
}
