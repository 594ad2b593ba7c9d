package engine

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/nvisycom/core/pkg/core"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// normalize transcodes BOM-prefixed input to plain UTF-8 so tokenizers and
// matchers scan one encoding. It reports whether the bytes changed; when a
// job produces zero matches the caller returns the original input, not the
// normalized copy.
func normalize(data []byte) ([]byte, bool, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], true, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data, unicode.LittleEndian)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data, unicode.BigEndian)
	}
	return data, false, nil
}

func decodeUTF16(data []byte, endian unicode.Endianness) ([]byte, bool, error) {
	dec := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return nil, false, core.WrapError(core.ErrMalformedEntry, "engine",
			"input is not valid UTF-16", err)
	}
	return out, true, nil
}
