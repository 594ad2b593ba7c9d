package core

import "context"

// Tokenizer splits a document of one content kind into scannable units.
// Implementations must be safe for concurrent use and must emit units in
// document order with strictly non-overlapping byte spans.
//
// A returned error means the whole document could not be tokenized; callers
// fall back to plain-text scanning. Localized parse failures are reported as
// degradations instead, and the remaining units are still returned.
type Tokenizer interface {
	// Name returns the tokenizer's registration name.
	Name() string

	// Kind returns the content kind this tokenizer handles.
	Kind() ContentKind

	// Tokenize splits the document into content units.
	Tokenize(ctx context.Context, data []byte) ([]ContentUnit, []Degradation, error)
}
