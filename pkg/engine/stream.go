package engine

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nvisycom/core/pkg/core"
	"github.com/nvisycom/core/pkg/redaction"
	"github.com/nvisycom/core/pkg/report"
)

// defaultChunkSize is the soft byte budget per stream chunk. Chunks always
// end on a unit boundary, so a chunk may exceed it by one line.
const defaultChunkSize = 64 * 1024

// Chunk is one redacted slice of a stream with the report covering it.
type Chunk struct {
	Data   []byte
	Report *report.Report
}

// StreamRedactor iterates redacted chunks over a large input. Line-oriented
// kinds (text, log, CSV) are chunked on line-group boundaries so no match
// can span a chunk split; tree-structured kinds are processed as a single
// chunk, since splitting them would break the document grammar.
//
// All chunks share one redaction session, so a value recurring across
// chunks tokenizes to the same token.
type StreamRedactor struct {
	engine *Engine
	sess   *redaction.Session
	kind   core.ContentKind
	br     *bufio.Reader
	lined  bool
	done   bool
}

// RedactStream starts a streaming redaction job over r.
func (e *Engine) RedactStream(ctx context.Context, r io.Reader, kind core.ContentKind) (*StreamRedactor, error) {
	sess, err := redaction.NewSession(e.tokenKey, e.hashKey)
	if err != nil {
		return nil, err
	}
	return &StreamRedactor{
		engine: e,
		sess:   sess,
		kind:   kind,
		br:     bufio.NewReader(r),
		lined:  lineOriented(kind),
	}, nil
}

func lineOriented(kind core.ContentKind) bool {
	switch kind {
	case core.KindText, core.KindLog, core.KindCSV, core.KindUnknown:
		return true
	}
	return false
}

// Next returns the next redacted chunk, or io.EOF when the stream is
// exhausted. A failed chunk fails the iterator; already-returned chunks
// remain valid.
func (s *StreamRedactor) Next(ctx context.Context) (*Chunk, error) {
	if s.done {
		return nil, io.EOF
	}

	raw, err := s.readChunk()
	if err != nil && err != io.EOF {
		s.done = true
		return nil, err
	}
	if err == io.EOF {
		s.done = true
		if len(raw) == 0 {
			return nil, io.EOF
		}
	}

	ctx, span := s.engine.tracer.Start(ctx, "engine.redact_stream",
		trace.WithAttributes(
			attribute.String("content.kind", string(s.kind)),
			attribute.Int("chunk.bytes", len(raw)),
		))
	defer span.End()

	out, rep, err := s.engine.run(ctx, raw, s.kind, s.sess, true)
	if err != nil {
		span.RecordError(err)
		s.done = true
		return nil, err
	}
	span.SetAttributes(attribute.Int("matches", rep.MatchCount()))
	return &Chunk{Data: out, Report: rep}, nil
}

// readChunk buffers input up to the chunk budget. Line-oriented kinds stop
// on a line boundary; CSV additionally extends past lines inside an open
// quoted field, so a record with embedded newlines is never split. Tree
// kinds consume the whole stream.
func (s *StreamRedactor) readChunk() ([]byte, error) {
	if !s.lined {
		data, err := io.ReadAll(s.br)
		if err != nil {
			return nil, err
		}
		return data, io.EOF
	}

	var buf bytes.Buffer
	for buf.Len() < defaultChunkSize || openQuote(s.kind, buf.Bytes()) {
		line, err := s.br.ReadBytes('\n')
		buf.Write(line)
		if err == io.EOF {
			return buf.Bytes(), io.EOF
		}
		if err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// openQuote reports whether a CSV chunk ends inside a quoted field.
func openQuote(kind core.ContentKind, chunk []byte) bool {
	if kind != core.KindCSV {
		return false
	}
	return bytes.Count(chunk, []byte{'"'})%2 == 1
}
