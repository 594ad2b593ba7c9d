package core

import "bytes"

// LineIndex maps 1-based (line, column) positions to byte offsets in a
// document. Tokenizers that receive line/column positions from their parsers
// (YAML nodes, CSV field positions) use it to recover byte spans.
type LineIndex struct {
	offsets []int // byte offset of the start of each line
	size    int
}

// NewLineIndex builds the index for the given document.
func NewLineIndex(data []byte) *LineIndex {
	offsets := []int{0}
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return &LineIndex{offsets: offsets, size: len(data)}
}

// Lines returns the number of lines in the document.
func (li *LineIndex) Lines() int {
	return len(li.offsets)
}

// LineStart returns the byte offset of the start of the 1-based line, or -1
// if the line does not exist.
func (li *LineIndex) LineStart(line int) int {
	if line < 1 || line > len(li.offsets) {
		return -1
	}
	return li.offsets[line-1]
}

// Offset converts a 1-based (line, column) position to a byte offset, or -1
// if the position is out of range. Column counts bytes, matching the
// positions reported by encoding/csv and yaml.v3 for ASCII-delimited input.
func (li *LineIndex) Offset(line, col int) int {
	start := li.LineStart(line)
	if start < 0 || col < 1 {
		return -1
	}
	off := start + col - 1
	if off > li.size {
		return -1
	}
	return off
}

// LineSpan returns the byte span [start, end) of the 1-based line including
// its trailing newline, or (-1, -1) if the line does not exist.
func (li *LineIndex) LineSpan(line int) (int, int) {
	start := li.LineStart(line)
	if start < 0 {
		return -1, -1
	}
	if line < len(li.offsets) {
		return start, li.offsets[line]
	}
	return start, li.size
}

// SplitLines splits a document into lines, keeping each line's byte span.
// The returned spans exclude line terminators.
func SplitLines(data []byte) [][2]int {
	var spans [][2]int
	start := 0
	for {
		i := bytes.IndexByte(data[start:], '\n')
		if i < 0 {
			if start < len(data) {
				spans = append(spans, [2]int{start, len(data)})
			}
			return spans
		}
		end := start + i
		if end > start && data[end-1] == '\r' {
			end--
		}
		spans = append(spans, [2]int{start, end})
		start = start + i + 1
	}
}
