// Package archive yields the entries of container files (ZIP, TAR, GZIP,
// tar.gz) as in-memory documents ready for one engine job each.
// Decompression is bounded so a hostile archive cannot exhaust memory.
package archive

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvisycom/core/pkg/core"
)

const (
	// DefaultMaxEntrySize caps the decompressed size of one entry.
	DefaultMaxEntrySize = 100 << 20 // 100 MB
	// DefaultMaxEntries caps how many entries one archive may yield.
	DefaultMaxEntries = 10000
)

// Entry is one extracted archive member.
type Entry struct {
	Name string
	Data []byte
	Kind core.ContentKind
}

// EntryIterator walks an archive one entry at a time. Next returns io.EOF
// when the archive is exhausted.
type EntryIterator interface {
	Next(ctx context.Context) (*Entry, error)
	Close() error
}

// Options bound archive extraction. Zero values select the defaults.
type Options struct {
	MaxEntrySize int64
	MaxEntries   int
}

func (o Options) withDefaults() Options {
	if o.MaxEntrySize <= 0 {
		o.MaxEntrySize = DefaultMaxEntrySize
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	return o
}

// Format identifies a supported container format.
type Format string

const (
	FormatZip   Format = "zip"
	FormatTar   Format = "tar"
	FormatTarGz Format = "tar.gz"
	FormatGzip  Format = "gzip"
	FormatNone  Format = "none"
)

// DetectFormat inspects the file name and leading bytes. The extension is
// checked first; magic bytes settle files with misleading names.
func DetectFormat(name string, header []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip":
		return FormatZip
	case ".tgz":
		return FormatTarGz
	case ".tar":
		return FormatTar
	case ".gz", ".gzip":
		if strings.HasSuffix(strings.ToLower(name), ".tar.gz") {
			return FormatTarGz
		}
		return FormatGzip
	}

	if len(header) >= 2 {
		if header[0] == 0x50 && header[1] == 0x4B {
			return FormatZip
		}
		if header[0] == 0x1F && header[1] == 0x8B {
			return FormatGzip
		}
	}
	if len(header) >= 262 && string(header[257:262]) == "ustar" {
		return FormatTar
	}
	return FormatNone
}

// Open reads an archive file and returns an iterator over its entries.
func Open(path string, opts Options) (EntryIterator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedEntry, "archive", "cannot read archive", err)
	}
	return OpenBytes(filepath.Base(path), data, opts)
}

// OpenBytes returns an iterator over an in-memory archive.
func OpenBytes(name string, data []byte, opts Options) (EntryIterator, error) {
	opts = opts.withDefaults()
	switch DetectFormat(name, data) {
	case FormatZip:
		return newZipIterator(data, opts)
	case FormatTar:
		return newTarIterator(io.NopCloser(bytes.NewReader(data)), opts)
	case FormatTarGz:
		return newTarGzIterator(bytes.NewReader(data), opts)
	case FormatGzip:
		return newGzipIterator(name, bytes.NewReader(data), opts)
	}
	return nil, core.NewError(core.ErrUnsupportedFormat, "archive", "not a recognized archive").
		WithContext("name", name)
}

// readBounded reads at most opts.MaxEntrySize bytes, failing when the
// entry decompresses past the cap.
func readBounded(r io.Reader, name string, opts Options) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, opts.MaxEntrySize+1))
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedEntry, "archive", "entry read failed", err).
			WithContext("entry", name)
	}
	if int64(len(data)) > opts.MaxEntrySize {
		return nil, core.NewError(core.ErrMalformedEntry, "archive",
			"entry exceeds decompression limit").
			WithContext("entry", name).
			WithContext("limit", opts.MaxEntrySize)
	}
	return data, nil
}

func entryFor(name string, data []byte) *Entry {
	return &Entry{Name: name, Data: data, Kind: core.KindFromPath(name)}
}
