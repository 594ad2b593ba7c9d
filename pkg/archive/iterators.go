package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/nvisycom/core/pkg/core"
)

type zipIterator struct {
	files []*zip.File
	pos   int
	opts  Options
}

func newZipIterator(data []byte, opts Options) (*zipIterator, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedEntry, "archive", "not a valid zip", err)
	}
	return &zipIterator{files: zr.File, opts: opts}, nil
}

func (it *zipIterator) Next(ctx context.Context) (*Entry, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if it.pos >= len(it.files) {
			return nil, io.EOF
		}
		if it.pos >= it.opts.MaxEntries {
			return nil, core.NewError(core.ErrMalformedEntry, "archive",
				"archive exceeds entry limit").
				WithContext("limit", it.opts.MaxEntries)
		}
		f := it.files[it.pos]
		it.pos++
		if f.FileInfo().IsDir() {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, core.WrapError(core.ErrMalformedEntry, "archive", "cannot open entry", err).
				WithContext("entry", f.Name)
		}
		data, err := readBounded(rc, f.Name, it.opts)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return entryFor(f.Name, data), nil
	}
}

func (it *zipIterator) Close() error { return nil }

type tarIterator struct {
	src   io.Closer
	tr    *tar.Reader
	count int
	opts  Options
}

func newTarIterator(src io.ReadCloser, opts Options) (*tarIterator, error) {
	return &tarIterator{src: src, tr: tar.NewReader(src), opts: opts}, nil
}

func newTarGzIterator(r io.Reader, opts Options) (*tarIterator, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedEntry, "archive", "not a valid gzip stream", err)
	}
	return &tarIterator{src: gz, tr: tar.NewReader(gz), opts: opts}, nil
}

func (it *tarIterator) Next(ctx context.Context) (*Entry, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := it.tr.Next()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, core.WrapError(core.ErrMalformedEntry, "archive", "corrupt tar entry", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if it.count >= it.opts.MaxEntries {
			return nil, core.NewError(core.ErrMalformedEntry, "archive",
				"archive exceeds entry limit").
				WithContext("limit", it.opts.MaxEntries)
		}
		it.count++

		data, err := readBounded(it.tr, hdr.Name, it.opts)
		if err != nil {
			return nil, err
		}
		return entryFor(hdr.Name, data), nil
	}
}

func (it *tarIterator) Close() error { return it.src.Close() }

// gzipIterator yields the single member of a plain gzip file. The entry
// name drops the .gz suffix so kind inference sees the inner extension.
type gzipIterator struct {
	name string
	r    io.Reader
	opts Options
	done bool
}

func newGzipIterator(name string, r io.Reader, opts Options) (*gzipIterator, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedEntry, "archive", "not a valid gzip stream", err)
	}
	inner := gz.Name
	if inner == "" {
		inner = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return &gzipIterator{name: inner, r: gz, opts: opts}, nil
}

func (it *gzipIterator) Next(ctx context.Context) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if it.done {
		return nil, io.EOF
	}
	it.done = true

	data, err := readBounded(it.r, it.name, it.opts)
	if err != nil {
		return nil, err
	}
	return entryFor(it.name, data), nil
}

func (it *gzipIterator) Close() error { return nil }
