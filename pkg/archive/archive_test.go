package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nvisycom/core/pkg/core"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func buildTar(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, body := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func collect(t *testing.T, it EntryIterator) map[string]*Entry {
	t.Helper()
	defer it.Close()
	entries := make(map[string]*Entry)
	for {
		e, err := it.Next(context.Background())
		if err == io.EOF {
			return entries
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		entries[e.Name] = e
	}
}

func TestZipEntries(t *testing.T) {
	data := buildZip(t, map[string]string{
		"users.json":  `{"email": "a@b.co"}`,
		"notes/a.txt": "hello",
	})

	it, err := OpenBytes("bundle.zip", data, Options{})
	if err != nil {
		t.Fatal(err)
	}
	entries := collect(t, it)

	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if e := entries["users.json"]; e == nil || e.Kind != core.KindJSON {
		t.Fatalf("users.json kind = %+v", e)
	}
	if e := entries["notes/a.txt"]; e == nil || string(e.Data) != "hello" {
		t.Fatalf("a.txt = %+v", e)
	}
}

func TestTarAndTarGzEntries(t *testing.T) {
	raw := buildTar(t, map[string]string{"rows.csv": "a,b\n1,2\n"})

	it, err := OpenBytes("dump.tar", raw, Options{})
	if err != nil {
		t.Fatal(err)
	}
	entries := collect(t, it)
	if e := entries["rows.csv"]; e == nil || e.Kind != core.KindCSV {
		t.Fatalf("rows.csv = %+v", e)
	}

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	if _, err := gw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	it, err = OpenBytes("dump.tar.gz", gzBuf.Bytes(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	entries = collect(t, it)
	if e := entries["rows.csv"]; e == nil || string(e.Data) != "a,b\n1,2\n" {
		t.Fatalf("tar.gz rows.csv = %+v", e)
	}
}

func TestGzipSingleEntry(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte(`{"k": "v"}`))
	gw.Close()

	it, err := OpenBytes("payload.json.gz", buf.Bytes(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	entries := collect(t, it)

	e := entries["payload.json"]
	if e == nil {
		t.Fatalf("entries = %v", entries)
	}
	if e.Kind != core.KindJSON {
		t.Errorf("kind = %v", e.Kind)
	}
}

func TestEntrySizeLimit(t *testing.T) {
	big := strings.Repeat("x", 4096)
	data := buildZip(t, map[string]string{"big.txt": big})

	it, err := OpenBytes("b.zip", data, Options{MaxEntrySize: 1024})
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	_, err = it.Next(context.Background())
	if core.KindOf(err) != core.ErrMalformedEntry {
		t.Fatalf("want decompression limit error, got %v", err)
	}
}

func TestEntryCountLimit(t *testing.T) {
	files := map[string]string{}
	for _, n := range []string{"a", "b", "c", "d"} {
		files[n+".txt"] = n
	}
	it, err := OpenBytes("m.zip", buildZip(t, files), Options{MaxEntries: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	var count int
	for {
		_, err := it.Next(context.Background())
		if err != nil {
			if core.KindOf(err) != core.ErrMalformedEntry {
				t.Fatalf("want entry limit error, got %v", err)
			}
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("yielded %d entries before the limit", count)
	}
}

func TestUnrecognizedInput(t *testing.T) {
	_, err := OpenBytes("report", []byte("plain text, no container"), Options{})
	if core.KindOf(err) != core.ErrUnsupportedFormat {
		t.Fatalf("want unsupported_format, got %v", err)
	}
}

func TestDetectFormatByMagic(t *testing.T) {
	zipData := buildZip(t, map[string]string{"x": "y"})
	if f := DetectFormat("mystery.bin", zipData); f != FormatZip {
		t.Errorf("zip magic: %v", f)
	}
	if f := DetectFormat("mystery.bin", []byte{0x1F, 0x8B, 0x08}); f != FormatGzip {
		t.Errorf("gzip magic: %v", f)
	}
	if f := DetectFormat("data.tgz", nil); f != FormatTarGz {
		t.Errorf("tgz ext: %v", f)
	}
}

func TestCancelledContext(t *testing.T) {
	it, err := OpenBytes("c.zip", buildZip(t, map[string]string{"a.txt": "x"}), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := it.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
