package csv

import (
	"context"
	"testing"

	"github.com/nvisycom/core/pkg/core"
)

func findUnit(units []core.ContentUnit, path string) *core.ContentUnit {
	for i := range units {
		if units[i].Path == path {
			return &units[i]
		}
	}
	return nil
}

func TestCellUnits(t *testing.T) {
	doc := []byte("name,email,age\nJane,jane@example.com,41\nBob,\"bob, jr@example.com\",33\n")
	units, degs, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if len(degs) != 0 {
		t.Errorf("unexpected degradations: %v", degs)
	}

	u := findUnit(units, "row:2,col:2")
	if u == nil {
		t.Fatal("missing unit for row 2 col 2")
	}
	if u.Text != "jane@example.com" || u.Encoding != core.EncNone {
		t.Errorf("unit = %+v", u)
	}
	if got := string(doc[u.Start:u.End]); got != "jane@example.com" {
		t.Errorf("span bytes = %q", got)
	}

	q := findUnit(units, "row:3,col:2")
	if q == nil {
		t.Fatal("missing unit for quoted cell")
	}
	if q.Text != "bob, jr@example.com" || q.Encoding != core.EncCSVQuoted {
		t.Errorf("quoted unit = %+v", q)
	}
	if doc[q.Start-1] != '"' || doc[q.End] != '"' {
		t.Error("quoted span must exclude the quotes")
	}
	if got := string(doc[q.Start:q.End]); got != "bob, jr@example.com" {
		t.Errorf("quoted span bytes = %q", got)
	}

	// Header cells are scannable like any others.
	if h := findUnit(units, "row:1,col:1"); h == nil || h.Text != "name" {
		t.Error("missing header cell unit")
	}
}

func TestEscapedQuoteCell(t *testing.T) {
	doc := []byte("a,b\nx,\"say \"\"hi\"\"\"\n")
	units, _, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	u := findUnit(units, "row:2,col:2")
	if u == nil {
		t.Fatal("missing unit")
	}
	if u.Text != `say "hi"` {
		t.Errorf("decoded text = %q", u.Text)
	}
	if got := string(doc[u.Start:u.End]); got != `say ""hi""` {
		t.Errorf("encoded span = %q", got)
	}
}

func TestMalformedRowDegrades(t *testing.T) {
	// A bare quote mid-field fails the whole-document parse; line mode
	// recovers the good rows and downgrades the bad one.
	doc := []byte("a,b\nok,fine\nbad\"cell,x\nlast,row\n")
	units, degs, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}

	var degraded bool
	for _, d := range degs {
		if d.Path == "row:3" {
			degraded = true
		}
	}
	if !degraded {
		t.Errorf("expected degradation for row 3, got %v", degs)
	}

	raw := findUnit(units, "row:3")
	if raw == nil {
		t.Fatal("malformed row must become a raw text unit")
	}
	if raw.Text != `bad"cell,x` {
		t.Errorf("raw unit text = %q", raw.Text)
	}
	if u := findUnit(units, "row:4,col:1"); u == nil || u.Text != "last" {
		t.Error("rows after the malformed one must still tokenize")
	}
}

func TestCRLFSpans(t *testing.T) {
	doc := []byte("h1,h2\r\nv1,v2\r\n")
	units, _, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	u := findUnit(units, "row:2,col:2")
	if u == nil {
		t.Fatal("missing unit")
	}
	if got := string(doc[u.Start:u.End]); got != "v2" {
		t.Errorf("span bytes = %q", got)
	}
}

func TestEncodeQuoted(t *testing.T) {
	if got := EncodeQuoted(`a"b`); got != `a""b` {
		t.Errorf("EncodeQuoted = %q", got)
	}
}
