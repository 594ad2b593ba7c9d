package xml

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

func TestTextAndAttributeUnits(t *testing.T) {
	doc := []byte(`<contacts><person id="u-1"><email>a@b.example</email></person><person id="u-2"><email>c@d.example</email></person></contacts>`)
	units, degs, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if len(degs) != 0 {
		t.Errorf("unexpected degradations: %v", degs)
	}

	u := findUnit(units, "/contacts/person/email")
	if u == nil {
		t.Fatal("missing text unit for first email")
	}
	if u.Text != "a@b.example" {
		t.Errorf("text = %q", u.Text)
	}
	if got := string(doc[u.Start:u.End]); got != "a@b.example" {
		t.Errorf("span bytes = %q", got)
	}

	if v := findUnit(units, "/contacts/person[2]/email"); v == nil || v.Text != "c@d.example" {
		t.Error("missing sibling-indexed unit for second email")
	}

	a := findUnit(units, "/contacts/person/@id")
	if a == nil {
		t.Fatal("missing attribute unit")
	}
	if a.Text != "u-1" {
		t.Errorf("attribute text = %q", a.Text)
	}
	if got := string(doc[a.Start:a.End]); got != "u-1" {
		t.Errorf("attribute span bytes = %q", got)
	}
	if doc[a.Start-1] != '"' || doc[a.End] != '"' {
		t.Error("attribute span must exclude the quotes")
	}
	if a.Encoding != core.EncXMLAttr {
		t.Errorf("attribute encoding = %v", a.Encoding)
	}
}

func TestEntityDecodedText(t *testing.T) {
	doc := []byte(`<m><v>Tom &amp; Jane &lt;x&gt;</v></m>`)
	units, _, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	u := findUnit(units, "/m/v")
	if u == nil {
		t.Fatal("missing text unit")
	}
	if u.Text != "Tom & Jane <x>" {
		t.Errorf("decoded text = %q", u.Text)
	}
	// The span covers the encoded form.
	if got := string(doc[u.Start:u.End]); got != "Tom &amp; Jane &lt;x&gt;" {
		t.Errorf("encoded span = %q", got)
	}
}

func TestWhitespaceTextSkipped(t *testing.T) {
	doc := []byte("<a>\n  <b>x</b>\n</a>")
	units, _, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if len(units) != 1 || units[0].Path != "/a/b" {
		t.Errorf("expected only /a/b, got %+v", units)
	}
}

func TestAttributeWordBoundary(t *testing.T) {
	// "id" must not match inside "uuid".
	doc := []byte(`<e uuid="long-one" id="short"/>`)
	units, _, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	u := findUnit(units, "/e/@id")
	if u == nil {
		t.Fatal("missing @id unit")
	}
	if got := string(doc[u.Start:u.End]); got != "short" {
		t.Errorf("@id span = %q", got)
	}
}

func TestMalformedDocument(t *testing.T) {
	_, _, err := New().Tokenize(context.Background(), []byte(`<a><b></a>`))
	if err == nil {
		t.Fatal("expected error for mismatched tags")
	}
	if core.KindOf(err) != core.ErrMalformedEntry {
		t.Errorf("error kind = %q, want malformed_entry", core.KindOf(err))
	}
}

func TestEncodeHelpers(t *testing.T) {
	if got := EncodeText("a & b"); got != "a &amp; b" {
		t.Errorf("EncodeText = %q", got)
	}
	if got := EncodeAttr(`say "hi"`); got == `say "hi"` {
		t.Errorf("EncodeAttr must escape quotes, got %q", got)
	}
}
