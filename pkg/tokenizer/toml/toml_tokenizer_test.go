package toml

import (
	"context"
	"strings"
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

func TestStringValueUnits(t *testing.T) {
	doc := []byte(`title = "Registry"

[owner]
email = "ops@example.com"
motto = 'plain as-is'
retries = 3

[[servers]]
host = "db1.internal"
`)
	units, degs, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if len(degs) != 0 {
		t.Errorf("unexpected degradations: %v", degs)
	}

	u := findUnit(units, "owner.email")
	if u == nil {
		t.Fatal("missing unit for owner.email")
	}
	if u.Text != "ops@example.com" || u.Encoding != core.EncTOMLBasic {
		t.Errorf("unit = %+v", u)
	}
	if got := string(doc[u.Start:u.End]); got != "ops@example.com" {
		t.Errorf("span bytes = %q", got)
	}
	if doc[u.Start-1] != '"' || doc[u.End] != '"' {
		t.Error("span must exclude the quotes")
	}

	m := findUnit(units, "owner.motto")
	if m == nil {
		t.Fatal("missing unit for owner.motto")
	}
	if m.Text != "plain as-is" || m.Encoding != core.EncNone {
		t.Errorf("literal-string unit = %+v", m)
	}

	if findUnit(units, "servers.host") == nil {
		t.Error("missing unit under array-of-tables header")
	}
	if findUnit(units, "owner.retries") != nil {
		t.Error("integer value must not become a unit")
	}
	if v := findUnit(units, "title"); v == nil || v.Text != "Registry" {
		t.Error("missing top-level unit")
	}
}

func TestEscapedBasicString(t *testing.T) {
	doc := []byte(`note = "line1\nid 4111"` + "\n")
	units, _, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	u := findUnit(units, "note")
	if u == nil {
		t.Fatal("missing unit")
	}
	if u.Text != "line1\nid 4111" {
		t.Errorf("decoded text = %q", u.Text)
	}
	if got := string(doc[u.Start:u.End]); got != `line1\nid 4111` {
		t.Errorf("encoded span = %q", got)
	}
}

func TestMultilineStringDegrades(t *testing.T) {
	doc := []byte("a = \"\"\"\nsecret\n\"\"\"\nb = \"ok\"\n")
	units, degs, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	var found bool
	for _, d := range degs {
		if d.Path == "a" && strings.Contains(d.Reason, "multiline") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected multiline degradation, got %v", degs)
	}
	if u := findUnit(units, "b"); u == nil || u.Text != "ok" {
		t.Error("remaining values must still tokenize")
	}
}

func TestArrayAndInlineTableStrings(t *testing.T) {
	doc := []byte(`contacts = ["jane.doe@example.com", 'bob@example.com']
point = { x = "1 Main St", n = 7 }
nested = [{ email = "eve@example.com" }]
ports = [8001, 8002]
`)
	units, degs, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	if len(degs) != 0 {
		t.Errorf("unexpected degradations: %v", degs)
	}

	u := findUnit(units, "contacts[0]")
	if u == nil {
		t.Fatal("missing unit for contacts[0]")
	}
	if u.Text != "jane.doe@example.com" || u.Encoding != core.EncTOMLBasic {
		t.Errorf("unit = %+v", u)
	}
	if got := string(doc[u.Start:u.End]); got != "jane.doe@example.com" {
		t.Errorf("span bytes = %q", got)
	}

	lit := findUnit(units, "contacts[1]")
	if lit == nil {
		t.Fatal("missing unit for contacts[1]")
	}
	if lit.Text != "bob@example.com" || lit.Encoding != core.EncNone {
		t.Errorf("literal element unit = %+v", lit)
	}

	if v := findUnit(units, "point.x"); v == nil || v.Text != "1 Main St" {
		t.Error("missing inline-table member unit")
	}
	if findUnit(units, "point.n") != nil {
		t.Error("integer member must not become a unit")
	}
	if v := findUnit(units, "nested[0].email"); v == nil || v.Text != "eve@example.com" {
		t.Error("missing nested array-of-tables element unit")
	}
	for _, u := range units {
		if strings.HasPrefix(u.Path, "ports") {
			t.Errorf("numeric array produced a unit: %+v", u)
		}
	}
}

func TestMultilineArrayDegrades(t *testing.T) {
	doc := []byte("contacts = [\n  \"jane.doe@example.com\",\n]\nafter = \"ok\"\n")
	units, degs, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	var found bool
	for _, d := range degs {
		if d.Path == "contacts" && strings.Contains(d.Reason, "multiple lines") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected multi-line container degradation, got %v", degs)
	}
	if u := findUnit(units, "after"); u == nil || u.Text != "ok" {
		t.Error("remaining values must still tokenize")
	}
}

func TestValueWithTrailingComment(t *testing.T) {
	doc := []byte("key = \"value\" # trailing\n")
	units, _, err := New().Tokenize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	u := findUnit(units, "key")
	if u == nil {
		t.Fatal("missing unit")
	}
	if got := string(doc[u.Start:u.End]); got != "value" {
		t.Errorf("span bytes = %q", got)
	}
}

func TestMalformedDocument(t *testing.T) {
	_, _, err := New().Tokenize(context.Background(), []byte("= nope\n"))
	if err == nil {
		t.Fatal("expected error for malformed document")
	}
	if core.KindOf(err) != core.ErrMalformedEntry {
		t.Errorf("error kind = %q, want malformed_entry", core.KindOf(err))
	}
}

func TestEncodeBasic(t *testing.T) {
	if got := EncodeBasic(`a"b\c`); got != `a\"b\\c` {
		t.Errorf("EncodeBasic = %q", got)
	}
}
