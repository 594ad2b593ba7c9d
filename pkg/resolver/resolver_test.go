package resolver

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/nvisycom/core/pkg/category"
)

func newResolver() *Resolver {
	return New(category.Default(), nil)
}

func TestLongerSpanWins(t *testing.T) {
	text := "card 4111111111111111"
	r := newResolver()
	got := r.Resolve(text, []Match{
		{Start: 5, End: 21, Value: "4111111111111111", Confidence: 0.95, Category: category.CreditCard, Detector: "credit_card", DetectorOrder: 0},
		{Start: 5, End: 14, Value: "411111111", Confidence: 0.99, Category: category.RoutingNumber, Detector: "routing_number", DetectorOrder: 3},
	})
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1", len(got))
	}
	if got[0].Category != category.CreditCard {
		t.Errorf("winner = %s, want credit_card despite lower confidence", got[0].Category)
	}
}

func TestConfidenceBreaksEqualSpans(t *testing.T) {
	r := newResolver()
	got := r.Resolve("x 123456789 y", []Match{
		{Start: 2, End: 11, Confidence: 0.6, Category: category.BankAccount, DetectorOrder: 10},
		{Start: 2, End: 11, Confidence: 0.9, Category: category.PassportNumber, DetectorOrder: 12},
	})
	if len(got) != 1 || got[0].Category != category.PassportNumber {
		t.Errorf("got %+v, want the higher-confidence match", got)
	}
}

func TestPriorityBreaksEqualConfidence(t *testing.T) {
	r := newResolver()
	got := r.Resolve("x 123456789 y", []Match{
		{Start: 2, End: 11, Confidence: 0.8, Category: category.BankAccount, DetectorOrder: 10},
		{Start: 2, End: 11, Confidence: 0.8, Category: category.SSN, DetectorOrder: 12},
	})
	if len(got) != 1 || got[0].Category != category.SSN {
		t.Errorf("got %+v, want SSN by priority", got)
	}
}

func TestRegistrationOrderIsFinalTieBreak(t *testing.T) {
	r := newResolver()
	got := r.Resolve("x 10.0.0.1 y", []Match{
		{Start: 2, End: 10, Confidence: 0.9, Category: category.IPAddress, Detector: "second", DetectorOrder: 5},
		{Start: 2, End: 10, Confidence: 0.9, Category: category.IPAddress, Detector: "first", DetectorOrder: 1},
	})
	if len(got) != 1 || got[0].Detector != "first" {
		t.Errorf("got %+v, want the earlier-registered detector", got)
	}
}

func TestNonOverlappingKept(t *testing.T) {
	r := newResolver()
	got := r.Resolve("a@b.example and 10.0.0.1", []Match{
		{Start: 0, End: 11, Category: category.Email, Confidence: 0.95},
		{Start: 16, End: 24, Category: category.IPAddress, Confidence: 0.9},
	})
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Start > got[1].Start {
		t.Error("result must be sorted by start offset")
	}
}

func TestWhitespaceAdjacentSameCategoryMerge(t *testing.T) {
	text := "4111 1111 1111 1111"
	r := newResolver()
	got := r.Resolve(text, []Match{
		{Start: 0, End: 9, Value: "4111 1111", Category: category.CreditCard, Confidence: 0.8},
		{Start: 10, End: 19, Value: "1111 1111", Category: category.CreditCard, Confidence: 0.9},
	})
	if len(got) != 1 {
		t.Fatalf("got %d matches, want merged 1", len(got))
	}
	if got[0].Start != 0 || got[0].End != 19 {
		t.Errorf("merged span = [%d,%d)", got[0].Start, got[0].End)
	}
	if got[0].Value != text {
		t.Errorf("merged value = %q", got[0].Value)
	}
	if got[0].Confidence != 0.9 {
		t.Errorf("merged confidence = %f, want max", got[0].Confidence)
	}
}

func TestDifferentCategoriesDoNotMerge(t *testing.T) {
	r := newResolver()
	got := r.Resolve("a@b.example 10.0.0.1", []Match{
		{Start: 0, End: 11, Category: category.Email, Confidence: 0.95},
		{Start: 12, End: 20, Category: category.IPAddress, Confidence: 0.9},
	})
	if len(got) != 2 {
		t.Errorf("got %d matches, want 2", len(got))
	}
}

func TestDeterministicUnderShuffle(t *testing.T) {
	text := "body 4111111111111111 and 123-45-6789 plus a@b.example"
	base := []Match{
		{Start: 5, End: 21, Category: category.CreditCard, Confidence: 0.95, Detector: "credit_card", DetectorOrder: 0},
		{Start: 5, End: 14, Category: category.RoutingNumber, Confidence: 0.85, Detector: "routing_number", DetectorOrder: 3},
		{Start: 26, End: 37, Category: category.SSN, Confidence: 0.92, Detector: "ssn", DetectorOrder: 1},
		{Start: 43, End: 54, Category: category.Email, Confidence: 0.95, Detector: "email", DetectorOrder: 8},
	}
	r := newResolver()
	want := r.Resolve(text, base)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]Match, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if got := r.Resolve(text, shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("trial %d: resolution depends on arrival order:\ngot  %+v\nwant %+v", trial, got, want)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	if got := newResolver().Resolve("text", nil); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}
