package report

import (
	"testing"

	"github.com/google/uuid"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/core"
)

func TestRecordsOrderedByUnitIndex(t *testing.T) {
	b := NewBuilder(core.KindJSON, uuid.New())
	b.AddRecord(Record{UnitIndex: 2, Start: 0, Category: category.Email, Action: "mask"})
	b.AddRecord(Record{UnitIndex: 0, Start: 5, Category: category.SSN, Action: "mask"})
	b.AddRecord(Record{UnitIndex: 0, Start: 1, Category: category.SSN, Action: "mask"})

	r := b.Finalize()
	if r.MatchCount() != 3 {
		t.Fatalf("match count = %d", r.MatchCount())
	}
	if r.Records[0].UnitIndex != 0 || r.Records[0].Start != 1 {
		t.Errorf("first record = %+v, want unit 0 offset 1", r.Records[0])
	}
	if r.Records[2].UnitIndex != 2 {
		t.Errorf("last record = %+v, want unit 2", r.Records[2])
	}
}

func TestTotalsPerCategory(t *testing.T) {
	b := NewBuilder(core.KindText, uuid.New())
	b.AddRecord(Record{Category: category.Email})
	b.AddRecord(Record{Category: category.Email})
	b.AddRecord(Record{Category: category.SSN})

	r := b.Finalize()
	if r.Totals[category.Email] != 2 || r.Totals[category.SSN] != 1 {
		t.Errorf("totals = %v", r.Totals)
	}
}

func TestFinalizeSnapshotIsImmutable(t *testing.T) {
	b := NewBuilder(core.KindText, uuid.New())
	b.AddRecord(Record{UnitIndex: 0, Category: category.Email})

	snap := b.Finalize()
	b.AddRecord(Record{UnitIndex: 1, Category: category.SSN})
	b.AddDegradation(core.Degradation{Path: "x"})

	if snap.MatchCount() != 1 {
		t.Errorf("snapshot gained records after Finalize: %d", snap.MatchCount())
	}
	if len(snap.Degradations) != 0 {
		t.Errorf("snapshot gained degradations after Finalize")
	}

	// A later Finalize sees the additions.
	if b.Finalize().MatchCount() != 2 {
		t.Error("builder must keep accumulating after a snapshot")
	}
}

func TestDegradationsAndMetadata(t *testing.T) {
	b := NewBuilder(core.KindYAML, uuid.New())
	b.SetUnitCount(7)
	b.SetDigest("abc123")
	b.AddDegradation(core.Degradation{Path: "note", Kind: "malformed_entry", Reason: "block scalar"})

	r := b.Finalize()
	if r.UnitCount != 7 || r.Digest != "abc123" {
		t.Errorf("metadata = %+v", r)
	}
	if len(r.Degradations) != 1 || r.Degradations[0].Path != "note" {
		t.Errorf("degradations = %+v", r.Degradations)
	}
	if r.Kind != core.KindYAML {
		t.Errorf("kind = %v", r.Kind)
	}
	if r.ID == uuid.Nil {
		t.Error("report must carry an id")
	}
}
