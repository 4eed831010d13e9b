package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nathoo/dicecore/engine/dice"
	"github.com/nathoo/dicecore/engine/outcome"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	session := NewSession()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	second := Entry{Session: session, Seq: 2, Seed: 42, Position: 7, Feature: "stealth",
		Actor: "ada", Pool: 3, Faces: []int{8, 1, 9}, DC: 1, Net: 1, Outcome: "MarginalSuccess", CreatedAt: now}
	first := Entry{Session: session, Seq: 1, Seed: 42, Position: 4, Feature: "climb",
		Actor: "ada", Pool: 4, Faces: []int{10, 8, 3, 9}, DC: 2, Net: 3, Outcome: "FullSuccess", Margin: 1, CreatedAt: now}

	for _, e := range []Entry{second, first} {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := store.Record(ctx, Entry{Session: NewSession(), Seq: 1, Feature: "check", Faces: []int{5}}); err != nil {
		t.Fatalf("record other session: %v", err)
	}

	entries, err := store.List(ctx, session)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries len = %d, want 2", len(entries))
	}
	if entries[0].Feature != "climb" || entries[1].Feature != "stealth" {
		t.Fatalf("entries out of order: %s, %s", entries[0].Feature, entries[1].Feature)
	}
	if entries[0].ID == "" {
		t.Error("expected a generated id")
	}
	if len(entries[0].Faces) != 4 || entries[0].Faces[0] != 10 {
		t.Errorf("faces = %v", entries[0].Faces)
	}
	if !entries[0].CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", entries[0].CreatedAt, now)
	}

	last, ok, err := store.Last(ctx, session)
	if err != nil || !ok {
		t.Fatalf("last: %v %v", ok, err)
	}
	if last.Seq != 2 || last.Position != 7 {
		t.Errorf("last = %+v", last)
	}
}

func TestRecordValidation(t *testing.T) {
	store := openTempStore(t)
	if err := store.Record(context.Background(), Entry{}); err == nil {
		t.Fatal("expected validation error for empty entry")
	}
	if err := store.Record(context.Background(), Entry{Session: "s"}); err == nil {
		t.Fatal("expected validation error for missing feature")
	}
}

func TestRecord_DuplicateSeq(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	e := Entry{Session: "s", Seq: 1, Feature: "check", Faces: []int{9}}
	if err := store.Record(ctx, e); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, e); err == nil {
		t.Fatal("expected duplicate sequence to fail")
	}
}

func TestRecord_CanceledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Record(ctx, Entry{Session: "s", Feature: "check"}); err == nil {
		t.Fatal("expected canceled context error")
	}
}

func TestLast_Empty(t *testing.T) {
	store := openTempStore(t)
	if _, ok, err := store.Last(context.Background(), "nobody"); ok || err != nil {
		t.Errorf("Last = %v, %v", ok, err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestReplay(t *testing.T) {
	cfg := dice.DefaultConfig()
	cls := outcome.NewClassifier()
	entries := []Entry{
		{Seq: 1, Feature: "check", Faces: []int{8, 9, 10, 2}, DC: 2, Net: 3, Outcome: "FullSuccess"},
		{Seq: 2, Feature: "check", Faces: []int{1, 3}, DC: 1, Net: -1, Outcome: "CriticalFailure"},
		{Seq: 3, Feature: "check", Faces: []int{8}, DC: 1, Net: 2, Outcome: "FullSuccess"},
	}
	ms, err := Replay(entries, cfg, cls)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("mismatches = %v, want 2", ms)
	}
	if ms[0].Seq != 3 || ms[0].Field != "net" {
		t.Errorf("first mismatch = %+v", ms[0])
	}
	if ms[1].Field != "outcome" || ms[1].Got != "MarginalSuccess" {
		t.Errorf("second mismatch = %+v", ms[1])
	}
}

func TestReplay_BadFaces(t *testing.T) {
	_, err := Replay([]Entry{{Seq: 1, Faces: []int{11}}}, dice.DefaultConfig(), outcome.NewClassifier())
	if err == nil {
		t.Fatal("expected error for out-of-range face")
	}
}
