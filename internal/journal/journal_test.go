package journal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/starford/itembox/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "itembox-journal-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndHistoryNewestFirst(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_ = db.Record(ctx, models.OpAdd, "abc")
	_ = db.Record(ctx, models.OpAdd, "zzz")
	_ = db.Record(ctx, models.OpRemove, "abc")

	events, err := db.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	if events[0].Op != models.OpRemove || events[0].Item != "abc" {
		t.Errorf("newest = %+v, want remove abc", events[0])
	}
	if events[2].Op != models.OpAdd || events[2].Item != "abc" {
		t.Errorf("oldest = %+v, want add abc", events[2])
	}
}

func TestHistoryLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_ = db.Record(ctx, models.OpAdd, name)
	}
	events, err := db.History(ctx, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Item != "c" || events[1].Item != "b" {
		t.Errorf("events = %+v", events)
	}
}

func TestHistoryEmpty(t *testing.T) {
	db := testDB(t)
	events, err := db.History(context.Background(), 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Errorf("events = %#v, want empty slice", events)
	}
}

func TestRecordTimestamp(t *testing.T) {
	db := testDB(t)
	fixed := time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)
	db.now = func() time.Time { return fixed }

	_ = db.Record(context.Background(), models.OpAdd, "abc")
	events, _ := db.History(context.Background(), 1)
	if len(events) != 1 {
		t.Fatalf("len = %d", len(events))
	}
	if !events[0].At.Equal(fixed) {
		t.Errorf("at = %v, want %v", events[0].At, fixed)
	}
}
