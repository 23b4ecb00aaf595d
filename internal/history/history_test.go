package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pumon/pkg/logx"
)

func TestJournalDisabledIsNoOp(t *testing.T) {
	j, err := Open("", logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if j != nil {
		t.Fatalf("empty path must disable the journal")
	}
	// All methods are nil-safe.
	j.Record(context.Background(), RunRecord{Category: "public"})
	if recs, err := j.Recent(context.Background(), 5); err != nil || recs != nil {
		t.Fatalf("nil journal Recent = %v, %v", recs, err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("nil journal Close: %v", err)
	}
}

func TestJournalRecordAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	j, err := Open(path, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	j.Record(ctx, RunRecord{At: base, Category: "tribe", Fetched: 4, Notified: 1, TookMS: 900})
	j.Record(ctx, RunRecord{At: base.Add(time.Minute), Category: "public", Fetched: 20, Notified: 3, Failed: 1, Err: "push endpoint returned 502", TookMS: 4200})

	recs, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	// Newest first.
	if recs[0].Category != "public" || recs[0].Failed != 1 {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[0].Err != "push endpoint returned 502" {
		t.Fatalf("err column lost: %q", recs[0].Err)
	}
	if recs[1].Category != "tribe" || recs[1].Fetched != 4 {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
	if !recs[1].At.Equal(base) {
		t.Fatalf("timestamp lost: %v", recs[1].At)
	}
}
