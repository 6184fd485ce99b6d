package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/plantaest/citronspam/internal/model"
)

func setupTestDB(t *testing.T) *FeedbackDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testFeedbacks() []model.Feedback {
	return []model.Feedback{
		{CreatedAt: "2025-03-01T12:00:00.000Z", CreatedBy: 1, User: "Alice", Hostname: "spam.example", Status: model.FeedbackBad, Hash: "h1"},
		{CreatedAt: "2025-03-01T13:00:00.000Z", CreatedBy: 2, User: "Bob", Hostname: "ok.example", Status: model.FeedbackGood, Hash: "h2"},
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database file", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested")
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer db.Close()

		if got, want := db.Path(), filepath.Join(dir, FileName); got != want {
			t.Errorf("Path() = %q, expected %q", got, want)
		}
	})

	t.Run("missing database without create", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("reopen existing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		_ = db.Close()
	})
}

func TestSaveFeedbacks(t *testing.T) {
	t.Parallel()

	t.Run("inserts and lists", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := t.Context()

		n, err := db.SaveFeedbacks(ctx, "viwiki", "2025-03-01", testFeedbacks())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 2 {
			t.Errorf("inserted %d, expected 2", n)
		}

		records, err := db.ListFeedbacks(ctx, "viwiki", "2025-03-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := make([]model.Feedback, len(records))
		for i, r := range records {
			got[i] = r.Feedback
			if r.WikiID != "viwiki" || r.ReportDate != "2025-03-01" {
				t.Errorf("record %d has wiki %q date %q", i, r.WikiID, r.ReportDate)
			}
		}
		want := testFeedbacks()
		for i := range want {
			want[i].Synced = true
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("feedbacks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("duplicates are skipped", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := t.Context()

		if _, err := db.SaveFeedbacks(ctx, "viwiki", "2025-03-01", testFeedbacks()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n, err := db.SaveFeedbacks(ctx, "viwiki", "2025-03-01", testFeedbacks())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("inserted %d duplicates", n)
		}

		// Same hash on another day is a separate entry.
		n, err = db.SaveFeedbacks(ctx, "viwiki", "2025-03-02", testFeedbacks()[:1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 1 {
			t.Errorf("inserted %d, expected 1", n)
		}
	})

	t.Run("other wiki is isolated", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := t.Context()

		if _, err := db.SaveFeedbacks(ctx, "viwiki", "2025-03-01", testFeedbacks()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		records, err := db.ListFeedbacks(ctx, "enwiki", "2025-03-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("got %d records for other wiki", len(records))
		}
	})
}

func TestIgnoredHostnames(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := t.Context()

	for _, h := range []string{"ok.example", "b.example", "ok.example"} {
		if _, err := db.AddIgnoredHostname(ctx, "viwiki", h); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	added, err := db.AddIgnoredHostname(ctx, "viwiki", "ok.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Error("existing hostname reported as added")
	}

	got, err := db.IgnoredHostnames(ctx, "viwiki")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"b.example", "ok.example"}, got); diff != "" {
		t.Errorf("hostnames mismatch (-want +got):\n%s", diff)
	}

	checked, err := db.CheckHostnames(ctx, "viwiki", []string{"ok.example", "spam.example"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]bool{"ok.example": true, "spam.example": false}
	if diff := cmp.Diff(want, checked); diff != "" {
		t.Errorf("check mismatch (-want +got):\n%s", diff)
	}

	empty, err := db.CheckHostnames(ctx, "viwiki", nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("CheckHostnames(nil) = %v, %v", empty, err)
	}
}

func TestSnapshots(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)

		_, err := db.LoadSnapshot(t.Context(), "viwiki", "Project:Citron/Spam/2025-03-01.json")
		if !errors.Is(err, ErrSnapshotNotFound) {
			t.Errorf("expected ErrSnapshotNotFound, got %v", err)
		}
	})

	t.Run("save replaces previous", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		ctx := t.Context()
		title := "Project:Citron/Spam/2025-03-01.json"

		first := model.DefaultReport()
		if err := db.SaveSnapshot(ctx, "viwiki", title, first); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		second := model.DefaultReport()
		second.Version = 2
		second.Hostnames = []model.Hostname{{Hostname: "spam.example", Score: 0.9, RevisionIDs: []int64{}}}
		if err := db.SaveSnapshot(ctx, "viwiki", title, second); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		snap, err := db.LoadSnapshot(ctx, "viwiki", title)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(second, snap.Report); diff != "" {
			t.Errorf("report mismatch (-want +got):\n%s", diff)
		}
		if time.Since(snap.FetchedAt) > time.Minute {
			t.Errorf("FetchedAt = %v, expected recent", snap.FetchedAt)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "RFC3339Nano", input: "2025-03-01T12:00:00.123456789Z"},
		{name: "RFC3339", input: "2025-03-01T12:00:00Z"},
		{name: "SQLite", input: "2025-03-01 12:00:00"},
		{name: "invalid", input: "yesterday", zero: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v", tt.input, got)
			}
		})
	}
}
