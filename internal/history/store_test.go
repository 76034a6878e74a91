package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/JonMunkholm/langtool/internal/core"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{5, 5},
		{10000, maxLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEncodeURLs(t *testing.T) {
	got, err := encodeURLs(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "{}" {
		t.Errorf("encodeURLs(nil) = %s, want {}", got)
	}
}

// openTestStore connects to LANGTOOL_TEST_DATABASE_URL or skips.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("LANGTOOL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LANGTOOL_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(s.Close)

	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return s
}

func TestStore_RecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	start := time.Now().UTC().Truncate(time.Millisecond)
	ok := core.RunRecord{
		ID:         uuid.NewString(),
		StartedAt:  start.Add(time.Hour),
		FinishedAt: start.Add(time.Hour + time.Second),
		Success:    true,
		Locales:    []string{"en", "vi"},
		URLs:       map[string]string{"en": "https://x/en.json", "vi": "https://x/vi.json"},
	}
	failed := core.RunRecord{
		ID:         uuid.NewString(),
		StartedAt:  start.Add(2 * time.Hour),
		FinishedAt: start.Add(2*time.Hour + time.Second),
		Error:      "publish failed for locale vi: cdn access_denied",
		URLs:       map[string]string{},
	}

	for _, rec := range []core.RunRecord{ok, failed} {
		if err := s.RecordRun(ctx, rec); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns() returned %d runs, want 2", len(runs))
	}

	failed.Locales = []string{}
	timeEqual := cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })
	if diff := cmp.Diff([]core.RunRecord{failed, ok}, runs, timeEqual); diff != "" {
		t.Errorf("ListRuns() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_RecordRunRejectsBadID(t *testing.T) {
	s := &Store{}
	if err := s.RecordRun(context.Background(), core.RunRecord{ID: "not-a-uuid"}); err == nil {
		t.Error("RecordRun() error = nil")
	}
}
