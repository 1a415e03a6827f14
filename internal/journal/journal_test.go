package journal

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func setupTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalOpenClose(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	if want := filepath.Join(dir, FileName); j.Path() != want {
		t.Errorf("path = %q, want %q", j.Path(), want)
	}
	if j.Session() == "" {
		t.Error("empty session ID")
	}
	if err := j.Close(); err != nil {
		t.Errorf("close: %v", err)
	}

	// Reopening starts a new session on the same file.
	j2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()
	if j2.Session() == j.Session() {
		t.Error("session ID reused")
	}
}

func TestRecordAndRecent(t *testing.T) {
	j := setupTestJournal(t)

	snippets := []struct{ code, result string }{
		{"new geo::Point;", "success"},
		{"delete (geo::Point*)65536;", "success"},
		{"delete[] (geo::Point*)1;", "failure"},
	}
	for _, s := range snippets {
		if err := j.Record(s.code, s.result); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recent, err := j.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}
	if recent[0].Code != snippets[2].code || recent[0].Result != "failure" {
		t.Errorf("newest = %+v", recent[0])
	}
	if recent[0].Session != j.Session() || recent[0].ExecutedAt.IsZero() {
		t.Errorf("entry metadata = %+v", recent[0])
	}

	all, err := j.SessionEntries(j.Session())
	if err != nil {
		t.Fatalf("session entries: %v", err)
	}
	if len(all) != 3 || all[0].Code != snippets[0].code {
		t.Errorf("session entries = %+v", all)
	}

	stats, err := j.GetStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.SnippetCount != 3 || stats.SessionCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSources(t *testing.T) {
	j := setupTestJournal(t)

	if _, err := j.GetSourceHash("geo.h"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing source err = %v, want sql.ErrNoRows", err)
	}

	hash := HashContent([]byte("struct Point {};"))
	if len(hash) != 64 {
		t.Errorf("hash length = %d", len(hash))
	}
	if err := j.SetSourceLoaded("geo.h", hash); err != nil {
		t.Fatalf("set source: %v", err)
	}
	if err := j.SetSourceLoaded("old.h", HashContent(nil)); err != nil {
		t.Fatalf("set source: %v", err)
	}

	changed, err := j.IsSourceChanged("geo.h", hash)
	if err != nil || changed {
		t.Errorf("IsSourceChanged(same) = %v, %v", changed, err)
	}
	changed, err = j.IsSourceChanged("geo.h", HashContent([]byte("struct Point { int x; };")))
	if err != nil || !changed {
		t.Errorf("IsSourceChanged(edited) = %v, %v", changed, err)
	}
	changed, err = j.IsSourceChanged("new.h", hash)
	if err != nil || !changed {
		t.Errorf("IsSourceChanged(new) = %v, %v", changed, err)
	}

	pruned, err := j.PruneSources(map[string]bool{"geo.h": true})
	if err != nil || pruned != 1 {
		t.Errorf("prune = %d, %v", pruned, err)
	}
	sources, err := j.Sources()
	if err != nil || len(sources) != 1 || sources[0].FilePath != "geo.h" {
		t.Errorf("sources = %+v, %v", sources, err)
	}

	if err := j.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, _ := j.GetStats()
	if stats.SourceCount != 0 || stats.SnippetCount != 0 {
		t.Errorf("stats after clear = %+v", stats)
	}
}
