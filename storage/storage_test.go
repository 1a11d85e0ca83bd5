package storage

import (
	"context"
	"os"
	"strings"
	"testing"
)

func collect(t *testing.T, seq func(func(FindResult, error) bool)) []FindResult {
	t.Helper()
	var out []FindResult
	seq(func(r FindResult, err error) bool {
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, r)
		return true
	})
	return out
}

func TestMemoryStorage_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	if err := s.Set(ctx, "a.txt", strings.NewReader("hello")); err != nil {
		t.Fatal(err)
	}
	r, err := s.Get(ctx, "a.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	buf := make([]byte, 5)
	if _, err := r.Read(buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "hello" {
		t.Fatalf("got %q", buf)
	}
}

func TestMemoryStorage_HasDeleteClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	_ = s.Set(ctx, "a.txt", strings.NewReader("x"))
	has, _ := s.Has(ctx, "a.txt")
	if !has {
		t.Fatal("expected key to exist")
	}
	_ = s.Delete(ctx, "a.txt")
	has, _ = s.Has(ctx, "a.txt")
	if has {
		t.Fatal("expected key to be deleted")
	}
	_ = s.Set(ctx, "b.txt", strings.NewReader("y"))
	_ = s.Clear(ctx)
	has, _ = s.Has(ctx, "b.txt")
	if has {
		t.Fatal("expected clear to remove all keys")
	}
}

func TestMemoryStorage_CreateChildScoping(t *testing.T) {
	ctx := context.Background()
	parent := NewMemoryStorage()
	child := parent.CreateChild("scoped")
	_ = child.Set(ctx, "a.txt", strings.NewReader("child"))

	if has, _ := parent.Has(ctx, "a.txt"); has {
		t.Fatal("parent should not see child's keys")
	}
	keys, _ := child.Keys(ctx)
	if len(keys) != 1 || keys[0] != "a.txt" {
		t.Fatalf("expected child to see its own key unprefixed, got %v", keys)
	}
}

func TestMemoryStorage_Find(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	_ = s.Set(ctx, "docs/one.txt", strings.NewReader("1"))
	_ = s.Set(ctx, "docs/two.txt", strings.NewReader("2"))
	_ = s.Set(ctx, "other.json", strings.NewReader("{}"))

	results := collect(t, s.Find(ctx, `\.txt$`, FindOptions{}))
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d: %v", len(results), results)
	}
}

func TestMemoryStorage_Find_PopulatesMetadataFromNamedCaptureGroups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	_ = s.Set(ctx, "docs/a.txt", strings.NewReader("1"))

	results := collect(t, s.Find(ctx, `(?P<dir>.*)/(?P<name>[^/]+)\.(?P<ext>[a-z]+)$`, FindOptions{}))
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(results), results)
	}
	meta := results[0].Metadata
	if meta["dir"] != "docs" || meta["name"] != "a" || meta["ext"] != "txt" {
		t.Fatalf("expected metadata from named capture groups, got %+v", meta)
	}
}

func TestMemoryStorage_Find_FiltersByCaseInsensitiveRegexOnCapturedMetadata(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	_ = s.Set(ctx, "a.txt", strings.NewReader("1"))
	_ = s.Set(ctx, "b.csv", strings.NewReader("2"))

	results := collect(t, s.Find(ctx, `\.(?P<ext>[a-zA-Z]+)$`, FindOptions{Filter: map[string]string{"ext": "TXT"}}))
	if len(results) != 1 || results[0].Path != "a.txt" {
		t.Fatalf("expected only a.txt to match the case-insensitive filter, got %v", results)
	}
}

func TestMemoryStorage_Find_FilterKeyAbsentFromMetadataExcludesResult(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	_ = s.Set(ctx, "a.txt", strings.NewReader("1"))

	results := collect(t, s.Find(ctx, `\.txt$`, FindOptions{Filter: map[string]string{"ext": "txt"}}))
	if len(results) != 0 {
		t.Fatalf("expected no matches when the pattern never captures the filtered key, got %v", results)
	}
}

func TestMemoryStorage_Find_RespectsMax(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	_ = s.Set(ctx, "a.txt", strings.NewReader("1"))
	_ = s.Set(ctx, "b.txt", strings.NewReader("2"))
	_ = s.Set(ctx, "c.txt", strings.NewReader("3"))

	results := collect(t, s.Find(ctx, `\.txt$`, FindOptions{Max: 1}))
	if len(results) != 1 {
		t.Fatalf("expected Max to cap results at 1, got %d", len(results))
	}
}

func TestFileStorage_SetGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := NewFileStorage(dir)
	if err := s.Set(ctx, "sub/a.txt", strings.NewReader("hello")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir + "/sub/a.txt"); err != nil {
		t.Fatal(err)
	}
	r, err := s.Get(ctx, "sub/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
}

func TestFileStorage_Find_FiltersByCaseInsensitiveRegexOnCapturedMetadata(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := NewFileStorage(dir)
	_ = s.Set(ctx, "a.txt", strings.NewReader("1"))
	_ = s.Set(ctx, "b.csv", strings.NewReader("2"))

	results := collect(t, s.Find(ctx, `\.(?P<ext>[a-zA-Z]+)$`, FindOptions{Filter: map[string]string{"ext": "TXT"}}))
	if len(results) != 1 || results[0].Path != "a.txt" {
		t.Fatalf("expected only a.txt to match the case-insensitive filter, got %v", results)
	}
}

func TestLoadWriteTable_RoundTrip(t *testing.T) {
	type row struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	ctx := context.Background()
	s := NewMemoryStorage()
	rows := []row{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}
	if err := WriteTable(ctx, s, "things", rows); err != nil {
		t.Fatal(err)
	}
	got, err := LoadTable[row](ctx, s, "things")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "a" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	has, err := HasTable(ctx, s, "things")
	if err != nil || !has {
		t.Fatalf("expected HasTable true, err=%v", err)
	}
}
