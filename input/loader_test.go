package input

import (
	"context"
	"strings"
	"testing"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/storage"
)

func TestLoad_Text_SingleFile(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	_ = s.Set(ctx, "a.txt", strings.NewReader("Alice met Bob at the conference."))

	l := NewLoader(config.Input{FileType: config.FileTypeText, FilePattern: `\.txt$`})
	docs, err := l.Load(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Title != "a.txt" {
		t.Fatalf("expected title a.txt, got %q", docs[0].Title)
	}
	if docs[0].Text != "Alice met Bob at the conference." {
		t.Fatalf("unexpected text: %q", docs[0].Text)
	}
}

func TestLoad_Text_IdsAreStableAcrossLoads(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	_ = s.Set(ctx, "a.txt", strings.NewReader("hello"))
	l := NewLoader(config.Input{FileType: config.FileTypeText, FilePattern: `\.txt$`})

	first, err := l.Load(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	second, err := l.Load(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].ID != second[0].ID {
		t.Fatal("expected identical ids across repeated loads")
	}
}

func TestLoad_CSV_MetadataAndColumns(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	csvBody := "text,title,tag\n" +
		"\"My first program\",\"Hello World\",tutorial\n" +
		"\"An early space shooter game\",\"Space Invaders\",arcade\n"
	_ = s.Set(ctx, "software.csv", strings.NewReader(csvBody))

	l := NewLoader(config.Input{
		FileType:    config.FileTypeCSV,
		FilePattern: `\.csv$`,
		TextColumn:  "text",
		TitleColumn: "title",
		Metadata:    []string{"title", "tag"},
	})
	docs, err := l.Load(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Title != "Hello World" || docs[0].Text != "My first program" {
		t.Fatalf("unexpected first row: %+v", docs[0])
	}
	if docs[0].Metadata == nil || docs[0].Metadata.Len() != 2 {
		t.Fatalf("expected 2 metadata entries, got %+v", docs[0].Metadata)
	}
}

func TestLoad_JSON_ArrayRoot(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	_ = s.Set(ctx, "docs.json", strings.NewReader(`[{"text":"one","title":"First"},{"text":"two","title":"Second"}]`))

	l := NewLoader(config.Input{
		FileType:    config.FileTypeJSON,
		FilePattern: `\.json$`,
		TextColumn:  "text",
		TitleColumn: "title",
	})
	docs, err := l.Load(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].Text != "one" || docs[1].Title != "Second" {
		t.Fatalf("unexpected docs: %+v", docs)
	}
}

func TestLoad_JSON_FallsBackToJSONLines(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	_ = s.Set(ctx, "docs.jsonl", strings.NewReader("{\"text\":\"one\"}\n{\"text\":\"two\"}\n"))

	l := NewLoader(config.Input{
		FileType:    config.FileTypeJSON,
		FilePattern: `\.jsonl$`,
		TextColumn:  "text",
	})
	docs, err := l.Load(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents from json-lines fallback, got %d", len(docs))
	}
}

func TestLoad_RejectsUnsupportedEncoding(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	l := NewLoader(config.Input{FileType: config.FileTypeText, FilePattern: `.*`, Encoding: "shift-jis"})
	if _, err := l.Load(ctx, s); err == nil {
		t.Fatal("expected unsupported encoding to fail with a configuration error")
	}
}
