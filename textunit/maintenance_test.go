package textunit

import (
	"context"
	"testing"

	"github.com/tangerg/graphrag/config"
)

// fakeEmbedder returns a fixed vector per input text, looked up by exact
// text match, so tests can script which units collapse together.
type fakeEmbedder struct {
	vectors map[string][]float64
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = f.vectors[t]
	}
	return out, nil
}

func TestMaintain_CapsPerUnitTokens(t *testing.T) {
	units := []TextUnit{
		{ID: "a", Text: "a", TokenCount: 40, DocumentIds: []string{"doc-1"}},
		{ID: "b", Text: "b", TokenCount: 60, DocumentIds: []string{"doc-1"}},
	}
	cfg := config.Heuristics{MaxTokensPerTextUnit: 50}
	out, err := Maintain(context.Background(), units, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "a" {
		t.Fatalf("expected only unit a to survive the token cap, got %+v", out)
	}
}

func TestMaintain_EnforcesPerDocumentBudget(t *testing.T) {
	units := []TextUnit{
		{ID: "a", Text: "a", TokenCount: 40, DocumentIds: []string{"doc-1"}},
		{ID: "b", Text: "b", TokenCount: 30, DocumentIds: []string{"doc-1"}},
		{ID: "c", Text: "c", TokenCount: 30, DocumentIds: []string{"doc-1"}},
	}
	cfg := config.Heuristics{MaxDocumentTokenBudget: 80}
	out, err := Maintain(context.Background(), units, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected budget to admit exactly 2 units (40+30=70<=80), got %d: %+v", len(out), out)
	}
}

func TestMaintain_SemanticDeduplicationMergesCluster(t *testing.T) {
	units := []TextUnit{
		{ID: "a", Text: "Alpha Beta", TokenCount: 40, DocumentIds: []string{"doc-1"}},
		{ID: "b", Text: "Gamma Delta", TokenCount: 30, DocumentIds: []string{"doc-1"}},
		{ID: "d", Text: "Alpha Beta 2", TokenCount: 35, DocumentIds: []string{"doc-2"}},
	}
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		"Alpha Beta":   {1, 0, 0},
		"Gamma Delta":  {0, 1, 0},
		"Alpha Beta 2": {0.99, 0.01, 0},
	}}
	cfg := config.Heuristics{EnableSemanticDeduplication: true, SemanticDeduplicationThreshold: 0.9}

	out, err := Maintain(context.Background(), units, cfg, embedder)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 surviving units after dedup, got %d: %+v", len(out), out)
	}
	survivor := out[0]
	if survivor.ID != "a" {
		t.Fatalf("expected lexicographically smallest id 'a' to survive, got %q", survivor.ID)
	}
	if len(survivor.DocumentIds) != 2 {
		t.Fatalf("expected survivor to inherit both document ids, got %v", survivor.DocumentIds)
	}
}

func TestMaintain_NoopWhenHeuristicsDisabled(t *testing.T) {
	units := []TextUnit{
		{ID: "a", Text: "a", TokenCount: 1000, DocumentIds: []string{"doc-1"}},
	}
	out, err := Maintain(context.Background(), units, config.Heuristics{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected units to pass through unchanged, got %d", len(out))
	}
}
