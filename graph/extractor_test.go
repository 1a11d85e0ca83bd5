package graph

import (
	"context"
	"sync"
	"testing"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/model"
	"github.com/tangerg/graphrag/textunit"
)

// scriptedChatClient replies with a canned response looked up by the
// user-prompt's containing text, so tests can script per-unit outputs
// without depending on call order under bounded parallel fan-out.
type scriptedChatClient struct {
	mu        sync.Mutex
	responses map[string]string
}

func (c *scriptedChatClient) Chat(_ context.Context, messages []model.Message) (*model.ChatResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	user := messages[len(messages)-1].Content
	for needle, resp := range c.responses {
		if contains(user, needle) {
			return &model.ChatResult{Content: resp}, nil
		}
	}
	return &model.ChatResult{Content: `{"entities":[],"relationships":[]}`}, nil
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func TestExtractor_AggregatesAcrossTextUnits(t *testing.T) {
	units := []textunit.TextUnit{
		{ID: "unit-1", Text: "Alice and Bob talk shop."},
		{ID: "unit-2", Text: "Alice meets Charlie."},
	}
	client := &scriptedChatClient{responses: map[string]string{
		"Alice and Bob talk shop.": `{
			"entities": [{"title":"Alice","type":"person","description":"","confidence":0.9},
			             {"title":"Bob","type":"person","description":"","confidence":0.6}],
			"relationships": [{"source":"Alice","target":"Bob","weight":0.1}]
		}`,
		"Alice meets Charlie.": `{
			"entities": [{"title":"Alice","type":"person","description":"","confidence":0.8},
			             {"title":"Charlie","type":"person","description":"","confidence":0.7}],
			"relationships": []
		}`,
	}}

	ex := NewExtractor(config.ExtractGraph{EntityTypes: []string{"person"}}, client, nil)
	entities, relationships, err := ex.Extract(context.Background(), units, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 3 {
		t.Fatalf("expected 3 aggregated entities, got %d: %+v", len(entities), entities)
	}
	if len(relationships) != 1 {
		t.Fatalf("expected 1 aggregated relationship, got %d: %+v", len(relationships), relationships)
	}
	if relationships[0].Weight < 0.09 || relationships[0].Weight > 0.11 {
		t.Fatalf("expected mean weight ~0.1, got %f", relationships[0].Weight)
	}
}

func TestExtractor_SkipsUnitsOnParseFailure(t *testing.T) {
	units := []textunit.TextUnit{{ID: "unit-1", Text: "broken"}}
	client := &scriptedChatClient{responses: map[string]string{"broken": "not json"}}

	ex := NewExtractor(config.ExtractGraph{}, client, nil)
	entities, relationships, err := ex.Extract(context.Background(), units, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 0 || len(relationships) != 0 {
		t.Fatalf("expected parse failure to be skipped with no contribution, got %+v %+v", entities, relationships)
	}
}

// sequentialChatClient replies with its scripted responses in call order,
// for tests that need to distinguish a gleaning follow-up call from the
// initial extraction call.
type sequentialChatClient struct {
	mu        sync.Mutex
	responses []string
	calls     int
}

func (c *sequentialChatClient) Chat(_ context.Context, _ []model.Message) (*model.ChatResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls >= len(c.responses) {
		return &model.ChatResult{Content: `{"entities":[],"relationships":[]}`}, nil
	}
	resp := c.responses[c.calls]
	c.calls++
	return &model.ChatResult{Content: resp}, nil
}

func TestExtractor_GleaningMergesFollowUpPasses(t *testing.T) {
	units := []textunit.TextUnit{{ID: "unit-1", Text: "Alice and Bob talk, Charlie listens."}}
	client := &sequentialChatClient{responses: []string{
		`{"entities":[{"title":"Alice","type":"person"}],"relationships":[]}`,
		`{"entities":[{"title":"Bob","type":"person"}],"relationships":[{"source":"Alice","target":"Bob","weight":1}]}`,
	}}

	ex := NewExtractor(config.ExtractGraph{EntityTypes: []string{"person"}, MaxGleanings: 1}, client, nil)
	entities, relationships, err := ex.Extract(context.Background(), units, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 2 {
		t.Fatalf("expected the gleaning pass's entity to be merged in, got %+v", entities)
	}
	if len(relationships) != 1 {
		t.Fatalf("expected the gleaning pass's relationship to be merged in, got %+v", relationships)
	}
	if client.calls != 2 {
		t.Fatalf("expected exactly one initial call plus one gleaning call, got %d calls", client.calls)
	}
}

func TestExtractor_GleaningStopsEarlyWhenPassFindsNothingNew(t *testing.T) {
	units := []textunit.TextUnit{{ID: "unit-1", Text: "Alice works alone."}}
	client := &sequentialChatClient{responses: []string{
		`{"entities":[{"title":"Alice","type":"person"}],"relationships":[]}`,
		`{"entities":[],"relationships":[]}`,
		`{"entities":[{"title":"ShouldNotAppear","type":"person"}],"relationships":[]}`,
	}}

	ex := NewExtractor(config.ExtractGraph{EntityTypes: []string{"person"}, MaxGleanings: 2}, client, nil)
	entities, _, err := ex.Extract(context.Background(), units, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 1 {
		t.Fatalf("expected gleaning to stop after an empty pass, got %+v", entities)
	}
	if client.calls != 2 {
		t.Fatalf("expected gleaning to stop after the empty second call instead of using the configured max of 2, got %d calls", client.calls)
	}
}

func TestExtractor_FiltersEntityTypesNotInConfiguredList(t *testing.T) {
	units := []textunit.TextUnit{{ID: "unit-1", Text: "x"}}
	client := &scriptedChatClient{responses: map[string]string{
		"x": `{"entities":[{"title":"Acme","type":"organization"},{"title":"Alice","type":"person"}],"relationships":[]}`,
	}}
	ex := NewExtractor(config.ExtractGraph{EntityTypes: []string{"person"}}, client, nil)
	entities, _, err := ex.Extract(context.Background(), units, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entities) != 1 || entities[0].Title != "Alice" {
		t.Fatalf("expected only the person-typed entity to survive, got %+v", entities)
	}
}
