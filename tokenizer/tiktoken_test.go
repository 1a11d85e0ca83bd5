package tokenizer

import (
	"context"
	"testing"
)

func TestRegistry_CachesByName(t *testing.T) {
	r := NewRegistry()
	tok1, err := r.Tokenizer(DefaultEncoding)
	if err != nil {
		t.Fatal(err)
	}
	tok2, err := r.Tokenizer(DefaultEncoding)
	if err != nil {
		t.Fatal(err)
	}
	if tok1 != tok2 {
		t.Fatal("expected cached tokenizer instance to be reused")
	}
}

func TestTiktoken_EncodeDecodeRoundTrip(t *testing.T) {
	r := NewRegistry()
	tok, err := r.Tokenizer(DefaultEncoding)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	ids, err := tok.Encode(ctx, "Alice met Bob at the conference.")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) == 0 {
		t.Fatal("expected non-empty token id sequence")
	}
	text, err := tok.Decode(ctx, ids)
	if err != nil {
		t.Fatal(err)
	}
	if text != "Alice met Bob at the conference." {
		t.Fatalf("round trip mismatch: %q", text)
	}
}

func TestRegistry_FallsBackToDefault(t *testing.T) {
	r := NewRegistry()
	tok, err := r.Tokenizer("totally-unknown-encoding-name")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tok.Count(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
}
