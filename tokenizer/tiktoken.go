package tokenizer

import (
	"context"

	"github.com/pkoukk/tiktoken-go"
)

var _ Tokenizer = (*Tiktoken)(nil)

// Tiktoken is a Tokenizer backed by the tiktoken-go BPE implementation.
type Tiktoken struct {
	name     string
	encoding *tiktoken.Tiktoken
}

// NewTiktoken wraps an already-resolved tiktoken-go encoding.
func NewTiktoken(name string, encoding *tiktoken.Tiktoken) *Tiktoken {
	return &Tiktoken{name: name, encoding: encoding}
}

func (t *Tiktoken) Encode(_ context.Context, text string) ([]int, error) {
	return t.encoding.Encode(text, nil, nil), nil
}

func (t *Tiktoken) Decode(_ context.Context, ids []int) (string, error) {
	return t.encoding.Decode(ids), nil
}

func (t *Tiktoken) Count(ctx context.Context, text string) (int, error) {
	ids, err := t.Encode(ctx, text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// resolve implements the three-step fallback chain from §4.2: try name as
// an explicit encoding, then as a model name, then fall back to
// DefaultEncoding.
func resolve(name string) (*tiktoken.Tiktoken, string, error) {
	if name == "" {
		name = DefaultEncoding
	}
	if enc, err := tiktoken.GetEncoding(name); err == nil {
		return enc, name, nil
	}
	if enc, err := tiktoken.EncodingForModel(name); err == nil {
		return enc, name, nil
	}
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, "", err
	}
	return enc, DefaultEncoding, nil
}
