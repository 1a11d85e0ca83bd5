// Package tokenizer provides text <-> token-id conversion and token
// counting for the chunker (C6).
package tokenizer

import "context"

// DefaultEncoding is the encoding name used when config leaves
// chunks.encoding_model unset. Tests only fix this constant, not the
// underlying tokenizer implementation.
const DefaultEncoding = "cl100k_base"

// Encoder converts text into a sequence of token ids.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]int, error)
}

// Decoder converts a sequence of token ids back into text.
type Decoder interface {
	Decode(ctx context.Context, ids []int) (string, error)
}

// Counter reports the number of tokens a piece of text would encode to,
// without necessarily materializing the id sequence.
type Counter interface {
	Count(ctx context.Context, text string) (int, error)
}

// Tokenizer combines encode, decode and count for one named encoding.
type Tokenizer interface {
	Encoder
	Decoder
	Counter
}
