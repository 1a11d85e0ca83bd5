package config

// Chunks configures C6, the token-accurate chunker.
type Chunks struct {
	// Size is the maximum token count per chunk.
	Size int
	// Overlap is the exact sliding-window overlap, in tokens, between
	// consecutive chunks of the same document.
	Overlap int
	// GroupByColumns names input columns to group rows by before
	// chunking. textunit.ChunkDocument does not read it: every document
	// is chunked independently whatever its value.
	GroupByColumns []string
	// Strategy selects the chunking strategy. Only "tokens" is
	// implemented; see ChunkStrategy.
	Strategy ChunkStrategy
	// EncodingModel names the tokenizer registry entry used to measure
	// and slice chunks. Empty means DefaultEncoding.
	EncodingModel string
	// PrependMetadata renders the document's metadata as a text block and
	// prepends it to every chunk's text.
	PrependMetadata bool
	// ChunkSizeIncludesMetadata controls whether the prepended metadata
	// block counts against Size (true) or is added on top of a full-size
	// body chunk (false). See textunit/chunker.go for the two code paths.
	ChunkSizeIncludesMetadata bool
}

// DefaultChunks returns the chunker defaults: 300-token chunks with 100
// tokens of overlap, tokens strategy, no metadata prepending.
func DefaultChunks() Chunks {
	return Chunks{
		Size:                      300,
		Overlap:                   100,
		Strategy:                  ChunkStrategyTokens,
		EncodingModel:             defaultEncodingModel,
		PrependMetadata:           false,
		ChunkSizeIncludesMetadata: false,
	}
}
