package textunit

import (
	"context"
	"fmt"
	"strings"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/document"
	"github.com/tangerg/graphrag/hash"
	"github.com/tangerg/graphrag/pipelineerr"
	"github.com/tangerg/graphrag/tokenizer"
	"github.com/tangerg/graphrag/xkv"
)

// ChunkDocument tokenizes doc.Text with tok and slices it into TextUnits
// per §4.6: each chunk's token count ≤ cfg.Size, with a sliding overlap of
// exactly cfg.Overlap tokens between consecutive chunks of the same
// document. When a metadata block is prepended and
// cfg.ChunkSizeIncludesMetadata is false, only the body is bounded by
// cfg.Size and the full chunk may exceed it. Empty or whitespace-only
// chunks are discarded.
func ChunkDocument(ctx context.Context, doc document.Document, cfg config.Chunks, tok tokenizer.Tokenizer) ([]TextUnit, error) {
	tokens, err := tok.Encode(ctx, doc.Text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	metaBlock := ""
	if cfg.PrependMetadata {
		metaBlock = renderMetadataBlock(doc.Metadata)
	}

	bodySize := cfg.Size
	if cfg.PrependMetadata && cfg.ChunkSizeIncludesMetadata && metaBlock != "" {
		metaTokens, err := tok.Encode(ctx, metaBlock)
		if err != nil {
			return nil, err
		}
		if len(metaTokens) >= cfg.Size {
			return nil, pipelineerr.Configuration(
				fmt.Sprintf("metadata block (%d tokens) >= chunks.size (%d) for document %s", len(metaTokens), cfg.Size, doc.ID))
		}
		bodySize = cfg.Size - len(metaTokens)
	}

	windows := slidingWindows(tokens, bodySize, cfg.Overlap)

	units := make([]TextUnit, 0, len(windows))
	for _, w := range windows {
		bodyText, err := tok.Decode(ctx, w)
		if err != nil {
			return nil, err
		}
		text := bodyText
		if cfg.PrependMetadata && metaBlock != "" {
			text = metaBlock + bodyText
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		id := hash.Hash(hash.Of("document", doc.ID), hash.Of("text", text))
		tokenCount := len(w)
		if cfg.PrependMetadata && !cfg.ChunkSizeIncludesMetadata && metaBlock != "" {
			count, err := tok.Count(ctx, text)
			if err != nil {
				return nil, err
			}
			tokenCount = count
		}
		units = append(units, TextUnit{
			ID:          id,
			Text:        text,
			TokenCount:  tokenCount,
			DocumentIds: []string{doc.ID},
		})
	}
	return units, nil
}

// slidingWindows slices tokens into windows of at most size tokens, each
// consecutive pair overlapping by exactly overlap tokens, covering every
// token exactly once when the overlap is subtracted back out (§8,
// Testable Property 2).
func slidingWindows(tokens []int, size, overlap int) [][]int {
	if size <= 0 {
		size = len(tokens)
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}
	var windows [][]int
	for start := 0; start < len(tokens); start += step {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		w := make([]int, end-start)
		copy(w, tokens[start:end])
		windows = append(windows, w)
		if end == len(tokens) {
			break
		}
	}
	return windows
}

// renderMetadataBlock renders a document's metadata as "key: value.\n" per
// entry in insertion order, skipping null values (§4.6).
func renderMetadataBlock(metadata *xkv.OrderedMap) string {
	if metadata == nil {
		return ""
	}
	var sb strings.Builder
	for _, e := range metadata.Entries() {
		if e.Value == nil {
			continue
		}
		fmt.Fprintf(&sb, "%s: %v.\n", e.Key, e.Value)
	}
	return sb.String()
}
