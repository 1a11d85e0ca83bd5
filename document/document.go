// Package document defines the Document record (§3) produced by C5 and
// back-linked by C12, and the content-addressed id rule shared by both.
package document

import (
	"github.com/tangerg/graphrag/hash"
	"github.com/tangerg/graphrag/xkv"
)

// Document is a single source record: a whole text file, one CSV row, or
// one JSON object, depending on input.file_type.
type Document struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Text            string          `json:"text"`
	CreationDate    string          `json:"creation_date,omitempty"`
	Metadata        *xkv.OrderedMap `json:"metadata,omitempty"`
	TextUnitIds     []string        `json:"text_unit_ids,omitempty"`
	HumanReadableID int             `json:"human_readable_id"`
}

// HashID computes the stable id for a document sourced from a plain text
// file: ("path", path), ("text", text), then each metadata entry in
// insertion order — §4.5 "Text".
func HashID(path, text string, metadata *xkv.OrderedMap) string {
	pairs := []hash.Pair{hash.Of("path", path), hash.Of("text", text)}
	pairs = append(pairs, metadataPairs(metadata)...)
	return hash.Hash(pairs...)
}

// HashIDFields computes the stable id for a document sourced from a CSV
// row or JSON object whose identity is the full field set rather than a
// file path — §4.5 "CSV"/"JSON": every header/value or key/value pair in
// document order, then ("text", text).
func HashIDFields(fields *xkv.OrderedMap, text string) string {
	pairs := metadataPairs(fields)
	pairs = append(pairs, hash.Of("text", text))
	return hash.Hash(pairs...)
}

func metadataPairs(metadata *xkv.OrderedMap) []hash.Pair {
	if metadata == nil {
		return nil
	}
	entries := metadata.Entries()
	pairs := make([]hash.Pair, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, hash.Of(e.Key, e.Value))
	}
	return pairs
}
