package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// tableKey is the table-name-to-storage-key convention from §4.1: table X
// lives under key "X.json" as a JSON array of records.
func tableKey(name string) string {
	return name + ".json"
}

// HasTable reports whether table exists on s. pipeline.Runner does not
// use it; its resume check reads completion markers instead.
func HasTable(ctx context.Context, s Storage, name string) (bool, error) {
	return s.Has(ctx, tableKey(name))
}

// LoadTable decodes table name from s into a freshly allocated []T, one
// element per array entry, using encoding/json (unknown fields are
// ignored, type mismatches fail). Callers that need tolerant decoding of
// externally-produced JSON (e.g. C8's LLM output) use gjson directly
// instead of this helper, which is reserved for pipeline-internal
// round-tripping where the schema is always ours.
func LoadTable[T any](ctx context.Context, s Storage, name string) ([]T, error) {
	r, err := s.Get(ctx, tableKey(name))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var rows []T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode table %s: %w", name, err)
	}
	return rows, nil
}

// WriteTable encodes rows as a JSON array and writes it to table name on s.
func WriteTable[T any](ctx context.Context, s Storage, name string, rows []T) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode table %s: %w", name, err)
	}
	return s.Set(ctx, tableKey(name), &buf)
}

// RawField reads a single field (a gjson path) out of a table row's raw
// JSON without unmarshalling the whole record. No pipeline stage calls it;
// the C8 extractor reads LLM output with gjson directly.
func RawField(raw []byte, path string) gjson.Result {
	return gjson.GetBytes(raw, path)
}
