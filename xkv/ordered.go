// Package xkv provides an insertion-order-preserving string-keyed map.
// Document metadata must iterate in insertion order because the hash
// contract (hash.Hash) folds metadata key/value pairs in that order, and
// the result must be bit-identical across runs.
package xkv

import (
	"bytes"
	"encoding/json"
)

// OrderedMap is a map[string]any that remembers the order keys were first
// inserted and replays that order on iteration and JSON marshaling.
type OrderedMap struct {
	values map[string]any
	keys   []string
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]any)}
}

// Set inserts or updates key. Updating an existing key does not change its
// position in the iteration order.
func (m *OrderedMap) Set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// Entries returns the key/value pairs in insertion order.
func (m *OrderedMap) Entries() []Entry {
	out := make([]Entry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Entry{Key: k, Value: m.values[k]})
	}
	return out
}

// Entry is one key/value pair, returned by Entries in insertion order.
type Entry struct {
	Key   string
	Value any
}

// MarshalJSON renders the map as a JSON object with keys in insertion
// order. Go's encoding/json does not guarantee key order for map[string]any,
// which is why this type exists at all.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	if m == nil || len(m.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the map, preserving the order
// keys appear in the source document.
func (m *OrderedMap) UnmarshalJSON(data []byte) error {
	m.values = make(map[string]any)
	m.keys = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		m.Set(key, value)
	}
	return nil
}
