// Package input implements C5: file discovery through storage.Storage and
// decoding into document.Document records with stable, content-derived
// ids.
package input

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tangerg/graphrag/config"
	"github.com/tangerg/graphrag/document"
	"github.com/tangerg/graphrag/pipelineerr"
	"github.com/tangerg/graphrag/storage"
	"github.com/tangerg/graphrag/xkv"
)

// Loader discovers and decodes input documents per a config.Input.
type Loader struct {
	cfg config.Input
}

// NewLoader builds a Loader bound to cfg.
func NewLoader(cfg config.Input) *Loader {
	return &Loader{cfg: cfg}
}

// Load discovers every file under s matching the configured file_pattern
// and decodes each into one or more Documents, per §4.5.
func (l *Loader) Load(ctx context.Context, s storage.Storage) ([]document.Document, error) {
	if l.cfg.Encoding != "" && !strings.EqualFold(l.cfg.Encoding, "utf-8") && !strings.EqualFold(l.cfg.Encoding, "utf8") {
		return nil, pipelineerr.Configuration("unsupported input.encoding: " + l.cfg.Encoding)
	}

	var docs []document.Document
	var findErr error
	s.Find(ctx, l.cfg.FilePattern, storage.FindOptions{Filter: l.cfg.FileFilter})(func(r storage.FindResult, err error) bool {
		if err != nil {
			findErr = err
			return false
		}
		if ctx.Err() != nil {
			findErr = pipelineerr.Cancelled(ctx.Err().Error())
			return false
		}
		rc, err := s.Get(ctx, r.Path)
		if err != nil {
			findErr = err
			return false
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			findErr = err
			return false
		}

		var decoded []document.Document
		switch l.cfg.FileType {
		case config.FileTypeCSV:
			decoded, err = l.decodeCSV(r.Path, raw)
		case config.FileTypeJSON:
			decoded, err = l.decodeJSON(r.Path, raw)
		default:
			decoded, err = l.decodeText(r.Path, raw)
		}
		if err != nil {
			findErr = err
			return false
		}
		docs = append(docs, decoded...)
		return true
	})
	if findErr != nil {
		return nil, findErr
	}
	return docs, nil
}

// decodeText implements §4.5 "Text": whole file contents become text;
// title = basename.
func (l *Loader) decodeText(filePath string, raw []byte) ([]document.Document, error) {
	text := string(raw)
	meta := metadataFor(l.cfg.Metadata, nil)
	return []document.Document{{
		ID:       document.HashID(filePath, text, meta),
		Title:    path.Base(filePath),
		Text:     text,
		Metadata: meta,
	}}, nil
}

// decodeCSV implements §4.5 "CSV": first row is header, each subsequent
// row becomes a Document.
func (l *Loader) decodeCSV(filePath string, raw []byte) ([]document.Document, error) {
	r := csv.NewReader(strings.NewReader(string(raw)))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv %s: %w", filePath, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	docs := make([]document.Document, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields := xkv.NewOrderedMap()
		for i, col := range header {
			if i < len(row) {
				fields.Set(col, row[i])
			}
		}
		text := columnOr(fields, l.cfg.TextColumn, strings.Join(row, " "))
		title := columnOr(fields, l.cfg.TitleColumn, path.Base(filePath))
		meta := metadataFor(l.cfg.Metadata, fields)
		docs = append(docs, document.Document{
			ID:       document.HashIDFields(fields, text),
			Title:    title,
			Text:     text,
			Metadata: meta,
		})
	}
	return docs, nil
}

// decodeJSON implements §4.5 "JSON": array root yields one Document per
// element, object root yields one Document, parse failure falls back to
// JSON-lines.
func (l *Loader) decodeJSON(filePath string, raw []byte) ([]document.Document, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	tok, err := dec.Token()
	if err != nil {
		return l.decodeJSONLines(filePath, raw)
	}
	switch delim, _ := tok.(json.Delim); delim {
	case '[':
		var docs []document.Document
		for dec.More() {
			fields, err := decodeOrderedObject(dec)
			if err != nil {
				return nil, fmt.Errorf("decode json %s: %w", filePath, err)
			}
			if fields != nil {
				docs = append(docs, l.jsonFieldsToDocument(filePath, fields))
			}
		}
		return docs, nil
	case '{':
		fields, err := decodeOrderedObjectBody(dec)
		if err != nil {
			return nil, fmt.Errorf("decode json %s: %w", filePath, err)
		}
		if dec.More() {
			// More values follow the first object, so the file as a whole
			// is not a single JSON document: read it as JSON-lines.
			return l.decodeJSONLines(filePath, raw)
		}
		return []document.Document{l.jsonFieldsToDocument(filePath, fields)}, nil
	default:
		return l.decodeJSONLines(filePath, raw)
	}
}

func (l *Loader) decodeJSONLines(filePath string, raw []byte) ([]document.Document, error) {
	var docs []document.Document
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(line))
		fields, err := decodeOrderedObject(dec)
		if err != nil {
			return nil, fmt.Errorf("decode json-lines %s: %w", filePath, err)
		}
		docs = append(docs, l.jsonFieldsToDocument(filePath, fields))
	}
	return docs, nil
}

// decodeOrderedObject reads the next JSON value from dec, which must be an
// object, preserving its top-level key order — required by the hash
// contract (§4.5 "JSON": "every top-level key/value pair in document
// order"), which encoding/json's map[string]any decoding cannot satisfy
// since Go map iteration order is randomized.
func decodeOrderedObject(dec *json.Decoder) (*xkv.OrderedMap, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, nil
	}
	return decodeOrderedObjectBody(dec)
}

func decodeOrderedObjectBody(dec *json.Decoder) (*xkv.OrderedMap, error) {
	fields := xkv.NewOrderedMap()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

func (l *Loader) jsonFieldsToDocument(filePath string, fields *xkv.OrderedMap) document.Document {
	text := ""
	if l.cfg.TextColumn != "" {
		if v, ok := fields.Get(l.cfg.TextColumn); ok {
			text = fmt.Sprint(v)
		}
	}
	title := path.Base(filePath)
	if l.cfg.TitleColumn != "" {
		if v, ok := fields.Get(l.cfg.TitleColumn); ok {
			title = fmt.Sprint(v)
		}
	}
	return document.Document{
		ID:       document.HashIDFields(fields, text),
		Title:    title,
		Text:     text,
		Metadata: metadataFor(l.cfg.Metadata, fields),
	}
}

func columnOr(fields *xkv.OrderedMap, column, fallback string) string {
	if column == "" {
		return fallback
	}
	if v, ok := fields.Get(column); ok {
		return fmt.Sprint(v)
	}
	return fallback
}

func metadataFor(keys []string, fields *xkv.OrderedMap) *xkv.OrderedMap {
	if len(keys) == 0 || fields == nil {
		return nil
	}
	meta := xkv.NewOrderedMap()
	for _, k := range keys {
		if v, ok := fields.Get(k); ok {
			meta.Set(k, v)
		}
	}
	return meta
}
