// Package migrate holds one-time data normalization passes. The only pass so
// far rewrites meeting source lists into the categorized map form.
package migrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"civicat/internal/catalog/models"
)

// MeetingDocs is the raw-document surface of the store the migration needs.
// The pass works below the typed model on purpose: it has to read documents
// written before normalization existed.
type MeetingDocs interface {
	MeetingDocs() (map[string]json.RawMessage, error)
	WriteRawMeetingDoc(path string, doc any) error
}

// Sources rewrites every meeting document whose sources field is not yet in
// the categorized map form. It returns the rewritten paths in order; running
// it again is a no-op.
func Sources(store MeetingDocs, logger *slog.Logger) ([]string, error) {
	docs, err := store.MeetingDocs()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(docs))
	for path := range docs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	changed := []string{}
	for _, path := range paths {
		doc, err := parseDocument(docs[path])
		if err != nil {
			return changed, fmt.Errorf("decode %s: %w", path, err)
		}

		current := doc.get("sources")
		normalized, err := normalizeRawSources(current)
		if err != nil {
			return changed, fmt.Errorf("normalize sources in %s: %w", path, err)
		}
		if jsonEqual(current, normalized) {
			continue
		}

		doc.set("sources", normalized)
		if err := store.WriteRawMeetingDoc(path, doc); err != nil {
			return changed, err
		}
		changed = append(changed, path)
		logger.Info("migrated meeting sources", "path", path)
	}
	return changed, nil
}

// normalizeRawSources funnels whatever shape the document carries (list, map,
// missing) through the typed normalization and returns the map form encoded.
func normalizeRawSources(raw json.RawMessage) (json.RawMessage, error) {
	var list models.SourceList
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	}
	return json.Marshal(models.NormalizeSources(list))
}

// jsonEqual compares two encoded values structurally, ignoring formatting
// and object key order.
func jsonEqual(a, b json.RawMessage) bool {
	if a == nil || b == nil {
		return len(a) == 0 && len(b) == 0
	}
	var av, bv any
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}

// document is a JSON object that remembers its top-level key order, so a
// migration changing one field does not reshuffle the rest of the file.
type document struct {
	keys   []string
	fields map[string]json.RawMessage
}

func parseDocument(raw []byte) (*document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	doc := &document{fields: map[string]json.RawMessage{}}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if _, seen := doc.fields[key]; !seen {
			doc.keys = append(doc.keys, key)
		}
		doc.fields[key] = value
	}
	return doc, nil
}

func (d *document) get(key string) json.RawMessage { return d.fields[key] }

func (d *document) set(key string, value json.RawMessage) {
	if _, seen := d.fields[key]; !seen {
		d.keys = append(d.keys, key)
	}
	d.fields[key] = value
}

func (d *document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(d.fields[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
