package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errNotObject = errors.New("expected a JSON object")

// Document is a JSON object that keeps its key order across edits. It is
// used when the setup wizard rewrites the manifest.
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// ParseDocument decodes a JSON object preserving key order.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	doc := &Document{values: map[string]json.RawMessage{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse value of %q: %w", key, err)
		}
		if _, seen := doc.values[key]; !seen {
			doc.keys = append(doc.keys, key)
		}
		doc.values[key] = raw
	}
	return doc, nil
}

// LoadDocument reads dir/package.json as a Document.
func LoadDocument(dir string) (*Document, error) {
	path := filepath.Join(dir, FileName)
	// #nosec G304 - the manifest path is derived from the working directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseDocument(data)
}

// Keys returns the keys in document order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Get decodes the value of key into v. It reports whether key exists.
func (d *Document) Get(key string, v any) (bool, error) {
	raw, ok := d.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// Set stores v under key. New keys are appended, existing keys keep their
// position.
func (d *Document) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = raw
	return nil
}

// SetScript sets scripts[name], creating the scripts object when absent.
func (d *Document) SetScript(name, command string) error {
	scripts := &Document{values: map[string]json.RawMessage{}}
	if raw, ok := d.values["scripts"]; ok {
		parsed, err := ParseDocument(raw)
		if err != nil {
			return fmt.Errorf("invalid scripts field: %w", err)
		}
		scripts = parsed
	}
	if err := scripts.Set(name, command); err != nil {
		return err
	}
	return d.Set("scripts", scripts)
}

// MarshalJSON implements json.Marshaler, writing keys in document order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(d.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode renders the document with 2-space indentation and a trailing
// newline.
func (d *Document) Encode() ([]byte, error) {
	compact, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Save writes the document to dir/package.json.
func (d *Document) Save(dir string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // package.json is world-readable
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
