package schema

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document wraps a raw input payload and its origin. Payloads may be JSON or
// YAML; Decode handles both since YAML is a superset of JSON.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Decode parses the payload into a generic value. YAML decoding produces
// map[string]any for mappings, so JSON and YAML inputs land in the same shape.
func (d Document) Decode() (any, error) {
	if len(d.raw) == 0 {
		return nil, errors.New("schema: raw document is empty")
	}
	var out any
	if err := yaml.Unmarshal(d.raw, &out); err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", d.Location(), err)
	}
	return normalizeDecoded(out), nil
}

// normalizeDecoded rewrites yaml.v3 map[any]any containers (emitted for
// non-string keys) into map[string]any so downstream tree walks see one shape.
func normalizeDecoded(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, val := range typed {
			typed[key] = normalizeDecoded(val)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[fmt.Sprintf("%v", key)] = normalizeDecoded(val)
		}
		return out
	case []any:
		for idx, val := range typed {
			typed[idx] = normalizeDecoded(val)
		}
		return typed
	default:
		return typed
	}
}
