// Package formats reconciles the mutually incompatible input shapes accepted
// by competing form-generation libraries into one canonical
// schema/layout/data/hints set. Nothing here raises errors: absent or
// unrecognizable inputs degrade to the documented defaults.
package formats

import "github.com/goliatone/go-formbridge/pkg/schema"

// Input carries the raw, optional inputs a caller can supply. Each facet may
// arrive directly or nested inside Combined following one of the supported
// conventions.
type Input struct {
	Schema   any
	Layout   any
	Data     any
	UIHints  any
	Combined any
}

// Normalized is the canonical reconciliation of an Input.
type Normalized struct {
	Schema     map[string]any
	Layout     []any
	Data       map[string]any
	UIHints    map[string]any
	Convention Convention
}

// Empty reports whether no usable schema, layout field, or data was found.
func (n Normalized) Empty() bool {
	return len(n.Schema) == 0 && len(n.Data) == 0 && !layoutHasFields(n.Layout)
}

// DefaultLayout is the layout used when no layout input is supplied: every
// schema field in order, followed by a submit control.
func DefaultLayout() []any {
	return []any{"*", map[string]any{"type": "submit", "title": "Submit"}}
}

// Normalize applies the per-facet precedence rules and canonicalization
// quirks. The result owns deep copies; callers may mutate it freely.
func Normalize(input Input) Normalized {
	out := Normalized{Convention: detectConvention(input.Combined)}

	if raw, ok := firstMatch(schemaRules, input); ok {
		out.Schema = canonicalizeSchema(raw)
	}
	if raw, ok := firstMatch(layoutRules, input); ok {
		if list, ok := raw.([]any); ok {
			out.Layout = schema.CloneTree(list).([]any)
		}
	}
	if out.Layout == nil {
		out.Layout = DefaultLayout()
	}
	if raw, ok := firstMatch(dataRules, input); ok {
		if m, ok := raw.(map[string]any); ok {
			out.Data = schema.CloneTree(m).(map[string]any)
		}
	}
	if raw, ok := firstMatch(hintRules, input); ok {
		if m, ok := raw.(map[string]any); ok {
			out.UIHints = schema.CloneTree(m).(map[string]any)
		}
	}

	return out
}

// canonicalizeSchema applies the legacy-shorthand quirks: an object with
// properties but no type becomes type "object"; a value with no proper
// type+properties pairing at all is wrapped as a flat properties bag.
func canonicalizeSchema(raw any) map[string]any {
	payload, ok := raw.(map[string]any)
	if !ok || len(payload) == 0 {
		return nil
	}
	cloned := schema.CloneTree(payload).(map[string]any)

	_, hasProps := cloned["properties"].(map[string]any)
	typ, _ := cloned["type"].(string)

	if typ == "" && hasProps {
		cloned["type"] = "object"
		return cloned
	}
	if typ == "object" && hasProps {
		return cloned
	}
	if typ != "" && !hasProps {
		// A typed root without properties (e.g. {type:"string"}) is kept
		// as-is; it is a degenerate but legal schema.
		return cloned
	}
	return map[string]any{"type": "object", "properties": cloned}
}

func layoutHasFields(layout []any) bool {
	for _, entry := range layout {
		switch typed := entry.(type) {
		case string:
			if typed != "" && typed != "*" {
				return true
			}
		case map[string]any:
			if key, _ := typed["key"].(string); key != "" {
				return true
			}
			if items, ok := typed["items"].([]any); ok && layoutHasFields(items) {
				return true
			}
		}
	}
	return false
}
