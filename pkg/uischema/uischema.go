// Package uischema parses alternate-dialect UI hint documents and merges them
// into the resolved schema as vendor-extension annotations. Hints never
// overwrite values already present at their target (first-writer-wins), and
// hints addressing unknown schema nodes are ignored so superset documents
// remain harmless.
package uischema

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbridge/pkg/schema"
)

// ExtensionKey is the vendor bag hint values are copied into.
const ExtensionKey = "x-ui"

// Hints maps a schema pointer to the hint values addressed at that node.
// Hint keys keep their dialect form with the "ui:" prefix stripped
// ("ui:widget" becomes "widget").
type Hints map[string]map[string]any

var htmlPolicy = bluemonday.UGCPolicy()

// hintKeysWithHTML lists hint keys whose values may carry markup and are
// sanitized on parse.
var hintKeysWithHTML = map[string]struct{}{
	"help":        {},
	"description": {},
}

// Parse converts a raw UI hint document into pointer-keyed hints. It accepts
// the nested convention (field names as nesting, "ui:*" keys as hints) and
// the flat legacy convention (field paths as keys, hint objects as values).
func Parse(raw map[string]any) Hints {
	hints := make(Hints)
	parseInto(raw, "", hints)
	if len(hints) == 0 {
		return nil
	}
	return hints
}

func parseInto(node map[string]any, pointer string, hints Hints) {
	for key, value := range node {
		switch {
		case strings.HasPrefix(key, "ui:"):
			addHint(hints, pointer, strings.TrimPrefix(key, "ui:"), value)
		case key == "items" || key == "[]":
			if child, ok := value.(map[string]any); ok {
				parseInto(child, pointer+"/items", hints)
			}
		default:
			child, ok := value.(map[string]any)
			if !ok {
				// Flat legacy documents allow a bare control name as the
				// value: {"bio": "textarea"}.
				if str, isStr := value.(string); isStr && str != "" {
					addHint(hints, translateFieldPath(pointer, key), "widget", str)
				}
				continue
			}
			parseInto(child, translateFieldPath(pointer, key), hints)
		}
	}
}

// translateFieldPath appends a (possibly dotted) field path to a schema
// pointer, inserting the /properties hops the schema tree requires.
func translateFieldPath(pointer, field string) string {
	out := pointer
	for _, segment := range strings.Split(field, ".") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if segment == "items" || segment == "[]" {
			out += "/items"
			continue
		}
		out = schema.JoinPointer(out+"/properties", segment)
	}
	return out
}

func addHint(hints Hints, pointer, key string, value any) {
	if key == "" {
		return
	}
	if str, ok := value.(string); ok {
		if _, sanitize := hintKeysWithHTML[key]; sanitize {
			value = htmlPolicy.Sanitize(str)
		}
	}
	bucket, ok := hints[pointer]
	if !ok {
		bucket = make(map[string]any)
		hints[pointer] = bucket
	}
	if _, exists := bucket[key]; !exists {
		bucket[key] = value
	}
}

// Apply copies hints into the x-ui extension bag of their target schema
// nodes. Existing bag entries win; hints for pointers that do not resolve are
// skipped.
func (h Hints) Apply(root map[string]any) {
	if len(h) == 0 || root == nil {
		return
	}
	for pointer, values := range h {
		target, ok := schema.GetPointer(root, pointer)
		if !ok {
			continue
		}
		node, ok := target.(map[string]any)
		if !ok {
			continue
		}
		bag, _ := node[ExtensionKey].(map[string]any)
		if bag == nil {
			bag = make(map[string]any, len(values))
			node[ExtensionKey] = bag
		}
		for key, value := range values {
			if _, exists := bag[key]; exists {
				continue
			}
			bag[key] = value
		}
	}
}

// Merge layers additional hints on top of h without overwriting entries that
// are already present.
func (h Hints) Merge(extra Hints) Hints {
	if len(extra) == 0 {
		return h
	}
	if h == nil {
		h = make(Hints, len(extra))
	}
	for pointer, values := range extra {
		bucket, ok := h[pointer]
		if !ok {
			bucket = make(map[string]any, len(values))
			h[pointer] = bucket
		}
		for key, value := range values {
			if _, exists := bucket[key]; !exists {
				bucket[key] = value
			}
		}
	}
	return h
}
