package jsonschema

import "strings"

// Synthesis fills the schema facet when the caller supplied none: first from
// the layout's field keys, then from the shape of the initial data. When both
// are unavailable the schema stays empty, which is a defined degenerate state
// rather than an error.

// LayoutHasWildcard reports whether the layout contains a "*" marker. A
// wildcard layout carries no field list of its own, so schema synthesis must
// fall back to the data shape.
func LayoutHasWildcard(layout []any) bool {
	for _, entry := range layout {
		switch typed := entry.(type) {
		case string:
			if typed == "*" {
				return true
			}
		case map[string]any:
			if key, _ := typed["key"].(string); key == "*" {
				return true
			}
			if items, ok := typed["items"].([]any); ok && LayoutHasWildcard(items) {
				return true
			}
		}
	}
	return false
}

// SynthesizeFromLayout derives a minimal object schema from the layout's
// field keys. Field types default to string unless the layout entry carries a
// recognizable type hint. Dotted keys produce nested object properties.
func SynthesizeFromLayout(layout []any) map[string]any {
	properties := make(map[string]any)
	collectLayoutFields(layout, properties)
	if len(properties) == 0 {
		return nil
	}
	return map[string]any{"type": "object", "properties": properties}
}

func collectLayoutFields(layout []any, properties map[string]any) {
	for _, entry := range layout {
		switch typed := entry.(type) {
		case string:
			if typed != "" && typed != "*" {
				insertProperty(properties, typed, map[string]any{"type": "string"})
			}
		case map[string]any:
			if items, ok := typed["items"].([]any); ok {
				collectLayoutFields(items, properties)
			}
			key, _ := typed["key"].(string)
			if key == "" || key == "*" {
				continue
			}
			insertProperty(properties, key, map[string]any{"type": schemaTypeForControl(typed)})
		}
	}
}

// insertProperty places a leaf schema at a dotted key path, creating
// intermediate object nodes as needed. Existing entries win.
func insertProperty(properties map[string]any, dotted string, leaf map[string]any) {
	segments := strings.Split(dotted, ".")
	current := properties
	for idx, segment := range segments {
		if idx == len(segments)-1 {
			if _, exists := current[segment]; !exists {
				current[segment] = leaf
			}
			return
		}
		child, ok := current[segment].(map[string]any)
		if !ok {
			child = map[string]any{"type": "object", "properties": map[string]any{}}
			current[segment] = child
		}
		props, ok := child["properties"].(map[string]any)
		if !ok {
			props = map[string]any{}
			child["properties"] = props
		}
		current = props
	}
}

// schemaTypeForControl maps a layout control type hint onto a JSON Schema
// type. Unknown hints default to string.
func schemaTypeForControl(entry map[string]any) string {
	hint, _ := entry["type"].(string)
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "number", "range":
		return "number"
	case "integer", "updown":
		return "integer"
	case "checkbox", "boolean":
		return "boolean"
	case "array", "checkboxes":
		return "array"
	case "object", "fieldset", "section":
		return "object"
	default:
		return "string"
	}
}

// SynthesizeFromData infers a schema from the shape and value types of the
// initial data: objects map to object schemas, arrays take their item type
// from the first element, primitives map to their JSON Schema type.
func SynthesizeFromData(data any) map[string]any {
	switch typed := data.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return map[string]any{"type": "object"}
		}
		properties := make(map[string]any, len(typed))
		for key, value := range typed {
			properties[key] = SynthesizeFromData(value)
		}
		return map[string]any{"type": "object", "properties": properties}
	case []any:
		node := map[string]any{"type": "array"}
		if len(typed) > 0 {
			node["items"] = SynthesizeFromData(typed[0])
		}
		return node
	case string:
		return map[string]any{"type": "string"}
	case bool:
		return map[string]any{"type": "boolean"}
	case float64, float32:
		return map[string]any{"type": "number"}
	case int, int32, int64:
		return map[string]any{"type": "integer"}
	case nil:
		return map[string]any{"type": "string"}
	default:
		return map[string]any{"type": "string"}
	}
}
