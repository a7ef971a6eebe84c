package layout

import (
	"sort"
	"strings"
	"unicode"

	"github.com/goliatone/go-formbridge/pkg/uischema"
)

// Widget kinds the builder emits. Renderers may map these onto their own
// vocabulary; pass-through entries keep whatever type the layout author used.
const (
	WidgetText     = "text"
	WidgetTextarea = "textarea"
	WidgetNumber   = "number"
	WidgetCheckbox = "checkbox"
	WidgetSelect   = "select"
	WidgetArray    = "array"
	WidgetFieldset = "fieldset"
	WidgetSection  = "section"
	WidgetSubmit   = "submit"
	WidgetHidden   = "hidden"
	WidgetRef      = "ref"
)

// inferWidget picks a widget for a primitive schema node. Explicit hints from
// the x-ui bag win over format-derived input types.
func inferWidget(node map[string]any) string {
	if hint := uiHintString(node, "widget"); hint != "" {
		return hint
	}

	if _, ok := node["enum"].([]any); ok {
		return WidgetSelect
	}

	typ, _ := node["type"].(string)
	switch typ {
	case "boolean":
		return WidgetCheckbox
	case "integer", "number":
		return WidgetNumber
	case "string", "":
		return widgetForFormat(node)
	default:
		return WidgetText
	}
}

func widgetForFormat(node map[string]any) string {
	format, _ := node["format"].(string)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "date":
		return "date"
	case "time":
		return "time"
	case "date-time", "datetime", "datetime-local":
		return "datetime-local"
	case "email":
		return "email"
	case "uri", "uri-reference", "url":
		return "url"
	case "tel", "phone":
		return "tel"
	case "password":
		return "password"
	default:
		return WidgetText
	}
}

func uiHintString(node map[string]any, key string) string {
	bag, _ := node[uischema.ExtensionKey].(map[string]any)
	if bag == nil {
		return ""
	}
	value, _ := bag[key].(string)
	return strings.TrimSpace(value)
}

// propertyOrder returns the ordered property names of an object schema node.
// An x-order extension pins explicit positions; remaining names follow in
// sorted order, which is the canonical order for Go's unordered maps.
func propertyOrder(node map[string]any) []string {
	props, _ := node["properties"].(map[string]any)
	if len(props) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(props))
	var out []string
	if rawOrder, ok := node["x-order"].([]any); ok {
		for _, entry := range rawOrder {
			name, _ := entry.(string)
			if name == "" {
				continue
			}
			if _, exists := props[name]; !exists {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}

	rest := make([]string, 0, len(props))
	for name := range props {
		if _, pinned := seen[name]; !pinned {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// humanize turns a field key into a display label: "firstName" and
// "first_name" both become "First Name".
func humanize(key string) string {
	if key == "" {
		return ""
	}
	if idx := strings.LastIndex(key, "."); idx >= 0 {
		key = key[idx+1:]
	}

	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r) && current.Len() > 0:
			flush()
			current.WriteRune(unicode.ToLower(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()

	for idx, word := range words {
		if word == "" {
			continue
		}
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func requiredSet(node map[string]any) map[string]struct{} {
	raw, _ := node["required"].([]any)
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		if name, ok := entry.(string); ok && name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}
