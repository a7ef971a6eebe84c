package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbridge/pkg/schema"
	"github.com/goliatone/go-formbridge/pkg/uischema"
)

// sectionTypes are layout entry types that group children without binding a
// value of their own.
var sectionTypes = map[string]struct{}{
	"section":  {},
	"fieldset": {},
	"div":      {},
	"group":    {},
	"tabs":     {},
	"tab":      {},
}

// Builder produces the canonical layout tree from a resolved schema and a
// layout description.
type Builder struct{}

// NewBuilder constructs a layout builder.
func NewBuilder() *Builder {
	return &Builder{}
}

type buildSession struct {
	root        map[string]any
	explicitTop map[string]struct{}
	covered     map[string]struct{}
	wildcard    bool
	template    Template
}

// Build expands the layout against the schema. Wildcard entries expand in
// place to every schema field not explicitly named elsewhere in the layout;
// when no wildcard is present, unmentioned schema fields are appended at the
// end so the closed-world mapping always holds. The returned template carries
// the validator rules implied by schema constraints.
func (b *Builder) Build(root map[string]any, entries []any) (Tree, Template, error) {
	session := &buildSession{
		root:        root,
		explicitTop: collectExplicitTopKeys(entries),
		covered:     make(map[string]struct{}),
	}

	nodes := session.buildEntries(entries, "")

	if !session.wildcard {
		for _, name := range propertyOrder(root) {
			if _, ok := session.explicitTop[name]; ok {
				continue
			}
			if _, ok := session.covered[name]; ok {
				continue
			}
			node := session.buildFieldFromSchema(name, nil, fmt.Sprintf("/%d", len(nodes)))
			nodes = append(nodes, node)
		}
	}

	renumber(nodes, "")
	return Tree{Nodes: nodes}, session.template, nil
}

func (s *buildSession) buildEntries(entries []any, basePath string) []Node {
	var out []Node
	for _, entry := range entries {
		path := fmt.Sprintf("%s/%d", basePath, len(out))
		switch typed := entry.(type) {
		case string:
			if typed == "" {
				continue
			}
			if typed == "*" {
				out = append(out, s.expandWildcard(basePath, len(out))...)
				continue
			}
			out = append(out, s.buildField(typed, nil, path))
		case map[string]any:
			key, _ := typed["key"].(string)
			if key == "*" {
				out = append(out, s.expandWildcard(basePath, len(out))...)
				continue
			}
			if key != "" {
				out = append(out, s.buildField(key, typed, path))
				continue
			}
			entryType, _ := typed["type"].(string)
			if _, isSection := sectionTypes[entryType]; isSection {
				section := Node{
					Path:    path,
					Widget:  WidgetSection,
					Title:   readString(typed, "title"),
					Options: entryOptions(typed),
				}
				if items, ok := typed["items"].([]any); ok {
					section.Items = s.buildEntries(items, path+"/items")
				}
				out = append(out, section)
				continue
			}
			// Non-field control (submit, button, help text).
			widget := entryType
			if widget == "" {
				widget = WidgetText
			}
			out = append(out, Node{
				Path:        path,
				Widget:      widget,
				Title:       readString(typed, "title"),
				Description: readString(typed, "description"),
				Passthrough: true,
				Options:     entryOptions(typed),
			})
		}
	}
	return out
}

func (s *buildSession) expandWildcard(basePath string, offset int) []Node {
	s.wildcard = true
	var out []Node
	for _, name := range propertyOrder(s.root) {
		if _, ok := s.explicitTop[name]; ok {
			continue
		}
		if _, ok := s.covered[name]; ok {
			continue
		}
		path := fmt.Sprintf("%s/%d", basePath, offset+len(out))
		out = append(out, s.buildFieldFromSchema(name, nil, path))
	}
	return out
}

func (s *buildSession) buildFieldFromSchema(name string, overrides map[string]any, path string) Node {
	s.covered[name] = struct{}{}
	props, _ := s.root["properties"].(map[string]any)
	node, _ := props[name].(map[string]any)
	if node == nil {
		node = map[string]any{}
	}
	_, required := requiredSet(s.root)[name]
	return s.buildSchemaNode(name, node, schema.JoinPointer("/properties", name), "/"+schema.EscapeToken(name), required, overrides, path)
}

func (s *buildSession) buildField(key string, overrides map[string]any, path string) Node {
	node, pointer, dataPointer, required, ok := s.findSchemaNode(key)
	if !ok {
		return s.passthroughField(key, overrides, path)
	}
	if top := topSegment(key); top != "" {
		s.covered[top] = struct{}{}
	}
	return s.buildSchemaNode(key, node, pointer, dataPointer, required, overrides, path)
}

func (s *buildSession) passthroughField(key string, overrides map[string]any, path string) Node {
	widget := readString(overrides, "type")
	if widget == "" {
		widget = WidgetText
	}
	title := readString(overrides, "title")
	if title == "" {
		title = humanize(key)
	}
	return Node{
		Path:        path,
		Key:         key,
		Widget:      widget,
		Title:       title,
		Description: readString(overrides, "description"),
		Passthrough: true,
		Options:     entryOptions(overrides),
	}
}

// findSchemaNode follows a dotted layout key through the schema tree. The
// "[]" segment (or "items") steps into an array's item schema.
func (s *buildSession) findSchemaNode(key string) (map[string]any, string, string, bool, bool) {
	current := s.root
	pointer := ""
	dataPointer := ""
	required := false
	for _, segment := range strings.Split(key, ".") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			return nil, "", "", false, false
		}
		if segment == "[]" || segment == "-" {
			items, ok := current["items"].(map[string]any)
			if !ok {
				return nil, "", "", false, false
			}
			current = items
			pointer += "/items"
			dataPointer += "/-"
			required = false
			continue
		}
		props, ok := current["properties"].(map[string]any)
		if !ok {
			return nil, "", "", false, false
		}
		child, ok := props[segment].(map[string]any)
		if !ok {
			return nil, "", "", false, false
		}
		_, required = requiredSet(current)[segment]
		pointer = schema.JoinPointer(pointer+"/properties", segment)
		dataPointer += "/" + schema.EscapeToken(segment)
		current = child
	}
	return current, pointer, dataPointer, required, true
}

func (s *buildSession) buildSchemaNode(key string, node map[string]any, pointer, dataPointer string, required bool, overrides map[string]any, path string) Node {
	out := Node{
		Path:          path,
		Key:           key,
		SchemaPointer: pointer,
		DataPointer:   dataPointer,
		Required:      required,
		Default:       node["default"],
		Options:       nodeOptions(node, overrides),
	}
	out.Title = firstNonEmpty(
		readString(overrides, "title"),
		uiHintString(node, "title"),
		readString(node, "title"),
		humanize(key),
	)
	out.Description = firstNonEmpty(
		readString(overrides, "description"),
		uiHintString(node, "help"),
		readString(node, "description"),
	)

	if ref, ok := node["$ref"].(string); ok {
		out.Widget = WidgetRef
		out.Circular = true
		if target, valid := schema.NormalizePointer(ref); valid {
			out.RefTarget = target
		}
		s.appendTemplateField(out, node)
		return out
	}

	if enum, ok := node["enum"].([]any); ok {
		out.Enum = append([]any(nil), enum...)
	}

	typ, _ := node["type"].(string)
	switch typ {
	case "object":
		out.Widget = WidgetFieldset
		for _, name := range propertyOrder(node) {
			childNode, _ := node["properties"].(map[string]any)[name].(map[string]any)
			if childNode == nil {
				childNode = map[string]any{}
			}
			_, childRequired := requiredSet(node)[name]
			child := s.buildSchemaNode(
				key+"."+name,
				childNode,
				schema.JoinPointer(pointer+"/properties", name),
				dataPointer+"/"+schema.EscapeToken(name),
				childRequired,
				nil,
				fmt.Sprintf("%s/items/%d", path, len(out.Items)),
			)
			out.Items = append(out.Items, child)
		}
	case "array":
		out.Widget = WidgetArray
		if hint := uiHintString(node, "widget"); hint != "" {
			out.Widget = hint
		}
		if items, ok := node["items"].(map[string]any); ok {
			item := s.buildSchemaNode(key+".-", items, pointer+"/items", dataPointer+"/-", false, nil, path+"/-")
			out.ArrayItem = &item
		}
	default:
		out.Widget = inferWidget(node)
		if override := readString(overrides, "type"); override != "" {
			out.Widget = override
		}
		s.appendTemplateField(out, node)
	}

	return out
}

func (s *buildSession) appendTemplateField(node Node, schemaNode map[string]any) {
	field := TemplateField{
		Path:    node.Key,
		Pointer: node.SchemaPointer,
		Widget:  node.Widget,
		Default: node.Default,
		Rules:   rulesFor(schemaNode, node.Required),
	}
	s.template.Fields = append(s.template.Fields, field)
}

func rulesFor(node map[string]any, required bool) []Rule {
	var rules []Rule
	if required {
		rules = append(rules, Rule{Kind: RuleRequired})
	}
	if min, ok := toFloat(node["minimum"]); ok {
		params := map[string]string{"value": formatFloat(min)}
		if exclusive, _ := node["exclusiveMinimum"].(bool); exclusive {
			params["exclusive"] = "true"
		}
		rules = append(rules, Rule{Kind: RuleMin, Params: params})
	}
	if max, ok := toFloat(node["maximum"]); ok {
		params := map[string]string{"value": formatFloat(max)}
		if exclusive, _ := node["exclusiveMaximum"].(bool); exclusive {
			params["exclusive"] = "true"
		}
		rules = append(rules, Rule{Kind: RuleMax, Params: params})
	}
	if minLen, ok := toFloat(node["minLength"]); ok {
		rules = append(rules, Rule{Kind: RuleMinLength, Params: map[string]string{"value": formatFloat(minLen)}})
	}
	if maxLen, ok := toFloat(node["maxLength"]); ok {
		rules = append(rules, Rule{Kind: RuleMaxLength, Params: map[string]string{"value": formatFloat(maxLen)}})
	}
	if pattern, _ := node["pattern"].(string); pattern != "" {
		rules = append(rules, Rule{Kind: RulePattern, Params: map[string]string{"pattern": pattern}})
	}
	return rules
}

// collectExplicitTopKeys gathers the top-level schema fields explicitly named
// anywhere in the layout, so wildcard expansion skips them.
func collectExplicitTopKeys(entries []any) map[string]struct{} {
	out := make(map[string]struct{})
	var walk func([]any)
	walk = func(list []any) {
		for _, entry := range list {
			switch typed := entry.(type) {
			case string:
				if typed != "" && typed != "*" {
					out[topSegment(typed)] = struct{}{}
				}
			case map[string]any:
				if key, _ := typed["key"].(string); key != "" && key != "*" {
					out[topSegment(key)] = struct{}{}
				}
				if items, ok := typed["items"].([]any); ok {
					walk(items)
				}
			}
		}
	}
	walk(entries)
	delete(out, "")
	return out
}

func topSegment(key string) string {
	if idx := strings.Index(key, "."); idx >= 0 {
		return key[:idx]
	}
	return key
}

// renumber rewrites node paths after closed-world append so they stay dense
// and positional.
func renumber(nodes []Node, basePath string) {
	for idx := range nodes {
		nodes[idx].Path = fmt.Sprintf("%s/%d", basePath, idx)
		if len(nodes[idx].Items) > 0 {
			renumber(nodes[idx].Items, nodes[idx].Path+"/items")
		}
		if nodes[idx].ArrayItem != nil {
			renumberItem(nodes[idx].ArrayItem, nodes[idx].Path+"/-")
		}
	}
}

func renumberItem(node *Node, path string) {
	node.Path = path
	if len(node.Items) > 0 {
		renumber(node.Items, path+"/items")
	}
	if node.ArrayItem != nil {
		renumberItem(node.ArrayItem, path+"/-")
	}
}

func nodeOptions(node map[string]any, overrides map[string]any) map[string]any {
	out := make(map[string]any)
	if bag, ok := node[uischema.ExtensionKey].(map[string]any); ok {
		for key, value := range bag {
			out[key] = value
		}
	}
	for key, value := range entryOptions(overrides) {
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// entryOptions keeps layout entry keys that are not consumed structurally.
func entryOptions(entry map[string]any) map[string]any {
	if len(entry) == 0 {
		return nil
	}
	out := make(map[string]any)
	for key, value := range entry {
		switch key {
		case "key", "type", "title", "description", "items":
			continue
		default:
			out[key] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func readString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	value, _ := payload[key].(string)
	return strings.TrimSpace(value)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
