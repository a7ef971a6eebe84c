// Package binding connects the canonical layout tree to flat control values.
// It produces the data map (control path to data location, in layout order),
// tracks array item cardinality, and re-emits the nested data document from
// the flat values on demand.
package binding

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-formbridge/pkg/layout"
	"github.com/goliatone/go-formbridge/pkg/schema"
)

// Entry links one value-bearing control to its schema node and data location.
type Entry struct {
	// LayoutPath is the position of the control in the layout tree.
	LayoutPath string `json:"layoutPath"`
	// SchemaPointer locates the backing schema node.
	SchemaPointer string `json:"schemaPointer,omitempty"`
	// DataPath is the dotted location of the value in the data document, with
	// array indices resolved ("tags.1", "address.city").
	DataPath string `json:"dataPath"`
	Widget   string `json:"widget"`

	// Circular entries hold the literal reference marker instead of an
	// expanded value.
	Circular  bool   `json:"circular,omitempty"`
	RefTarget string `json:"refTarget,omitempty"`
}

// Maps is the positional mapping for one form generation. Entries appear in
// layout order; Arrays records the current item count per array control.
type Maps struct {
	Data     []Entry           `json:"data"`
	Arrays   map[string]int    `json:"arrays"`
	Circular map[string]string `json:"circular,omitempty"`
}

// Entry finds the data map entry for a control path.
func (m Maps) Entry(dataPath string) (Entry, bool) {
	for _, entry := range m.Data {
		if entry.DataPath == dataPath {
			return entry, true
		}
	}
	return Entry{}, false
}

// BuildMaps walks the layout tree against the initial data document. It
// returns the data map plus the controls seeded from the initial data; fields
// with neither an initial value nor a schema default stay unset.
func BuildMaps(tree layout.Tree, initial map[string]any, circular map[string]string) (Maps, *Controls, error) {
	raw := []byte("{}")
	if initial != nil {
		encoded, err := json.Marshal(initial)
		if err != nil {
			return Maps{}, nil, fmt.Errorf("binding: encode initial data: %w", err)
		}
		raw = encoded
	}

	session := &mapSession{
		raw:      raw,
		controls: NewControls(),
		maps: Maps{
			Arrays:   make(map[string]int),
			Circular: cloneStringMap(circular),
		},
	}
	for _, node := range tree.Nodes {
		session.emitNode(node, "", "")
	}
	return session.maps, session.controls, nil
}

// Rebuild produces a fresh data map for the same tree with explicit array
// counts. Control values are left to the caller; item addition and removal
// only reshape the mapping.
func Rebuild(tree layout.Tree, counts map[string]int, circular map[string]string) Maps {
	session := &mapSession{
		raw:    []byte("{}"),
		counts: counts,
		maps: Maps{
			Arrays:   make(map[string]int),
			Circular: cloneStringMap(circular),
		},
	}
	for _, node := range tree.Nodes {
		session.emitNode(node, "", "")
	}
	return session.maps
}

type mapSession struct {
	raw      []byte
	counts   map[string]int
	controls *Controls
	maps     Maps
}

// emitNode visits one layout node. origBase and realBase track the pointer
// prefix rewrite introduced by enclosing arrays, so nested item paths come out
// with concrete indices.
func (s *mapSession) emitNode(node layout.Node, origBase, realBase string) {
	if node.Passthrough {
		return
	}
	if node.Key == "" {
		for _, child := range node.Items {
			s.emitNode(child, origBase, realBase)
		}
		return
	}

	pointer := realBase + strings.TrimPrefix(node.DataPointer, origBase)

	if node.ArrayItem != nil {
		s.emitArray(node, pointer)
		return
	}
	if len(node.Items) > 0 {
		for _, child := range node.Items {
			s.emitNode(child, origBase, realBase)
		}
		return
	}
	s.emitLeaf(node, pointer)
}

func (s *mapSession) emitArray(node layout.Node, pointer string) {
	dataPath := PathFromPointer(pointer)
	count := 0
	if result := gjson.GetBytes(s.raw, dataPath); result.IsArray() {
		count = len(result.Array())
	}
	if preset, ok := s.counts[dataPath]; ok {
		count = preset
	}
	s.maps.Arrays[dataPath] = count

	placeholder := node.DataPointer + "/-"
	for idx := 0; idx < count; idx++ {
		s.emitNode(*node.ArrayItem, placeholder, pointer+"/"+strconv.Itoa(idx))
	}
}

func (s *mapSession) emitLeaf(node layout.Node, pointer string) {
	dataPath := PathFromPointer(pointer)
	s.maps.Data = append(s.maps.Data, Entry{
		LayoutPath:    node.Path,
		SchemaPointer: node.SchemaPointer,
		DataPath:      dataPath,
		Widget:        node.Widget,
		Circular:      node.Circular,
		RefTarget:     node.RefTarget,
	})

	if s.controls == nil {
		return
	}
	if result := gjson.GetBytes(s.raw, dataPath); result.Exists() {
		s.controls.Set(dataPath, result.Value())
		return
	}
	if node.Circular {
		s.controls.Set(dataPath, refMarker(node.RefTarget))
		return
	}
	if node.Default != nil {
		s.controls.Set(dataPath, node.Default)
	}
}

func refMarker(target string) map[string]any {
	return map[string]any{"$ref": "#" + target}
}

// PathFromPointer converts a data pointer into gjson/sjson path syntax,
// escaping tokens that contain path metacharacters. Every consumer of the
// data map must address controls through this form.
func PathFromPointer(pointer string) string {
	tokens := schema.SplitPointer(pointer)
	out := make([]string, len(tokens))
	for idx, token := range tokens {
		out[idx] = escapePathToken(token)
	}
	return strings.Join(out, ".")
}

func escapePathToken(token string) string {
	replacer := strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`)
	return replacer.Replace(token)
}

func cloneStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

// sortedArrayPaths keeps emission order stable for empty arrays.
func sortedArrayPaths(arrays map[string]int) []string {
	out := make([]string, 0, len(arrays))
	for path := range arrays {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
