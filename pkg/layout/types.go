// Package layout turns a resolved schema and a (possibly partial or wildcard)
// layout description into the canonical control tree. Every schema leaf ends
// up with exactly one layout node; explicit layout entries with no schema
// counterpart are kept as pass-through controls.
package layout

// Node describes one control in the canonical layout tree.
type Node struct {
	// Path locates the node inside the layout tree itself ("/0", "/2/items/1").
	Path string `json:"path"`
	// Key is the dotted data path the control binds to. Empty for
	// non-field controls such as sections and submit buttons.
	Key string `json:"key,omitempty"`
	// SchemaPointer locates the backing schema node. Empty for pass-through
	// controls.
	SchemaPointer string `json:"schemaPointer,omitempty"`
	// DataPointer locates the control's value inside the data document.
	DataPointer string `json:"dataPointer,omitempty"`

	Widget      string `json:"widget"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// Passthrough marks layout entries with no matching schema field. They
	// render but never participate in validation or data mapping.
	Passthrough bool `json:"passthrough,omitempty"`

	// Circular marks a node sitting on a circular-reference site. Such nodes
	// are terminals here; the rendering layer grows further levels on demand.
	Circular  bool   `json:"circular,omitempty"`
	RefTarget string `json:"refTarget,omitempty"`

	// Options carries display hints merged from the schema's x-ui bag and
	// the layout entry itself.
	Options map[string]any `json:"options,omitempty"`

	// Items holds ordered children for container nodes (fieldsets, sections).
	Items []Node `json:"items,omitempty"`
	// ArrayItem is the template for one item of an array control. Its paths
	// use the "-" placeholder where an item index belongs.
	ArrayItem *Node `json:"arrayItem,omitempty"`
}

// Tree is the canonical layout produced by the builder.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Empty reports whether the tree contains no field-bearing nodes.
func (t Tree) Empty() bool {
	found := false
	t.Walk(func(n Node) bool {
		if n.Key != "" && !n.Passthrough {
			found = true
			return false
		}
		return true
	})
	return !found
}

// Walk visits every node depth-first, including array item templates. The
// visitor returns false to stop early.
func (t Tree) Walk(fn func(Node) bool) {
	walkNodes(t.Nodes, fn)
}

func walkNodes(nodes []Node, fn func(Node) bool) bool {
	for _, node := range nodes {
		if !fn(node) {
			return false
		}
		if len(node.Items) > 0 {
			if !walkNodes(node.Items, fn) {
				return false
			}
		}
		if node.ArrayItem != nil {
			if !fn(*node.ArrayItem) {
				return false
			}
			if len(node.ArrayItem.Items) > 0 {
				if !walkNodes(node.ArrayItem.Items, fn) {
					return false
				}
			}
		}
	}
	return true
}

// Terminals returns the value-bearing leaves of the tree: field nodes with no
// children. Array containers are returned as terminals too since their item
// cardinality is runtime state, not tree structure.
func (t Tree) Terminals() []Node {
	var out []Node
	collectTerminals(t.Nodes, &out)
	return out
}

func collectTerminals(nodes []Node, out *[]Node) {
	for _, node := range nodes {
		switch {
		case node.Passthrough || node.Key == "":
			if len(node.Items) > 0 {
				collectTerminals(node.Items, out)
			}
		case len(node.Items) > 0:
			collectTerminals(node.Items, out)
		default:
			*out = append(*out, node)
		}
	}
}

// NodeAt finds a node by its layout path.
func (t Tree) NodeAt(path string) (Node, bool) {
	var found Node
	ok := false
	t.Walk(func(n Node) bool {
		if n.Path == path {
			found = n
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// SchemaPointers returns the set of schema pointers referenced by field
// nodes. Useful for asserting the closed-world mapping.
func (t Tree) SchemaPointers() map[string]struct{} {
	out := make(map[string]struct{})
	t.Walk(func(n Node) bool {
		if n.SchemaPointer != "" {
			out[n.SchemaPointer] = struct{}{}
		}
		return true
	})
	return out
}
