// Package jsonschema hosts the reference resolver and the schema synthesizer
// for the reconciliation engine. Resolution is a pure transformation: the
// input tree is never mutated, a new resolved tree is returned alongside the
// reference library and the circular-reference map.
package jsonschema

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-formbridge/pkg/schema"
)

const defaultMaxRefDepth = 64

// Issue reports a non-fatal resolution failure for one node. Resolution of
// the rest of the tree continues.
type Issue struct {
	Pointer string `json:"pointer"`
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

// Result is the output of one resolution pass.
type Result struct {
	// Schema is the resolved tree. No reachable node carries a non-circular
	// $ref.
	Schema map[string]any
	// Library maps each normalized target pointer to the subtree it
	// designates in the original document. Entries are recorded at most once.
	Library map[string]map[string]any
	// Circular maps the pointer where a circular reference occurs to the
	// pointer it targets. Circular refs keep their $ref marker in Schema.
	Circular map[string]string
	// Issues lists malformed or unresolvable references.
	Issues []Issue
}

// ResolveOptions configures reference resolution.
type ResolveOptions struct {
	// MaxRefDepth caps the length of any single $ref expansion chain.
	MaxRefDepth int
}

// Resolver expands $ref references within a single schema document.
type Resolver struct {
	opts ResolveOptions
}

// NewResolver constructs a resolver with the supplied options.
func NewResolver(opts ResolveOptions) *Resolver {
	if opts.MaxRefDepth <= 0 {
		opts.MaxRefDepth = defaultMaxRefDepth
	}
	return &Resolver{opts: opts}
}

type resolveSession struct {
	root     map[string]any
	opts     ResolveOptions
	library  map[string]map[string]any
	circular map[string]string
	issues   []Issue
}

// Resolve walks root depth-first, inlines every non-circular $ref as a deep
// copy of its target merged with local sibling keys (siblings win), and
// records circular references without inlining them. A nil or empty root
// yields an empty result.
func (r *Resolver) Resolve(root map[string]any) Result {
	session := &resolveSession{
		root:     root,
		opts:     r.opts,
		library:  make(map[string]map[string]any),
		circular: make(map[string]string),
	}
	result := Result{
		Library:  session.library,
		Circular: session.circular,
	}
	if len(root) == 0 {
		result.Schema = map[string]any{}
		return result
	}

	resolved := session.resolveNode(root, "", nil)
	output, ok := resolved.(map[string]any)
	if !ok {
		output = map[string]any{}
	}
	result.Schema = output
	result.Issues = session.issues
	return result
}

// resolveNode rebuilds one node of the new tree. site is the node's pointer
// in the output tree; stack holds the targets of the $ref chain currently
// being expanded at this site, which catches mutual (non-ancestor) cycles.
func (s *resolveSession) resolveNode(node any, site string, stack []string) any {
	switch typed := node.(type) {
	case map[string]any:
		if ref, ok := typed["$ref"].(string); ok {
			return s.resolveRef(typed, ref, site, stack)
		}
		out := make(map[string]any, len(typed))
		for _, key := range sortedKeys(typed) {
			out[key] = s.resolveNode(typed[key], schema.JoinPointer(site, key), nil)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, entry := range typed {
			out[idx] = s.resolveNode(entry, fmt.Sprintf("%s/%d", site, idx), nil)
		}
		return out
	default:
		return typed
	}
}

func (s *resolveSession) resolveRef(node map[string]any, ref, site string, stack []string) any {
	target, ok := schema.NormalizePointer(ref)
	if !ok {
		s.report(site, ref, "reference is not a local JSON pointer")
		return schema.CloneTree(node)
	}

	// Library entries are recorded once per unique target, circular or not.
	if _, seen := s.library[target]; !seen {
		referent, found := schema.GetPointer(s.root, target)
		if !found {
			s.report(site, ref, "pointer not found in schema")
			return schema.CloneTree(node)
		}
		if subtree, ok := schema.CloneTree(referent).(map[string]any); ok {
			s.library[target] = subtree
		} else {
			s.report(site, ref, "pointer does not designate a schema object")
			return schema.CloneTree(node)
		}
	}

	if schema.IsAncestorOrSelf(target, site) || contains(stack, target) {
		// Circular: keep the marker, record the site for lazy handling.
		if _, exists := s.circular[site]; !exists {
			s.circular[site] = target
		}
		return schema.CloneTree(node)
	}

	if len(stack) >= s.opts.MaxRefDepth {
		s.report(site, ref, fmt.Sprintf("ref chain exceeds depth %d", s.opts.MaxRefDepth))
		return schema.CloneTree(node)
	}

	// Inline: deep copy of the referent with local sibling keys layered on
	// top. Re-resolving the merged node resolves any references the referent
	// itself carries, so forward references need no second pass.
	merged := schema.CloneTree(s.library[target]).(map[string]any)
	for key, value := range node {
		if key == "$ref" {
			continue
		}
		merged[key] = schema.CloneTree(value)
	}
	return s.resolveNode(merged, site, append(stack, target))
}

func (s *resolveSession) report(site, ref, message string) {
	s.issues = append(s.issues, Issue{Pointer: site, Ref: ref, Message: message})
}

func contains(stack []string, target string) bool {
	for _, entry := range stack {
		if entry == target {
			return true
		}
	}
	return false
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
