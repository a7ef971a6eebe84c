package schema

import (
	"strconv"
	"strings"
)

// Pointer helpers implement the subset of RFC 6901 the reconciliation engine
// relies on. The canonical form used throughout the module is the bare
// pointer without a leading "#": the document root is "", a property is
// "/properties/name". Fragment-style references ("#", "#/properties/name")
// normalize into this form.

// EscapeToken encodes a single reference token.
func EscapeToken(token string) string {
	replacer := strings.NewReplacer("~", "~0", "/", "~1")
	return replacer.Replace(token)
}

// UnescapeToken decodes a single reference token.
func UnescapeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// NormalizePointer converts a local reference into canonical pointer form.
// The second return reports whether the input was a well-formed local
// pointer; references into other documents ("other.json#/x", "http://…") are
// rejected here so callers can surface them as resolution issues.
func NormalizePointer(ref string) (string, bool) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" || trimmed == "#" {
		return "", true
	}
	trimmed = strings.TrimPrefix(trimmed, "#")
	if !strings.HasPrefix(trimmed, "/") {
		return "", false
	}
	return trimmed, true
}

// JoinPointer appends escaped tokens to a canonical pointer.
func JoinPointer(base string, tokens ...string) string {
	out := base
	for _, token := range tokens {
		out = out + "/" + EscapeToken(token)
	}
	return out
}

// SplitPointer returns the decoded tokens of a canonical pointer. The root
// pointer yields nil.
func SplitPointer(pointer string) []string {
	if pointer == "" {
		return nil
	}
	parts := strings.Split(pointer, "/")[1:]
	out := make([]string, len(parts))
	for idx, part := range parts {
		out[idx] = UnescapeToken(part)
	}
	return out
}

// IsAncestorOrSelf reports whether target designates the same node as site or
// one of its ancestors. This is the circularity predicate: a $ref at site
// whose target satisfies it would splice a tree into itself.
func IsAncestorOrSelf(target, site string) bool {
	if target == site {
		return true
	}
	if target == "" {
		return true
	}
	return strings.HasPrefix(site, target+"/")
}

// GetPointer walks root following the canonical pointer and returns the value
// it designates.
func GetPointer(root any, pointer string) (any, bool) {
	current := root
	for _, token := range SplitPointer(pointer) {
		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[token]
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// CloneTree deep-copies a JSON-like tree of maps, slices, and scalars.
func CloneTree(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = CloneTree(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = CloneTree(val)
		}
		return out
	default:
		return typed
	}
}
