package jsonschema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSynthesizeFromLayout_DefaultsToString(t *testing.T) {
	layout := []any{
		map[string]any{"key": "title"},
		map[string]any{"key": "count"},
	}

	got := SynthesizeFromLayout(layout)
	want := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"count": map[string]any{"type": "string"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected schema (-want +got):\n%s", diff)
	}
}

func TestSynthesizeFromLayout_TypeHintsAndNesting(t *testing.T) {
	layout := []any{
		"name",
		map[string]any{"key": "age", "type": "number"},
		map[string]any{"key": "active", "type": "checkbox"},
		map[string]any{"key": "address.city"},
		map[string]any{"type": "submit", "title": "Go"},
	}

	got := SynthesizeFromLayout(layout)
	props := got["properties"].(map[string]any)
	if props["age"].(map[string]any)["type"] != "number" {
		t.Fatalf("expected number hint, got %#v", props["age"])
	}
	if props["active"].(map[string]any)["type"] != "boolean" {
		t.Fatalf("expected boolean hint, got %#v", props["active"])
	}
	address := props["address"].(map[string]any)
	if address["type"] != "object" {
		t.Fatalf("expected nested object, got %#v", address)
	}
	if _, ok := address["properties"].(map[string]any)["city"]; !ok {
		t.Fatalf("expected nested city property, got %#v", address)
	}
	if _, ok := props["submit"]; ok {
		t.Fatalf("submit controls must not synthesize properties")
	}
}

func TestSynthesizeFromLayout_Empty(t *testing.T) {
	if got := SynthesizeFromLayout([]any{"*"}); got != nil {
		t.Fatalf("expected nil schema for wildcard-only layout, got %#v", got)
	}
}

func TestSynthesizeFromData(t *testing.T) {
	data := map[string]any{
		"name":   "ada",
		"age":    float64(36),
		"active": true,
		"tags":   []any{"a", "b"},
		"address": map[string]any{
			"city": "london",
		},
	}

	got := SynthesizeFromData(data)
	props := got["properties"].(map[string]any)
	if props["name"].(map[string]any)["type"] != "string" {
		t.Fatalf("expected string, got %#v", props["name"])
	}
	if props["age"].(map[string]any)["type"] != "number" {
		t.Fatalf("expected number, got %#v", props["age"])
	}
	if props["active"].(map[string]any)["type"] != "boolean" {
		t.Fatalf("expected boolean, got %#v", props["active"])
	}
	tags := props["tags"].(map[string]any)
	if tags["type"] != "array" || tags["items"].(map[string]any)["type"] != "string" {
		t.Fatalf("expected string array, got %#v", tags)
	}
	address := props["address"].(map[string]any)
	if address["type"] != "object" {
		t.Fatalf("expected object, got %#v", address)
	}
}

func TestLayoutHasWildcard(t *testing.T) {
	if !LayoutHasWildcard([]any{"*"}) {
		t.Fatalf("expected wildcard detection for bare marker")
	}
	if !LayoutHasWildcard([]any{map[string]any{"type": "section", "items": []any{"*"}}}) {
		t.Fatalf("expected wildcard detection inside sections")
	}
	if LayoutHasWildcard([]any{map[string]any{"key": "name"}}) {
		t.Fatalf("unexpected wildcard detection")
	}
}
