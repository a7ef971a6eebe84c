package formats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize_DirectInputsWin(t *testing.T) {
	input := Input{
		Schema: map[string]any{"type": "object", "properties": map[string]any{"name": map[string]any{"type": "string"}}},
		Layout: []any{map[string]any{"key": "name"}},
		Data:   map[string]any{"name": "ada"},
		Combined: map[string]any{
			"schema": map[string]any{"type": "object", "properties": map[string]any{"other": map[string]any{"type": "string"}}},
			"data":   map[string]any{"other": "x"},
		},
	}

	got := Normalize(input)
	if _, ok := got.Schema["properties"].(map[string]any)["name"]; !ok {
		t.Fatalf("expected direct schema to win, got %#v", got.Schema)
	}
	if got.Data["name"] != "ada" {
		t.Fatalf("expected direct data to win, got %#v", got.Data)
	}
	if len(got.Layout) != 1 {
		t.Fatalf("expected direct layout to win, got %#v", got.Layout)
	}
}

func TestNormalize_ReactConvention(t *testing.T) {
	combined := map[string]any{
		"schema":   map[string]any{"type": "object", "properties": map[string]any{"age": map[string]any{"type": "integer"}}},
		"uiSchema": map[string]any{"age": map[string]any{"ui:widget": "updown"}},
		"formData": map[string]any{"age": float64(30)},
	}

	got := Normalize(Input{Combined: combined})
	if got.Convention != ConventionReact {
		t.Fatalf("expected react convention, got %q", got.Convention)
	}
	if got.Data["age"] != float64(30) {
		t.Fatalf("expected formData to seed data, got %#v", got.Data)
	}
	if got.UIHints == nil {
		t.Fatalf("expected uiSchema hints to be captured")
	}
	if diff := cmp.Diff(DefaultLayout(), got.Layout); diff != "" {
		t.Fatalf("expected default layout (-want +got):\n%s", diff)
	}
}

func TestNormalize_JSONFormConvention(t *testing.T) {
	combined := map[string]any{
		"schema": map[string]any{"properties": map[string]any{"title": map[string]any{"type": "string"}}},
		"form":   []any{"title", map[string]any{"type": "submit", "title": "Save"}},
		"value":  map[string]any{"title": "hello"},
	}

	got := Normalize(Input{Combined: combined})
	if got.Convention != ConventionJSONForm {
		t.Fatalf("expected jsonform convention, got %q", got.Convention)
	}
	if got.Schema["type"] != "object" {
		t.Fatalf("expected type object quirk, got %#v", got.Schema["type"])
	}
	if len(got.Layout) != 2 {
		t.Fatalf("expected .form layout, got %#v", got.Layout)
	}
	if got.Data["title"] != "hello" {
		t.Fatalf("expected .value data, got %#v", got.Data)
	}
}

func TestNormalize_CombinedAsPropertiesBag(t *testing.T) {
	combined := map[string]any{
		"first": map[string]any{"type": "string"},
		"last":  map[string]any{"type": "string"},
	}

	got := Normalize(Input{Combined: combined})
	props, ok := got.Schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected wrapped properties bag, got %#v", got.Schema)
	}
	if len(props) != 2 {
		t.Fatalf("expected two properties, got %#v", props)
	}
	if got.Schema["type"] != "object" {
		t.Fatalf("expected type object, got %#v", got.Schema["type"])
	}
}

func TestNormalize_LegacyDataFields(t *testing.T) {
	got := Normalize(Input{Data: map[string]any{"formValues": map[string]any{"name": "x"}}})
	if got.Data["name"] != "x" {
		t.Fatalf("expected formValues unwrap, got %#v", got.Data)
	}

	got = Normalize(Input{
		Data:     map[string]any{"formData": map[string]any{"name": "y"}},
		Combined: map[string]any{"value": map[string]any{"name": "z"}},
	})
	// combined .value outranks the direct formData alternate.
	if got.Data["name"] != "z" {
		t.Fatalf("expected combined value to win, got %#v", got.Data)
	}
}

func TestNormalize_AllAbsent(t *testing.T) {
	got := Normalize(Input{})
	if !got.Empty() {
		t.Fatalf("expected empty normalization, got %+v", got)
	}
	if diff := cmp.Diff(DefaultLayout(), got.Layout); diff != "" {
		t.Fatalf("expected default layout (-want +got):\n%s", diff)
	}
	if got.Convention != ConventionNone {
		t.Fatalf("expected no convention, got %q", got.Convention)
	}
}

func TestNormalize_CustomFormItemsHints(t *testing.T) {
	combined := map[string]any{
		"schema":          map[string]any{"type": "object", "properties": map[string]any{"bio": map[string]any{"type": "string"}}},
		"customFormItems": map[string]any{"bio": map[string]any{"ui:widget": "textarea"}},
	}

	got := Normalize(Input{Combined: combined})
	if got.Convention != ConventionJSONForm {
		t.Fatalf("expected jsonform convention, got %q", got.Convention)
	}
	if got.UIHints == nil {
		t.Fatalf("expected customFormItems to populate hints")
	}
}

func TestNormalize_ResultIsDetached(t *testing.T) {
	source := map[string]any{"type": "object", "properties": map[string]any{"a": map[string]any{"type": "string"}}}
	got := Normalize(Input{Schema: source})
	got.Schema["properties"].(map[string]any)["a"].(map[string]any)["type"] = "integer"
	if source["properties"].(map[string]any)["a"].(map[string]any)["type"] != "string" {
		t.Fatalf("normalized schema shares memory with the input")
	}
}
