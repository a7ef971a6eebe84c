package orchestrator

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbridge/pkg/formats"
)

func TestInitialize_SchemaOnlyFormSubmits(t *testing.T) {
	engine := New()
	form, err := engine.Initialize(context.Background(), formats.Input{
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"name"},
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
		},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if form.State() != StateLive {
		t.Fatalf("expected live form, got %q", form.State())
	}

	// Default layout: the schema field plus a submit control.
	nodes := form.Layout().Nodes
	if len(nodes) != 2 || nodes[0].Key != "name" || nodes[1].Widget != "submit" {
		t.Fatalf("unexpected layout: %#v", nodes)
	}

	var submitted map[string]any
	form.OnSubmit(func(doc map[string]any) { submitted = doc })

	if _, err := form.Submit(context.Background()); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected invalid submission, got %v", err)
	}

	if err := form.SetValue("name", "Ada"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	doc, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	want := map[string]any{"name": "Ada"}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, submitted); diff != "" {
		t.Fatalf("submit handler mismatch (-want +got):\n%s", diff)
	}
	if form.State() != StateSubmitted {
		t.Fatalf("expected submitted state, got %q", form.State())
	}
}

func TestForm_ArrayLifecycle(t *testing.T) {
	engine := New()
	form, err := engine.Initialize(context.Background(), formats.Input{
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tags": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
		Data: map[string]any{"tags": []any{"go", "forms"}},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	doc, err := form.FormatData()
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"tags": []any{"go", "forms"}}, doc); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if err := form.AddArrayItem("tags"); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := form.SetValue("tags.2", "json"); err != nil {
		t.Fatalf("set new item: %v", err)
	}
	if err := form.RemoveArrayItem("tags", 0); err != nil {
		t.Fatalf("remove item: %v", err)
	}

	doc, err = form.FormatData()
	if err != nil {
		t.Fatalf("format after edits: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"tags": []any{"forms", "json"}}, doc); diff != "" {
		t.Fatalf("array state mismatch (-want +got):\n%s", diff)
	}
}

func TestForm_NestedArraySurvivesItemRemoval(t *testing.T) {
	engine := New()
	form, err := engine.Initialize(context.Background(), formats.Input{
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"contacts": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name": map[string]any{"type": "string"},
							"phones": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
		Data: map[string]any{
			"contacts": []any{
				map[string]any{"name": "a", "phones": []any{"111"}},
				map[string]any{"name": "b", "phones": []any{"222", "333"}},
			},
		},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := form.RemoveArrayItem("contacts", 0); err != nil {
		t.Fatalf("remove item: %v", err)
	}

	doc, err := form.FormatData()
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := map[string]any{
		"contacts": []any{
			map[string]any{"name": "b", "phones": []any{"222", "333"}},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("nested arrays must shift with their item (-want +got):\n%s", diff)
	}
}

func TestForm_NestedArrayOfNewItemIsAddressable(t *testing.T) {
	engine := New()
	form, err := engine.Initialize(context.Background(), formats.Input{
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"contacts": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"phones": map[string]any{
								"type":  "array",
								"items": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
		Data: map[string]any{
			"contacts": []any{
				map[string]any{"phones": []any{"111"}},
			},
		},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	if err := form.AddArrayItem("contacts"); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	if err := form.AddArrayItem("contacts.1.phones"); err != nil {
		t.Fatalf("add nested phone: %v", err)
	}
	if err := form.SetValue("contacts.1.phones.0", "444"); err != nil {
		t.Fatalf("set nested phone: %v", err)
	}

	doc, err := form.FormatData()
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := map[string]any{
		"contacts": []any{
			map[string]any{"phones": []any{"111"}},
			map[string]any{"phones": []any{"444"}},
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("new item's nested array mismatch (-want +got):\n%s", diff)
	}
}

func TestForm_ChangeEventsCarryDocumentAndValidity(t *testing.T) {
	engine := New()
	form, err := engine.Initialize(context.Background(), formats.Input{
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"age": map[string]any{"type": "integer", "minimum": float64(0)},
			},
		},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	var changes []Change
	var validity []bool
	form.OnChange(func(c Change) { changes = append(changes, c) })
	form.OnValidity(func(ok bool) { validity = append(validity, ok) })

	if err := form.SetValue("age", float64(-1)); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if err := form.SetValue("age", float64(30)); err != nil {
		t.Fatalf("set value: %v", err)
	}

	if len(changes) != 2 || changes[1].Document["age"] != float64(30) {
		t.Fatalf("unexpected change events: %#v", changes)
	}
	want := []bool{false, true}
	if diff := cmp.Diff(want, validity); diff != "" {
		t.Fatalf("validity events mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ReinitializationMakesFormsStale(t *testing.T) {
	engine := New()
	input := formats.Input{
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
		},
	}

	first, err := engine.Initialize(context.Background(), input)
	if err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	second, err := engine.Initialize(context.Background(), input)
	if err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	if !first.Stale() {
		t.Fatalf("first form must be stale after reinitialization")
	}
	if second.Stale() {
		t.Fatalf("second form must be current")
	}
	if err := first.SetValue("name", "x"); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if _, err := first.Submit(context.Background()); !errors.Is(err, ErrStale) {
		t.Fatalf("expected stale submission failure, got %v", err)
	}
	if err := second.SetValue("name", "x"); err != nil {
		t.Fatalf("current form must accept values: %v", err)
	}
}

func TestInitialize_ValidateOnRender(t *testing.T) {
	engine := New(WithOptions(Options{ValidateOnRender: true}))
	form, err := engine.Initialize(context.Background(), formats.Input{
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"name"},
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
			},
		},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	result := form.LastResult()
	if result.Valid || len(result.Issues) == 0 {
		t.Fatalf("expected initial validation failure, got %#v", result)
	}
}

func TestInitialize_EmptyInputYieldsEmptyLiveForm(t *testing.T) {
	engine := New()
	form, err := engine.Initialize(context.Background(), formats.Input{})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if form.State() != StateLive {
		t.Fatalf("expected live form, got %q", form.State())
	}

	doc, err := form.FormatData()
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty document, got %#v", doc)
	}

	result, err := form.Validate()
	if err != nil || !result.Valid {
		t.Fatalf("empty forms always validate, got %#v %v", result, err)
	}
}

func TestInitialize_SynthesizesSchemaFromLayout(t *testing.T) {
	engine := New()
	form, err := engine.Initialize(context.Background(), formats.Input{
		Layout: []any{
			map[string]any{"key": "title"},
			map[string]any{"key": "count", "type": "number"},
		},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	props, ok := form.Schema()["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected synthesized properties, got %#v", form.Schema())
	}
	count, _ := props["count"].(map[string]any)
	if count["type"] != "number" {
		t.Fatalf("expected number type from control hint, got %#v", count)
	}
	if err := form.SetValue("title", "hello"); err != nil {
		t.Fatalf("synthesized field must be bound: %v", err)
	}
}

func TestInitialize_HintFSAnnotatesSchema(t *testing.T) {
	fsys := fstest.MapFS{
		"hints/form.yaml": &fstest.MapFile{Data: []byte("bio:\n  ui:widget: textarea\n")},
	}
	engine := New(WithHintFS(fsys))
	form, err := engine.Initialize(context.Background(), formats.Input{
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"bio": map[string]any{"type": "string"},
			},
		},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	node, ok := form.Layout().NodeAt("/0")
	if !ok || node.Key != "bio" {
		t.Fatalf("expected bio node, got %#v", node)
	}
	if node.Widget != "textarea" {
		t.Fatalf("expected hint-driven widget, got %q", node.Widget)
	}
}

func TestInitialize_CircularSchemaStaysBounded(t *testing.T) {
	engine := New()
	form, err := engine.Initialize(context.Background(), formats.Input{
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":   map[string]any{"type": "string"},
				"parent": map[string]any{"$ref": "#"},
			},
		},
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	target, ok := form.CircularRefs()["/properties/parent"]
	if !ok || target != "" {
		t.Fatalf("expected circular record targeting the root, got %#v", form.CircularRefs())
	}

	if err := form.SetValue("name", "n"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	doc, err := form.FormatData()
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	marker, ok := doc["parent"].(map[string]any)
	if !ok || marker["$ref"] != "#" {
		t.Fatalf("expected literal marker at circular site, got %#v", doc["parent"])
	}
}
