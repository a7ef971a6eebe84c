package validation

import "testing"

func compileOrFail(t *testing.T, schemaTree map[string]any) Validator {
	t.Helper()
	validator, err := NewSchemaAdapter().Compile(schemaTree)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return validator
}

func TestValidate_PassesConformingDocument(t *testing.T) {
	validator := compileOrFail(t, map[string]any{
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": float64(2)},
		},
	})

	result := validator.Validate(map[string]any{"name": "Ada"})
	if !result.Valid || len(result.Issues) != 0 {
		t.Fatalf("expected valid result, got %#v", result)
	}
}

func TestValidate_ReportsLeafIssues(t *testing.T) {
	validator := compileOrFail(t, map[string]any{
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"age":  map[string]any{"type": "integer", "minimum": float64(0)},
		},
	})

	result := validator.Validate(map[string]any{"age": float64(-3)})
	if result.Valid {
		t.Fatalf("expected failure, got %#v", result)
	}

	byPath := make(map[string]Issue, len(result.Issues))
	for _, issue := range result.Issues {
		byPath[issue.Path] = issue
	}
	if _, ok := byPath[""]; !ok {
		t.Fatalf("expected missing-required issue at root, got %#v", result.Issues)
	}
	ageIssue, ok := byPath["/age"]
	if !ok {
		t.Fatalf("expected minimum issue at /age, got %#v", result.Issues)
	}
	if ageIssue.Message == "" {
		t.Fatalf("expected populated message, got %#v", ageIssue)
	}
}

func TestValidate_EmptySchemaAcceptsAnything(t *testing.T) {
	validator := compileOrFail(t, map[string]any{})

	result := validator.Validate(map[string]any{"anything": []any{1, "x"}})
	if !result.Valid {
		t.Fatalf("empty schema must accept everything, got %#v", result)
	}
}
