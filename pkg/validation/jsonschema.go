package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-formbridge/pkg/schema"
)

// SchemaAdapter validates with the santhosh-tekuri JSON Schema compiler. It
// is the default adapter the engine installs when none is configured.
type SchemaAdapter struct{}

// NewSchemaAdapter returns the default adapter.
func NewSchemaAdapter() *SchemaAdapter {
	return &SchemaAdapter{}
}

// Compile builds a validator for the given schema tree. An empty tree
// compiles to the permissive schema, which accepts every document.
func (a *SchemaAdapter) Compile(schemaTree map[string]any) (Validator, error) {
	raw, err := json.Marshal(schemaTree)
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation: parse schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("form.json", doc); err != nil {
		return nil, fmt.Errorf("validation: register schema: %w", err)
	}
	compiled, err := compiler.Compile("form.json")
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}
	return &schemaValidator{compiled: compiled}, nil
}

type schemaValidator struct {
	compiled *jsonschema.Schema
}

func (v *schemaValidator) Validate(document map[string]any) Result {
	raw, err := json.Marshal(document)
	if err != nil {
		return Result{Issues: []Issue{{Message: fmt.Sprintf("encode document: %v", err)}}}
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return Result{Issues: []Issue{{Message: fmt.Sprintf("decode document: %v", err)}}}
	}

	if err := v.compiled.Validate(instance); err != nil {
		var validationErr *jsonschema.ValidationError
		if !errors.As(err, &validationErr) {
			return Result{Issues: []Issue{{Message: err.Error()}}}
		}
		return Result{Issues: flatten(validationErr)}
	}
	return Result{Valid: true}
}

var printer = message.NewPrinter(language.English)

// flatten collects the leaf causes of a validation error tree.
func flatten(err *jsonschema.ValidationError) []Issue {
	if len(err.Causes) == 0 {
		issue := Issue{
			Path:    schema.JoinPointer("", err.InstanceLocation...),
			Message: err.ErrorKind.LocalizedString(printer),
		}
		if keyword := err.ErrorKind.KeywordPath(); len(keyword) > 0 {
			issue.Constraint = keyword[len(keyword)-1]
		}
		return []Issue{issue}
	}
	var out []Issue
	for _, cause := range err.Causes {
		out = append(out, flatten(cause)...)
	}
	return out
}
