// Package openapi extracts form inputs from OpenAPI documents. An operation's
// JSON request body schema becomes the combined payload the normalizer
// already understands, so OpenAPI-described endpoints feed the same pipeline
// as hand-written schemas.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Extractor loads OpenAPI documents and pulls out request body schemas.
type Extractor struct {
	allowExternal bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithExternalRefs allows the loader to follow references into other
// documents. Off by default.
func WithExternalRefs(allow bool) Option {
	return func(e *Extractor) {
		e.allowExternal = allow
	}
}

// NewExtractor constructs an extractor.
func NewExtractor(opts ...Option) *Extractor {
	extractor := &Extractor{}
	for _, opt := range opts {
		opt(extractor)
	}
	return extractor
}

// Combined returns the combined form input for one operation: a map holding
// the operation's application/json request schema under "schema". With an
// empty operationID the document must contain exactly one operation carrying
// a JSON request body.
func (e *Extractor) Combined(ctx context.Context, raw []byte, operationID string) (map[string]any, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = e.allowExternal

	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: invalid document: %w", err)
	}

	operation, err := findOperation(doc, operationID)
	if err != nil {
		return nil, err
	}

	schemaRef := jsonRequestSchema(operation)
	if schemaRef == nil || schemaRef.Value == nil {
		return nil, fmt.Errorf("openapi: operation %s has no application/json request schema", describeOperation(operation, operationID))
	}

	encoded, err := schemaRef.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("openapi: encode schema: %w", err)
	}
	var schemaTree map[string]any
	if err := json.Unmarshal(encoded, &schemaTree); err != nil {
		return nil, fmt.Errorf("openapi: decode schema: %w", err)
	}

	return map[string]any{"schema": schemaTree}, nil
}

func findOperation(doc *openapi3.T, operationID string) (*openapi3.Operation, error) {
	var candidates []*openapi3.Operation
	if doc.Paths != nil {
		for _, item := range doc.Paths.Map() {
			for _, operation := range item.Operations() {
				if operation == nil {
					continue
				}
				if operationID != "" {
					if operation.OperationID == operationID {
						return operation, nil
					}
					continue
				}
				if jsonRequestSchema(operation) != nil {
					candidates = append(candidates, operation)
				}
			}
		}
	}

	if operationID != "" {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}
	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return nil, fmt.Errorf("openapi: no operation with a JSON request body")
	default:
		return nil, fmt.Errorf("openapi: %d operations carry JSON request bodies, pick one by id", len(candidates))
	}
}

func jsonRequestSchema(operation *openapi3.Operation) *openapi3.SchemaRef {
	if operation == nil || operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	media := operation.RequestBody.Value.Content.Get("application/json")
	if media == nil {
		return nil
	}
	return media.Schema
}

func describeOperation(operation *openapi3.Operation, fallback string) string {
	if operation != nil && operation.OperationID != "" {
		return operation.OperationID
	}
	if fallback != "" {
		return fallback
	}
	return "(anonymous)"
}
