package openapi

import (
	"context"
	"testing"
)

const petstore = `{
  "openapi": "3.0.3",
  "info": {"title": "pets", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "post": {
        "operationId": "createPet",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["name"],
                "properties": {
                  "name": {"type": "string"},
                  "age": {"type": "integer"}
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      },
      "get": {
        "operationId": "listPets",
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`

func TestCombined_ByOperationID(t *testing.T) {
	combined, err := NewExtractor().Combined(context.Background(), []byte(petstore), "createPet")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	schemaTree, ok := combined["schema"].(map[string]any)
	if !ok {
		t.Fatalf("expected schema payload, got %#v", combined)
	}
	props, ok := schemaTree["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties, got %#v", schemaTree)
	}
	if _, ok := props["name"]; !ok {
		t.Fatalf("expected name property, got %#v", props)
	}
}

func TestCombined_SingleBodyWithoutID(t *testing.T) {
	combined, err := NewExtractor().Combined(context.Background(), []byte(petstore), "")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if _, ok := combined["schema"]; !ok {
		t.Fatalf("expected schema payload, got %#v", combined)
	}
}

func TestCombined_UnknownOperation(t *testing.T) {
	_, err := NewExtractor().Combined(context.Background(), []byte(petstore), "deletePet")
	if err == nil {
		t.Fatalf("expected error for unknown operation")
	}
}

func TestCombined_OperationWithoutBody(t *testing.T) {
	_, err := NewExtractor().Combined(context.Background(), []byte(petstore), "listPets")
	if err == nil {
		t.Fatalf("expected error for bodiless operation")
	}
}
