// Package validation defines the pluggable validation surface of the engine.
// The engine compiles the resolved schema once per generation and validates
// emitted documents; the adapter decides how.
package validation

// Issue is a single validation failure, addressed by data path.
type Issue struct {
	// Path points at the failing value ("/address/city", "" for the root).
	Path       string `json:"path"`
	Message    string `json:"message"`
	Constraint string `json:"constraint,omitempty"`
}

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Validator checks documents against one compiled schema.
type Validator interface {
	Validate(document map[string]any) Result
}

// Adapter compiles a schema tree into a Validator. Implementations must
// treat the schema as read-only.
type Adapter interface {
	Compile(schemaTree map[string]any) (Validator, error)
}
