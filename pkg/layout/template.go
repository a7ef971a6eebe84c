package layout

// The binding template summarizes, per value-bearing control, the default
// value and the validator rules the external form-binding collaborator must
// enforce. The engine produces it during layout building; it never interprets
// it further.

const (
	RuleRequired  = "required"
	RuleMin       = "min"
	RuleMax       = "max"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePattern   = "pattern"
)

// Rule is one validation constraint implied by the schema.
type Rule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// TemplateField binds one control path to its default value and rules.
type TemplateField struct {
	// Path is the dotted data path; array item templates carry the "-"
	// placeholder ("tags.-").
	Path    string `json:"path"`
	Pointer string `json:"pointer"`
	Widget  string `json:"widget"`
	Default any    `json:"default,omitempty"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Template is the reactive-binding template for one form generation.
type Template struct {
	Fields []TemplateField `json:"fields"`
}

// Field looks up a template entry by its data path.
func (t Template) Field(path string) (TemplateField, bool) {
	for _, field := range t.Fields {
		if field.Path == path {
			return field, true
		}
	}
	return TemplateField{}, false
}
