package formats

// Convention tags which compatibility dialect the combined input followed.
// The tag travels with the normalized result so later stages can apply
// dialect-specific quirks.
type Convention string

const (
	// ConventionNone means no combined object was recognized.
	ConventionNone Convention = ""
	// ConventionReact covers combined objects shaped {schema, uiSchema, formData}.
	ConventionReact Convention = "react"
	// ConventionJSONForm covers combined objects shaped {schema, form, value}.
	ConventionJSONForm Convention = "jsonform"
	// ConventionAngular covers combined objects shaped {schema, layout, data}
	// or a combined object used directly as a layout array.
	ConventionAngular Convention = "angular"
)

// facetRule pairs a predicate/extractor over the raw input. Rules run in
// fixed precedence order; the first rule that yields a value wins.
type facetRule struct {
	name string
	pick func(Input) (any, bool)
}

func firstMatch(rules []facetRule, input Input) (any, bool) {
	for _, rule := range rules {
		if value, ok := rule.pick(input); ok {
			return value, true
		}
	}
	return nil, false
}

// combinedKeys are the wrapper fields each convention reserves. They are
// stripped before the combined object is reinterpreted wholesale as a
// properties bag.
var combinedKeys = map[string]struct{}{
	"schema":          {},
	"JSONSchema":      {},
	"form":            {},
	"layout":          {},
	"data":            {},
	"value":           {},
	"formData":        {},
	"formValues":      {},
	"uiSchema":        {},
	"customFormItems": {},
	"options":         {},
}

var schemaRules = []facetRule{
	{name: "direct", pick: func(in Input) (any, bool) {
		return pickMapWithout(in.Schema, "JSONSchema")
	}},
	{name: "combined.schema", pick: func(in Input) (any, bool) {
		return pickField(in.Combined, "schema")
	}},
	{name: "direct.JSONSchema", pick: func(in Input) (any, bool) {
		return pickField(in.Schema, "JSONSchema")
	}},
	{name: "combined.JSONSchema", pick: func(in Input) (any, bool) {
		return pickField(in.Combined, "JSONSchema")
	}},
	{name: "combined-as-bag", pick: func(in Input) (any, bool) {
		payload, ok := in.Combined.(map[string]any)
		if !ok {
			return nil, false
		}
		bag := make(map[string]any, len(payload))
		for key, value := range payload {
			if _, reserved := combinedKeys[key]; reserved {
				continue
			}
			bag[key] = value
		}
		if len(bag) == 0 {
			return nil, false
		}
		return bag, true
	}},
}

var layoutRules = []facetRule{
	{name: "direct", pick: func(in Input) (any, bool) {
		return pickSlice(in.Layout)
	}},
	{name: "combined-as-layout", pick: func(in Input) (any, bool) {
		return pickSlice(in.Combined)
	}},
	{name: "combined.form", pick: func(in Input) (any, bool) {
		value, ok := pickField(in.Combined, "form")
		if !ok {
			return nil, false
		}
		return pickSlice(value)
	}},
	{name: "combined.layout", pick: func(in Input) (any, bool) {
		value, ok := pickField(in.Combined, "layout")
		if !ok {
			return nil, false
		}
		return pickSlice(value)
	}},
}

var dataRules = []facetRule{
	{name: "direct", pick: func(in Input) (any, bool) {
		return pickMapWithout(in.Data, "formValues", "formData")
	}},
	{name: "direct.formValues", pick: func(in Input) (any, bool) {
		return pickField(in.Data, "formValues")
	}},
	{name: "combined.value", pick: func(in Input) (any, bool) {
		return pickField(in.Combined, "value")
	}},
	{name: "combined.data", pick: func(in Input) (any, bool) {
		return pickField(in.Combined, "data")
	}},
	{name: "direct.formData", pick: func(in Input) (any, bool) {
		return pickField(in.Data, "formData")
	}},
	{name: "combined.formData", pick: func(in Input) (any, bool) {
		return pickField(in.Combined, "formData")
	}},
}

var hintRules = []facetRule{
	{name: "direct", pick: func(in Input) (any, bool) {
		if m, ok := in.UIHints.(map[string]any); ok && len(m) > 0 {
			return m, true
		}
		return nil, false
	}},
	{name: "combined.uiSchema", pick: func(in Input) (any, bool) {
		return pickField(in.Combined, "uiSchema")
	}},
	{name: "combined.customFormItems", pick: func(in Input) (any, bool) {
		return pickField(in.Combined, "customFormItems")
	}},
}

func detectConvention(combined any) Convention {
	if _, ok := combined.([]any); ok {
		return ConventionAngular
	}
	payload, ok := combined.(map[string]any)
	if !ok || len(payload) == 0 {
		return ConventionNone
	}
	if hasAny(payload, "uiSchema", "formData", "JSONSchema") {
		return ConventionReact
	}
	if hasAny(payload, "form", "value", "customFormItems") {
		return ConventionJSONForm
	}
	if hasAny(payload, "layout", "data", "schema") {
		return ConventionAngular
	}
	return ConventionNone
}

func hasAny(payload map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := payload[key]; ok {
			return true
		}
	}
	return false
}

// pickField extracts a named non-empty field from a map-shaped container.
func pickField(container any, key string) (any, bool) {
	payload, ok := container.(map[string]any)
	if !ok {
		return nil, false
	}
	value, ok := payload[key]
	if !ok || value == nil {
		return nil, false
	}
	if m, ok := value.(map[string]any); ok && len(m) == 0 {
		return nil, false
	}
	return value, true
}

// pickMapWithout accepts a map only when it is not merely a wrapper around
// one of the named legacy fields.
func pickMapWithout(container any, wrapperKeys ...string) (any, bool) {
	payload, ok := container.(map[string]any)
	if !ok || len(payload) == 0 {
		return nil, false
	}
	for key := range payload {
		wrapped := false
		for _, wrapper := range wrapperKeys {
			if key == wrapper {
				wrapped = true
				break
			}
		}
		if !wrapped {
			return payload, true
		}
	}
	return nil, false
}

func pickSlice(value any) (any, bool) {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	return list, true
}
