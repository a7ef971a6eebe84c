// Package formbridge reconciles JSON Schema documents, layout descriptions,
// UI hints, and initial data, in any of the popular form-library dialects,
// into one renderer-agnostic live form. The root package re-exports the
// pieces most callers need; the pkg tree holds the full surfaces.
package formbridge

import (
	"github.com/goliatone/go-formbridge/pkg/binding"
	"github.com/goliatone/go-formbridge/pkg/formats"
	"github.com/goliatone/go-formbridge/pkg/jsonschema"
	"github.com/goliatone/go-formbridge/pkg/layout"
	"github.com/goliatone/go-formbridge/pkg/orchestrator"
	"github.com/goliatone/go-formbridge/pkg/validation"
)

// Core types.
type (
	Engine     = orchestrator.Engine
	Form       = orchestrator.Form
	Options    = orchestrator.Options
	Option     = orchestrator.Option
	State      = orchestrator.State
	Change     = orchestrator.Change
	Input      = formats.Input
	Normalized = formats.Normalized
	Convention = formats.Convention
	LayoutTree = layout.Tree
	LayoutNode = layout.Node
	Template   = layout.Template
	DataMaps   = binding.Maps
	Validator  = validation.Validator
	Issue      = validation.Issue
)

// New constructs an engine with the default stack.
var New = orchestrator.New

// Engine options.
var (
	WithOptions           = orchestrator.WithOptions
	WithValidationAdapter = orchestrator.WithValidationAdapter
	WithResolveOptions    = orchestrator.WithResolveOptions
	WithLogger            = orchestrator.WithLogger
	WithHintFS            = orchestrator.WithHintFS
)

// Normalize reconciles raw inputs without building a form.
var Normalize = formats.Normalize

// Resolution entry points for callers that only need schema processing.
var (
	NewResolver        = jsonschema.NewResolver
	SynthesizeFromData = jsonschema.SynthesizeFromData
)

// Lifecycle states.
const (
	StateUninitialized = orchestrator.StateUninitialized
	StateLive          = orchestrator.StateLive
	StateSubmitted     = orchestrator.StateSubmitted
)

// Sentinel errors.
var (
	ErrStale   = orchestrator.ErrStale
	ErrInvalid = orchestrator.ErrInvalid
)
