// Package orchestrator drives the full reconciliation pipeline: input
// normalization, schema synthesis, reference resolution, layout building, and
// data mapping. The result is a live Form whose flat control values stay
// bound to the nested data document until the next initialization supersedes
// it.
package orchestrator

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"

	"github.com/goliatone/go-formbridge/pkg/binding"
	"github.com/goliatone/go-formbridge/pkg/formats"
	"github.com/goliatone/go-formbridge/pkg/jsonschema"
	"github.com/goliatone/go-formbridge/pkg/layout"
	"github.com/goliatone/go-formbridge/pkg/uischema"
	"github.com/goliatone/go-formbridge/pkg/validation"
)

// State names the lifecycle phases of a form.
type State string

const (
	StateUninitialized  State = "uninitialized"
	StateNormalizing    State = "normalizing"
	StateResolving      State = "resolving"
	StateLayoutBuilding State = "layout_building"
	StateMapped         State = "mapped"
	StateLive           State = "live"
	StateSubmitted      State = "submitted"
	StateReinitializing State = "reinitializing"
)

// Options tunes engine behavior.
type Options struct {
	// Debug enables verbose pipeline logging.
	Debug bool
	// LoadExternalAssets is passed through to rendering adapters; the engine
	// itself never fetches anything.
	LoadExternalAssets bool
	// Framework overrides the detected input convention when emitting.
	Framework formats.Convention
	// ValidateOnRender validates the initial document as soon as the form
	// goes live instead of waiting for the first change.
	ValidateOnRender bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithOptions replaces the engine options wholesale.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithValidationAdapter swaps the validation backend.
func WithValidationAdapter(adapter validation.Adapter) Option {
	return func(e *Engine) {
		if adapter != nil {
			e.adapter = adapter
		}
	}
}

// WithResolveOptions tunes reference resolution.
func WithResolveOptions(opts jsonschema.ResolveOptions) Option {
	return func(e *Engine) {
		e.resolver = jsonschema.NewResolver(opts)
	}
}

// WithLogger installs a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHintFS loads UI hint documents from the filesystem on every
// initialization and layers them under the hints supplied with the input.
func WithHintFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.hintFS = fsys
	}
}

// Engine builds live forms. One engine may initialize many forms; each
// initialization bumps the generation and makes prior forms stale.
type Engine struct {
	opts       Options
	adapter    validation.Adapter
	resolver   *jsonschema.Resolver
	builder    *layout.Builder
	logger     *slog.Logger
	hintFS     fs.FS
	generation atomic.Uint64
}

// New constructs an engine with the default validation adapter and resolver.
func New(opts ...Option) *Engine {
	engine := &Engine{
		adapter:  validation.NewSchemaAdapter(),
		resolver: jsonschema.NewResolver(jsonschema.ResolveOptions{}),
		builder:  layout.NewBuilder(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Initialize runs the pipeline over one input set and returns the live form.
// Any form from a previous initialization becomes stale: its mutations are
// rejected and its pending emissions must be dropped by the caller.
func (e *Engine) Initialize(ctx context.Context, input formats.Input) (*Form, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	generation := e.generation.Add(1)
	if generation > 1 {
		e.debug("form superseded", slog.Uint64("generation", generation))
	}

	e.debug("state", slog.String("state", string(StateNormalizing)))
	norm := formats.Normalize(input)
	schemaTree := e.synthesizeIfMissing(norm)

	e.debug("state", slog.String("state", string(StateResolving)))
	resolved := e.resolver.Resolve(schemaTree)
	for _, issue := range resolved.Issues {
		e.logger.Warn("reference resolution issue",
			slog.String("pointer", issue.Pointer),
			slog.String("ref", issue.Ref),
			slog.String("message", issue.Message))
	}

	hints := uischema.Parse(norm.UIHints)
	if e.hintFS != nil {
		loaded, err := uischema.LoadFS(e.hintFS)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load hint documents: %w", err)
		}
		hints = hints.Merge(loaded)
	}
	hints.Apply(resolved.Schema)

	e.debug("state", slog.String("state", string(StateLayoutBuilding)))
	tree, template, err := e.builder.Build(resolved.Schema, norm.Layout)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build layout: %w", err)
	}

	e.debug("state", slog.String("state", string(StateMapped)))
	maps, controls, err := binding.BuildMaps(tree, norm.Data, resolved.Circular)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build data maps: %w", err)
	}

	var validator validation.Validator
	if !tree.Empty() {
		validator, err = e.adapter.Compile(resolved.Schema)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: compile validator: %w", err)
		}
	}

	counts := make(map[string]int, len(maps.Arrays))
	for path, count := range maps.Arrays {
		counts[path] = count
	}

	form := &Form{
		engine:     e,
		generation: generation,
		state:      StateLive,
		convention: e.convention(norm.Convention),
		schema:     resolved.Schema,
		library:    resolved.Library,
		circular:   resolved.Circular,
		issues:     resolved.Issues,
		tree:       tree,
		template:   template,
		maps:       maps,
		controls:   controls,
		validator:  validator,
		counts:     counts,
	}

	if e.opts.ValidateOnRender && validator != nil {
		document, err := form.FormatData()
		if err != nil {
			return nil, err
		}
		form.lastResult = validator.Validate(document)
	}

	e.debug("state", slog.String("state", string(StateLive)), slog.Uint64("generation", generation))
	return form, nil
}

// synthesizeIfMissing derives a schema when none was supplied: from explicit
// layout keys when the layout is closed, otherwise from the shape of the
// initial data.
func (e *Engine) synthesizeIfMissing(norm formats.Normalized) map[string]any {
	if len(norm.Schema) != 0 {
		return norm.Schema
	}
	if !jsonschema.LayoutHasWildcard(norm.Layout) {
		if synthesized := jsonschema.SynthesizeFromLayout(norm.Layout); len(synthesized) != 0 {
			e.debug("schema synthesized from layout")
			return synthesized
		}
	}
	if len(norm.Data) != 0 {
		e.debug("schema synthesized from data")
		return jsonschema.SynthesizeFromData(norm.Data)
	}
	return map[string]any{}
}

func (e *Engine) convention(detected formats.Convention) formats.Convention {
	if e.opts.Framework != formats.ConventionNone && e.opts.Framework != "" {
		return e.opts.Framework
	}
	return detected
}

// Generation returns the current generation counter.
func (e *Engine) Generation() uint64 {
	return e.generation.Load()
}

func (e *Engine) debug(msg string, args ...any) {
	if e.opts.Debug {
		e.logger.Debug(msg, args...)
	}
}
