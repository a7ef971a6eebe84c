package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formbridge/pkg/binding"
	"github.com/goliatone/go-formbridge/pkg/formats"
	"github.com/goliatone/go-formbridge/pkg/jsonschema"
	"github.com/goliatone/go-formbridge/pkg/layout"
	"github.com/goliatone/go-formbridge/pkg/validation"
)

// ErrStale rejects mutations on a form superseded by a later initialization.
var ErrStale = errors.New("orchestrator: form superseded by a newer generation")

// ErrInvalid marks a submission whose document failed validation.
var ErrInvalid = errors.New("orchestrator: document failed validation")

// Change describes one applied mutation together with the re-emitted
// document.
type Change struct {
	Path     string
	Value    any
	Document map[string]any
}

// Form is one live generation of the pipeline output. All mutations are
// serialized; event handlers run outside the lock, after the mutation that
// triggered them.
type Form struct {
	engine     *Engine
	generation uint64

	mu         sync.Mutex
	state      State
	convention formats.Convention
	schema     map[string]any
	library    map[string]map[string]any
	circular   map[string]string
	issues     []jsonschema.Issue
	tree       layout.Tree
	template   layout.Template
	maps       binding.Maps
	controls   *binding.Controls
	validator  validation.Validator
	counts     map[string]int
	lastResult validation.Result

	onChange   []func(Change)
	onValidity []func(bool)
	onErrors   []func([]validation.Issue)
	onSubmit   []func(map[string]any)
}

func (f *Form) lock() {
	f.mu.Lock()
}

func (f *Form) unlock() {
	f.mu.Unlock()
}

// Stale reports whether a newer initialization has superseded this form.
func (f *Form) Stale() bool {
	return f.engine.generation.Load() != f.generation
}

// State returns the current lifecycle state.
func (f *Form) State() State {
	f.lock()
	defer f.unlock()
	return f.state
}

// Generation returns the generation this form belongs to.
func (f *Form) Generation() uint64 {
	return f.generation
}

// Convention returns the input dialect the form will honor when emitting.
func (f *Form) Convention() formats.Convention {
	return f.convention
}

// Schema returns the resolved schema tree. Callers must not mutate it.
func (f *Form) Schema() map[string]any {
	return f.schema
}

// Layout returns the canonical layout tree.
func (f *Form) Layout() layout.Tree {
	return f.tree
}

// Template returns the reactive-binding template.
func (f *Form) Template() layout.Template {
	return f.template
}

// Maps returns the current data map.
func (f *Form) Maps() binding.Maps {
	f.lock()
	defer f.unlock()
	return f.maps
}

// Library returns the reference library recorded during resolution.
func (f *Form) Library() map[string]map[string]any {
	return f.library
}

// CircularRefs maps circular reference sites to their targets.
func (f *Form) CircularRefs() map[string]string {
	return f.circular
}

// ResolutionIssues lists the non-fatal reference problems found during
// initialization.
func (f *Form) ResolutionIssues() []jsonschema.Issue {
	return f.issues
}

// OnChange registers a handler fired after every applied mutation.
func (f *Form) OnChange(fn func(Change)) {
	f.lock()
	defer f.unlock()
	f.onChange = append(f.onChange, fn)
}

// OnValidity registers a handler fired with the document's validity after
// each validated change.
func (f *Form) OnValidity(fn func(bool)) {
	f.lock()
	defer f.unlock()
	f.onValidity = append(f.onValidity, fn)
}

// OnErrors registers a handler fired with the issue list after each
// validated change.
func (f *Form) OnErrors(fn func([]validation.Issue)) {
	f.lock()
	defer f.unlock()
	f.onErrors = append(f.onErrors, fn)
}

// OnSubmit registers a handler fired with the final document on successful
// submission.
func (f *Form) OnSubmit(fn func(map[string]any)) {
	f.lock()
	defer f.unlock()
	f.onSubmit = append(f.onSubmit, fn)
}

// SetValue updates one control and re-emits the document. Unknown control
// paths are rejected; mutations on a stale form fail with ErrStale.
func (f *Form) SetValue(path string, value any) error {
	if f.Stale() {
		return ErrStale
	}
	f.lock()
	entry, ok := f.maps.Entry(path)
	if !ok {
		f.unlock()
		return fmt.Errorf("orchestrator: no control bound at %q", path)
	}
	f.controls.Set(path, value)
	document, err := binding.Format(f.maps, f.controls.Snapshot())
	if err != nil {
		f.unlock()
		return err
	}
	notify := f.afterChangeLocked(Change{Path: entry.DataPath, Value: value, Document: document})
	f.unlock()

	notify()
	return nil
}

// Value reads the current value of one control.
func (f *Form) Value(path string) (any, bool) {
	return f.controls.Get(path)
}

// AddArrayItem grows the named array by one item and rebuilds the data map.
// New item controls are seeded from the item template's default when one is
// declared.
func (f *Form) AddArrayItem(arrayPath string) error {
	if f.Stale() {
		return ErrStale
	}
	f.lock()
	count, ok := f.counts[arrayPath]
	if !ok {
		f.unlock()
		return fmt.Errorf("orchestrator: no array bound at %q", arrayPath)
	}
	f.counts[arrayPath] = count + 1
	f.rebuildMapsLocked()

	if field, ok := f.template.Field(templateItemPath(arrayPath)); ok && field.Default != nil {
		f.controls.Set(arrayPath+"."+strconv.Itoa(count), field.Default)
	}

	document, err := binding.Format(f.maps, f.controls.Snapshot())
	if err != nil {
		f.unlock()
		return err
	}
	notify := f.afterChangeLocked(Change{Path: arrayPath, Document: document})
	f.unlock()

	notify()
	return nil
}

// RemoveArrayItem drops one item from the named array, shifting the values of
// later items down by one index.
func (f *Form) RemoveArrayItem(arrayPath string, index int) error {
	if f.Stale() {
		return ErrStale
	}
	f.lock()
	count, ok := f.counts[arrayPath]
	if !ok {
		f.unlock()
		return fmt.Errorf("orchestrator: no array bound at %q", arrayPath)
	}
	if index < 0 || index >= count {
		f.unlock()
		return fmt.Errorf("orchestrator: array %q has no item %d", arrayPath, index)
	}

	// Two phases: collect the shifted values first, write them after every
	// affected path is deleted. Interleaving delete and set would clobber a
	// shifted value whenever the map iterates items out of index order.
	prefix := arrayPath + "."
	moved := make(map[string]any)
	for path, value := range f.controls.Snapshot() {
		itemIdx, tail, ok := splitItemPath(path, prefix)
		if !ok || itemIdx < index {
			continue
		}
		f.controls.Delete(path)
		if itemIdx > index {
			moved[joinItemPath(prefix, itemIdx-1, tail)] = value
		}
	}
	for path, value := range moved {
		f.controls.Set(path, value)
	}

	// Nested array counts travel with their item the same way the values do.
	movedCounts := make(map[string]int)
	for path, nested := range f.counts {
		itemIdx, tail, ok := splitItemPath(path, prefix)
		if !ok || itemIdx < index {
			continue
		}
		delete(f.counts, path)
		if itemIdx > index {
			movedCounts[joinItemPath(prefix, itemIdx-1, tail)] = nested
		}
	}
	for path, nested := range movedCounts {
		f.counts[path] = nested
	}

	f.counts[arrayPath] = count - 1
	f.rebuildMapsLocked()

	document, err := binding.Format(f.maps, f.controls.Snapshot())
	if err != nil {
		f.unlock()
		return err
	}
	notify := f.afterChangeLocked(Change{Path: arrayPath, Document: document})
	f.unlock()

	notify()
	return nil
}

// FormatData re-emits the nested document from the current control values.
func (f *Form) FormatData() (map[string]any, error) {
	f.lock()
	defer f.unlock()
	return binding.Format(f.maps, f.controls.Snapshot())
}

// Validate checks the current document. Forms with no validator (empty
// schemas) always validate.
func (f *Form) Validate() (validation.Result, error) {
	document, err := f.FormatData()
	if err != nil {
		return validation.Result{}, err
	}
	f.lock()
	defer f.unlock()
	if f.validator == nil {
		f.lastResult = validation.Result{Valid: true}
		return f.lastResult, nil
	}
	f.lastResult = f.validator.Validate(document)
	return f.lastResult, nil
}

// LastResult returns the most recent validation outcome.
func (f *Form) LastResult() validation.Result {
	f.lock()
	defer f.unlock()
	return f.lastResult
}

// Submit validates and, when valid, emits the final document and moves the
// form to the submitted state. Stale forms cannot submit.
func (f *Form) Submit(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Stale() {
		return nil, ErrStale
	}

	result, err := f.Validate()
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %d issue(s)", ErrInvalid, len(result.Issues))
	}

	document, err := f.FormatData()
	if err != nil {
		return nil, err
	}

	f.lock()
	f.state = StateSubmitted
	handlers := append([]func(map[string]any){}, f.onSubmit...)
	f.unlock()

	for _, fn := range handlers {
		fn(document)
	}
	return document, nil
}

// afterChangeLocked captures the handlers and, when a validator is present,
// the validation outcome for the new document. The returned closure fires
// everything outside the lock.
func (f *Form) afterChangeLocked(change Change) func() {
	changeHandlers := append([]func(Change){}, f.onChange...)
	validityHandlers := append([]func(bool){}, f.onValidity...)
	errorHandlers := append([]func([]validation.Issue){}, f.onErrors...)

	validated := false
	var result validation.Result
	if f.validator != nil {
		result = f.validator.Validate(change.Document)
		f.lastResult = result
		validated = true
	}

	return func() {
		for _, fn := range changeHandlers {
			fn(change)
		}
		if !validated {
			return
		}
		for _, fn := range validityHandlers {
			fn(result.Valid)
		}
		for _, fn := range errorHandlers {
			fn(result.Issues)
		}
	}
}

// rebuildMapsLocked regenerates the data map from the current counts and
// folds the result's array set back into them, so arrays that first appear
// with a new item (nested arrays of that item) become addressable.
func (f *Form) rebuildMapsLocked() {
	f.maps = binding.Rebuild(f.tree, f.counts, f.circular)
	for path, count := range f.maps.Arrays {
		f.counts[path] = count
	}
}

// splitItemPath splits "tags.2.rest" around prefix "tags." into (2, "rest").
func splitItemPath(path, prefix string) (int, string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return 0, "", false
	}
	head, tail, _ := strings.Cut(path[len(prefix):], ".")
	itemIdx, err := strconv.Atoi(head)
	if err != nil {
		return 0, "", false
	}
	return itemIdx, tail, true
}

func joinItemPath(prefix string, itemIdx int, tail string) string {
	out := prefix + strconv.Itoa(itemIdx)
	if tail != "" {
		out += "." + tail
	}
	return out
}

// templateItemPath names the item template entry of an array control.
func templateItemPath(arrayPath string) string {
	return arrayPath + ".-"
}
