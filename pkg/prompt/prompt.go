// Package prompt binds a live form to an interactive terminal session. Each
// value-bearing control becomes one prompt; answers flow back through the
// form's control surface so validation and re-emission behave exactly as they
// do for any other caller.
package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbridge/pkg/binding"
	"github.com/goliatone/go-formbridge/pkg/layout"
	"github.com/goliatone/go-formbridge/pkg/orchestrator"
)

// Driver abstracts the terminal interaction so sessions can run against a
// scripted driver in tests.
type Driver interface {
	Input(ctx context.Context, label, help, defaultValue string) (string, error)
	Confirm(ctx context.Context, label string, defaultValue bool) (bool, error)
	Select(ctx context.Context, label string, options []string, defaultValue string) (string, error)
}

// Fill walks the form's controls in layout order and prompts for each one.
// Circular sites and pass-through controls are skipped; array controls loop
// on a confirmation prompt, growing the form one item at a time.
func Fill(ctx context.Context, driver Driver, form *orchestrator.Form) error {
	for _, node := range form.Layout().Terminals() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if node.Circular {
			continue
		}
		if node.ArrayItem != nil {
			if err := fillArray(ctx, driver, form, node); err != nil {
				return err
			}
			continue
		}
		if err := fillLeaf(ctx, driver, form, node, dataPath(node.DataPointer)); err != nil {
			return err
		}
	}
	return nil
}

func fillArray(ctx context.Context, driver Driver, form *orchestrator.Form, node layout.Node) error {
	arrayPath := dataPath(node.DataPointer)
	count := form.Maps().Arrays[arrayPath]

	// Existing items first, then offer to append.
	for idx := 0; idx < count; idx++ {
		if err := fillLeaf(ctx, driver, form, *node.ArrayItem, arrayPath+"."+strconv.Itoa(idx)); err != nil {
			return err
		}
	}
	for {
		more, err := driver.Confirm(ctx, fmt.Sprintf("Add %s item?", labelFor(node)), false)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if err := form.AddArrayItem(arrayPath); err != nil {
			return err
		}
		if err := fillLeaf(ctx, driver, form, *node.ArrayItem, arrayPath+"."+strconv.Itoa(count)); err != nil {
			return err
		}
		count++
	}
}

func fillLeaf(ctx context.Context, driver Driver, form *orchestrator.Form, node layout.Node, path string) error {
	label := labelFor(node)
	current, _ := form.Value(path)
	if current == nil {
		current = node.Default
	}

	switch {
	case node.Widget == layout.WidgetCheckbox:
		answer, err := driver.Confirm(ctx, label, current == true)
		if err != nil {
			return err
		}
		return form.SetValue(path, answer)
	case len(node.Enum) > 0:
		options := make([]string, len(node.Enum))
		for idx, option := range node.Enum {
			options[idx] = fmt.Sprint(option)
		}
		answer, err := driver.Select(ctx, label, options, asString(current))
		if err != nil {
			return err
		}
		return form.SetValue(path, answer)
	case node.Widget == layout.WidgetNumber:
		answer, err := driver.Input(ctx, label, node.Description, asString(current))
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if err != nil {
			return fmt.Errorf("prompt: %s expects a number: %w", path, err)
		}
		return form.SetValue(path, parsed)
	default:
		answer, err := driver.Input(ctx, label, node.Description, asString(current))
		if err != nil {
			return err
		}
		if answer == "" && current == nil {
			return nil
		}
		return form.SetValue(path, answer)
	}
}

func labelFor(node layout.Node) string {
	if node.Title != "" {
		return node.Title
	}
	return node.Key
}

func asString(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func dataPath(pointer string) string {
	return binding.PathFromPointer(pointer)
}
