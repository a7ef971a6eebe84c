// Command formbridge runs the reconciliation pipeline from the command line.
// It accepts any mix of schema, layout, data, and UI hint documents (JSON or
// YAML), or an OpenAPI document plus operation id, and prints the resolved
// form bundle. With -interactive it fills the form on the terminal instead.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-formbridge/pkg/formats"
	"github.com/goliatone/go-formbridge/pkg/openapi"
	"github.com/goliatone/go-formbridge/pkg/orchestrator"
	"github.com/goliatone/go-formbridge/pkg/prompt"
	"github.com/goliatone/go-formbridge/pkg/schema"
)

type cliOptions struct {
	schemaPath   string
	layoutPath   string
	dataPath     string
	uiPath       string
	uiDir        string
	combinedPath string
	openapiPath  string
	operationID  string
	outputPath   string
	interactive  bool
	debug        bool
}

func main() {
	opts := cliOptions{}
	flag.StringVar(&opts.schemaPath, "schema", "", "path to a JSON Schema document (json or yaml)")
	flag.StringVar(&opts.layoutPath, "layout", "", "path to a layout document")
	flag.StringVar(&opts.dataPath, "data", "", "path to an initial data document")
	flag.StringVar(&opts.uiPath, "ui", "", "path to a UI hints document")
	flag.StringVar(&opts.uiDir, "ui-dir", "", "directory of UI hint documents, merged in walk order")
	flag.StringVar(&opts.combinedPath, "combined", "", "path to a combined form definition")
	flag.StringVar(&opts.openapiPath, "openapi", "", "path to an OpenAPI document")
	flag.StringVar(&opts.operationID, "operation", "", "OpenAPI operation id to build the form from")
	flag.StringVar(&opts.outputPath, "output", "", "write the result here instead of stdout")
	flag.BoolVar(&opts.interactive, "interactive", false, "fill the form interactively on the terminal")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("formbridge failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts cliOptions, logger *slog.Logger) error {
	input, err := buildInput(ctx, opts)
	if err != nil {
		return err
	}

	engineOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithOptions(orchestrator.Options{
			Debug:            opts.debug,
			ValidateOnRender: true,
		}),
	}
	if opts.uiDir != "" {
		engineOpts = append(engineOpts, orchestrator.WithHintFS(os.DirFS(opts.uiDir)))
	}
	engine := orchestrator.New(engineOpts...)
	form, err := engine.Initialize(ctx, input)
	if err != nil {
		return err
	}
	for _, issue := range form.ResolutionIssues() {
		logger.Warn("unresolved reference",
			slog.String("pointer", issue.Pointer),
			slog.String("ref", issue.Ref))
	}

	if opts.interactive {
		return runInteractive(ctx, form, opts.outputPath)
	}
	return writeBundle(form, opts.outputPath)
}

func buildInput(ctx context.Context, opts cliOptions) (formats.Input, error) {
	input := formats.Input{}
	var err error

	if input.Schema, err = decodeOptional(opts.schemaPath); err != nil {
		return input, err
	}
	if input.Layout, err = decodeOptional(opts.layoutPath); err != nil {
		return input, err
	}
	if input.Data, err = decodeOptional(opts.dataPath); err != nil {
		return input, err
	}
	if input.UIHints, err = decodeOptional(opts.uiPath); err != nil {
		return input, err
	}
	if input.Combined, err = decodeOptional(opts.combinedPath); err != nil {
		return input, err
	}

	if opts.openapiPath != "" {
		if input.Combined != nil {
			return input, errors.New("pick either -combined or -openapi, not both")
		}
		raw, err := os.ReadFile(opts.openapiPath)
		if err != nil {
			return input, fmt.Errorf("read %s: %w", opts.openapiPath, err)
		}
		input.Combined, err = openapi.NewExtractor().Combined(ctx, raw, opts.operationID)
		if err != nil {
			return input, err
		}
	}
	return input, nil
}

func decodeOptional(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFile(path), raw)
	if err != nil {
		return nil, err
	}
	return doc.Decode()
}

func runInteractive(ctx context.Context, form *orchestrator.Form, outputPath string) error {
	if err := prompt.Fill(ctx, prompt.NewSurveyDriver(), form); err != nil {
		return err
	}
	document, err := form.Submit(ctx)
	if err != nil {
		if errors.Is(err, orchestrator.ErrInvalid) {
			for _, issue := range form.LastResult().Issues {
				fmt.Fprintf(os.Stderr, "invalid: %s %s\n", issue.Path, issue.Message)
			}
		}
		return err
	}
	return writeJSON(document, outputPath)
}

// bundle is the non-interactive output shape: everything a renderer needs to
// draw the form.
type bundle struct {
	Schema   map[string]any    `json:"schema"`
	Layout   any               `json:"layout"`
	Template any               `json:"template"`
	Data     map[string]any    `json:"data"`
	Circular map[string]string `json:"circular,omitempty"`
	Valid    *bool             `json:"valid,omitempty"`
}

func writeBundle(form *orchestrator.Form, outputPath string) error {
	document, err := form.FormatData()
	if err != nil {
		return err
	}
	out := bundle{
		Schema:   form.Schema(),
		Layout:   form.Layout(),
		Template: form.Template(),
		Data:     document,
		Circular: form.CircularRefs(),
	}
	result := form.LastResult()
	out.Valid = &result.Valid
	return writeJSON(out, outputPath)
}

func writeJSON(payload any, outputPath string) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')
	if outputPath == "" {
		_, err = os.Stdout.Write(encoded)
		return err
	}
	return os.WriteFile(outputPath, encoded, 0o644)
}
