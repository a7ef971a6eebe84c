package uischema

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formbridge/pkg/schema"
)

// LoadFS walks the provided filesystem and parses JSON/YAML hint documents,
// merging them in walk order with first-writer-wins semantics. A nil fsys or
// an fsys without hint files yields empty hints.
func LoadFS(fsys fs.FS) (Hints, error) {
	if fsys == nil {
		return nil, nil
	}

	var merged Hints
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isHintFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		merged = merged.Merge(Parse(doc))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func parseDocument(data []byte, source string) (map[string]any, error) {
	doc, err := schema.NewDocument(schema.SourceFromFS(source), data)
	if err != nil {
		return nil, fmt.Errorf("uischema: %s: %w", source, err)
	}
	decoded, err := doc.Decode()
	if err != nil {
		return nil, fmt.Errorf("uischema: parse %s: %w", source, err)
	}
	payload, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("uischema: %s is not a hint mapping", source)
	}
	return payload, nil
}

func isHintFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
