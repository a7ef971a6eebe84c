package binding

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// Format re-emits the nested data document from flat control values. It is a
// pure function of the data map and the value snapshot: calling it twice with
// the same inputs yields equal documents. Circular sites come out as literal
// reference markers; unset controls are simply absent.
func Format(maps Maps, values map[string]any) (map[string]any, error) {
	raw := []byte("{}")
	var err error

	for _, path := range sortedArrayPaths(maps.Arrays) {
		if maps.Arrays[path] != 0 {
			continue
		}
		raw, err = sjson.SetBytes(raw, path, []any{})
		if err != nil {
			return nil, fmt.Errorf("binding: emit empty array at %s: %w", path, err)
		}
	}

	for _, entry := range maps.Data {
		value, ok := values[entry.DataPath]
		if !ok {
			if !entry.Circular {
				continue
			}
			value = refMarker(entry.RefTarget)
		}
		raw, err = sjson.SetBytes(raw, entry.DataPath, value)
		if err != nil {
			return nil, fmt.Errorf("binding: emit value at %s: %w", entry.DataPath, err)
		}
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("binding: decode emitted document: %w", err)
	}
	return out, nil
}
