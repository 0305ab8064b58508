package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Fragment is an enum fragment emitted for schema-assisted register
// authoring: editors can complete reference fields against the names already
// in the data store.
type Fragment struct {
	Enum []string `json:"enum"`
}

// WriteNameFragments writes group_names.json and person_names.json fragments
// under dir, creating it as needed.
func WriteNameFragments(dir string, groupNames, personNames []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create fragment dir %s: %w", dir, err)
	}
	fragments := map[string][]string{
		"group_names.json":  groupNames,
		"person_names.json": personNames,
	}
	for filename, names := range fragments {
		if names == nil {
			names = []string{}
		}
		if err := writeFragment(filepath.Join(dir, filename), Fragment{Enum: names}); err != nil {
			return err
		}
	}
	return nil
}

func writeFragment(path string, f Fragment) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create fragment %s: %w", path, err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		out.Close()
		return fmt.Errorf("encode fragment %s: %w", path, err)
	}
	return out.Close()
}
