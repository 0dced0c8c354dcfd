package conffile

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadTOML reads and parses the TOML file at path.
func LoadTOML(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("conffile: read %s: %w", path, err)
	}
	return ParseTOML(data)
}

// ParseTOML parses TOML data. Tables become sections; nested tables are not
// supported and are skipped.
func ParseTOML(data []byte) (*File, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("conffile: decode TOML: %w", err)
	}

	f := Empty()
	for name, value := range raw {
		table, ok := value.(map[string]any)
		if !ok {
			if values, ok := tomlList(value); ok {
				f.set("", name, values)
			}
			continue
		}
		for key, entry := range table {
			if values, ok := tomlList(entry); ok {
				f.set(name, key, values)
			}
		}
	}
	return f, nil
}

func tomlList(value any) ([]string, bool) {
	switch typed := value.(type) {
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if _, nested := item.(map[string]any); nested {
				return nil, false
			}
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	case map[string]any, []map[string]any:
		return nil, false
	default:
		return []string{fmt.Sprint(typed)}, true
	}
}
