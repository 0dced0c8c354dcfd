// Package conffile reads the static configuration file consulted by default
// resolvers. Only list-valued entries grouped in sections are exposed, which
// is what settings.ConfigReader needs:
//
//	[library]
//	artwork_online_sources = ["spotify", "discogs"]
//
// TOML files are decoded with github.com/BurntSushi/toml and HCL files with
// github.com/hashicorp/hcl/v2, where the same entry reads:
//
//	library {
//	  artwork_online_sources = ["spotify", "discogs"]
//	}
//
// A scalar value is exposed as a one-element list. Top-level entries outside
// any section live in the section named "".
//
// Watch returns a Watcher that reloads the file when it changes on disk, so
// resolvers see the new list on their next call.
package conffile

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat indicates a file extension Load does not recognise.
var ErrUnsupportedFormat = errors.New("conffile: unsupported file format")

// File is an immutable snapshot of list entries by section then key.
type File struct {
	sections map[string]map[string][]string
}

// FromMap builds a File from sections. The map is copied.
func FromMap(sections map[string]map[string][]string) *File {
	f := &File{sections: make(map[string]map[string][]string, len(sections))}
	for section, keys := range sections {
		for key, values := range keys {
			f.set(section, key, append([]string(nil), values...))
		}
	}
	return f
}

// Empty returns a File with no entries.
func Empty() *File {
	return &File{sections: map[string]map[string][]string{}}
}

// Load reads path, choosing the decoder by extension: .toml for TOML and .hcl
// for HCL. HCL lists use the [...] syntax.
func Load(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return LoadTOML(path)
	case ".hcl":
		return LoadHCL(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ListSize returns the number of entries in section.key, 0 when unconfigured.
func (f *File) ListSize(section, key string) int {
	return len(f.lookup(section, key))
}

// ListString returns entry index of section.key, or "" when out of range.
func (f *File) ListString(section, key string, index int) string {
	values := f.lookup(section, key)
	if index < 0 || index >= len(values) {
		return ""
	}
	return values[index]
}

// List returns a copy of section.key.
func (f *File) List(section, key string) []string {
	values := f.lookup(section, key)
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

// Sections returns the section names sorted alphabetically.
func (f *File) Sections() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.sections))
	for name := range f.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (f *File) lookup(section, key string) []string {
	if f == nil || f.sections == nil {
		return nil
	}
	return f.sections[section][key]
}

func (f *File) set(section, key string, values []string) {
	if f.sections == nil {
		f.sections = map[string]map[string][]string{}
	}
	keys, ok := f.sections[section]
	if !ok {
		keys = map[string][]string{}
		f.sections[section] = keys
	}
	keys[key] = values
}
