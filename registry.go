package settings

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrCategoryNameRequired indicates a category declared without a name.
	ErrCategoryNameRequired = errors.New("settings: category name must be provided")
	// ErrOptionNameRequired indicates an option declared without a name.
	ErrOptionNameRequired = errors.New("settings: option name must be provided")
	// ErrDuplicateCategory indicates two categories share a name, ignoring case.
	ErrDuplicateCategory = errors.New("settings: category names must be unique")
	// ErrDuplicateOption indicates two options of one category share a name,
	// ignoring case.
	ErrDuplicateOption = errors.New("settings: option names must be unique within a category")
	// ErrUnknownType indicates an option declared without a valid type.
	ErrUnknownType = errors.New("settings: option type is unknown")
	// ErrResolverType indicates a default resolver that does not match the
	// option type.
	ErrResolverType = errors.New("settings: default resolver does not match option type")
)

// Registry is an immutable catalog of categories and their options, built
// only through NewRegistry. It is safe for concurrent use because nothing
// mutates it after construction. Returned *Category and *Option values point
// into the registry and must be treated as read-only; appending to a returned
// Options slice allocates and never reaches the registry.
type Registry struct {
	categories []Category
}

// NewRegistry validates and copies the supplied categories. Category names
// must be unique across the registry and option names unique within their
// category, both compared without case. Every option must have a known type
// and only the default resolver matching that type.
func NewRegistry(categories ...Category) (*Registry, error) {
	copied := make([]Category, 0, len(categories))
	for _, category := range categories {
		if category.Name == "" {
			return nil, ErrCategoryNameRequired
		}
		for _, seen := range copied {
			if strings.EqualFold(seen.Name, category.Name) {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateCategory, category.Name)
			}
		}
		options := make([]Option, 0, len(category.Options))
		for _, option := range category.Options {
			if err := validateOption(option); err != nil {
				return nil, fmt.Errorf("%w (category %s)", err, category.Name)
			}
			for _, seen := range options {
				if strings.EqualFold(seen.Name, option.Name) {
					return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateOption, category.Name, option.Name)
				}
			}
			options = append(options, option)
		}
		copied = append(copied, Category{Name: category.Name, Options: slices.Clip(options)})
	}
	return &Registry{categories: slices.Clip(copied)}, nil
}

// MustNewRegistry is like NewRegistry but panics on error. Useful for
// package-level catalogs.
func MustNewRegistry(categories ...Category) *Registry {
	registry, err := NewRegistry(categories...)
	if err != nil {
		panic(err)
	}
	return registry
}

func validateOption(option Option) error {
	if option.Name == "" {
		return ErrOptionNameRequired
	}
	switch option.Type {
	case TypeInt:
		if option.DefaultBool != nil || option.DefaultStr != nil {
			return fmt.Errorf("%w: %s is %s", ErrResolverType, option.Name, option.Type)
		}
	case TypeBool:
		if option.DefaultInt != nil || option.DefaultStr != nil {
			return fmt.Errorf("%w: %s is %s", ErrResolverType, option.Name, option.Type)
		}
	case TypeStr:
		if option.DefaultInt != nil || option.DefaultBool != nil {
			return fmt.Errorf("%w: %s is %s", ErrResolverType, option.Name, option.Type)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownType, option.Name)
	}
	return nil
}

// CategoryCount returns the number of categories.
func (r *Registry) CategoryCount() int {
	if r == nil {
		return 0
	}
	return len(r.categories)
}

// CategoryByIndex returns the category at index i, or nil when i is out of
// range.
func (r *Registry) CategoryByIndex(i int) *Category {
	if r == nil || i < 0 || i >= len(r.categories) {
		return nil
	}
	return &r.categories[i]
}

// CategoryByName returns the first category whose name matches name ignoring
// case, or nil.
func (r *Registry) CategoryByName(name string) *Category {
	if r == nil || name == "" {
		return nil
	}
	for i := range r.categories {
		if strings.EqualFold(name, r.categories[i].Name) {
			return &r.categories[i]
		}
	}
	return nil
}

// OptionCount returns the number of options in category.
func (r *Registry) OptionCount(category *Category) int {
	return category.OptionCount()
}

// OptionByIndex returns the option at index i of category.
func (r *Registry) OptionByIndex(category *Category, i int) *Option {
	return category.OptionByIndex(i)
}

// OptionByName returns the option of category matching name ignoring case.
func (r *Registry) OptionByName(category *Category, name string) *Option {
	return category.OptionByName(name)
}

// Lookup resolves category then option by name in one call.
func (r *Registry) Lookup(category, option string) *Option {
	return r.CategoryByName(category).OptionByName(option)
}
