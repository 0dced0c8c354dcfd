package settings

import "strings"

// FieldDescriptor describes one option by its category-qualified path.
type FieldDescriptor struct {
	Path       string `json:"path"`
	Type       string `json:"type"`
	HasDefault bool   `json:"has_default"`
}

// Describe flattens the registry into descriptors in declaration order.
func (r *Registry) Describe() []FieldDescriptor {
	if r == nil {
		return []FieldDescriptor{}
	}
	fields := make([]FieldDescriptor, 0, len(r.categories))
	for i := range r.categories {
		category := &r.categories[i]
		for j := range category.Options {
			option := &category.Options[j]
			fields = append(fields, FieldDescriptor{
				Path:       joinPath(category.Name, option.Name),
				Type:       option.Type.String(),
				HasDefault: option.hasDefault(),
			})
		}
	}
	return fields
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
