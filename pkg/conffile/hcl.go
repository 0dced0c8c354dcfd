package conffile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// LoadHCL reads and parses the HCL file at path.
func LoadHCL(path string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("conffile: parse %s: %w", path, diags)
	}
	return fromHCLFile(file)
}

// ParseHCL parses HCL data. filename is only used in diagnostics. Each block
// is a section named by its type; block labels are ignored.
func ParseHCL(data []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("conffile: parse %s: %w", filename, diags)
	}
	return fromHCLFile(file)
}

func fromHCLFile(file *hcl.File) (*File, error) {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("conffile: unexpected HCL body %T", file.Body)
	}

	f := Empty()
	if err := collectAttributes(f, "", body.Attributes); err != nil {
		return nil, err
	}
	for _, block := range body.Blocks {
		if err := collectAttributes(f, block.Type, block.Body.Attributes); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func collectAttributes(f *File, section string, attrs hclsyntax.Attributes) error {
	for name, attr := range attrs {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("conffile: evaluate %s.%s: %w", section, name, diags)
		}
		values, err := ctyList(value)
		if err != nil {
			return fmt.Errorf("conffile: %s.%s: %w", section, name, err)
		}
		f.set(section, name, values)
	}
	return nil
}

func ctyList(value cty.Value) ([]string, error) {
	if value.IsNull() || !value.IsKnown() {
		return []string{}, nil
	}
	ty := value.Type()
	if ty.IsListType() || ty.IsTupleType() || ty.IsSetType() {
		out := make([]string, 0, value.LengthInt())
		it := value.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			s, err := ctyString(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}
	s, err := ctyString(value)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func ctyString(value cty.Value) (string, error) {
	converted, err := convert.Convert(value, cty.String)
	if err != nil {
		return "", err
	}
	if converted.IsNull() {
		return "", nil
	}
	return converted.AsString(), nil
}
