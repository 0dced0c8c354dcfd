package settings

import (
	"context"
	"strings"
)

// Type is the declared value type of an Option. It is fixed when the option
// is defined and gates every typed accessor call.
type Type int

const (
	// TypeUnknown guards against options declared without a type.
	TypeUnknown Type = iota
	// TypeInt marks integer options.
	TypeInt
	// TypeBool marks boolean options. They are persisted as 0/1 integers.
	TypeBool
	// TypeStr marks string options.
	TypeStr
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeStr:
		return "str"
	default:
		return "unknown"
	}
}

// ParseType converts a type name into the corresponding Type. Returns
// TypeUnknown for unrecognised values.
func ParseType(value string) Type {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "int", "integer":
		return TypeInt
	case "bool", "boolean":
		return TypeBool
	case "str", "string":
		return TypeStr
	default:
		return TypeUnknown
	}
}

// IntResolver computes the fallback value of an integer option.
type IntResolver func(ResolveContext) int

// BoolResolver computes the fallback value of a boolean option.
type BoolResolver func(ResolveContext) bool

// StrResolver computes the fallback value of a string option. The second
// return value reports whether a value is present at all.
type StrResolver func(ResolveContext) (string, bool)

// Option is a single named, typed setting within a Category. At most one
// default resolver is meaningful and it must match Type.
type Option struct {
	Name        string
	Type        Type
	DefaultInt  IntResolver
	DefaultBool BoolResolver
	DefaultStr  StrResolver
}

// hasDefault reports whether the resolver matching the declared type is set.
func (o *Option) hasDefault() bool {
	if o == nil {
		return false
	}
	switch o.Type {
	case TypeInt:
		return o.DefaultInt != nil
	case TypeBool:
		return o.DefaultBool != nil
	case TypeStr:
		return o.DefaultStr != nil
	default:
		return false
	}
}

// Category is a named, ordered group of options. Declaration order is the
// index order.
type Category struct {
	Name    string
	Options []Option
}

// OptionCount returns the number of options in the category.
func (c *Category) OptionCount() int {
	if c == nil {
		return 0
	}
	return len(c.Options)
}

// OptionByIndex returns the option at index i, or nil when c is nil or i is
// out of range.
func (c *Category) OptionByIndex(i int) *Option {
	if c == nil || i < 0 || i >= len(c.Options) {
		return nil
	}
	return &c.Options[i]
}

// OptionByName returns the first option whose name matches name ignoring
// case, or nil.
func (c *Category) OptionByName(name string) *Option {
	if c == nil || name == "" {
		return nil
	}
	for i := range c.Options {
		if strings.EqualFold(name, c.Options[i].Name) {
			return &c.Options[i]
		}
	}
	return nil
}

// Store persists option values keyed by option name. Implementations must
// report a missing key with found=false so it can be told apart from a stored
// zero value, and are responsible for their own synchronization.
type Store interface {
	GetInt(ctx context.Context, name string) (value int, found bool, err error)
	GetStr(ctx context.Context, name string) (value string, found bool, err error)
	SetInt(ctx context.Context, name string, value int) error
	SetStr(ctx context.Context, name string, value string) error
}

// ConfigReader exposes list-valued entries of the static configuration file.
// ListSize returns 0 when the entry is not configured.
type ConfigReader interface {
	ListSize(section, key string) int
	ListString(section, key string, index int) string
}

// ResolveContext carries the inputs available to a default resolver. The
// resolver may ignore Option.
type ResolveContext struct {
	Context context.Context
	Option  *Option
	Config  ConfigReader

	logger Logger
}

// List returns every entry of the configured list section.key, or nil when
// no configuration reader is attached or the entry is unconfigured.
func (rc ResolveContext) List(section, key string) []string {
	if rc.Config == nil {
		return nil
	}
	n := rc.Config.ListSize(section, key)
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rc.Config.ListString(section, key, i))
	}
	return out
}

func (rc ResolveContext) optionName() string {
	if rc.Option == nil {
		return ""
	}
	return rc.Option.Name
}

func (rc ResolveContext) log(event Event) {
	if rc.logger == nil {
		return
	}
	if event.Option == "" {
		event.Option = rc.optionName()
	}
	rc.logger.LogEvent(event)
}
