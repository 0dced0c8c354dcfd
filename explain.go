package settings

import (
	"context"
	"encoding/json"
)

// Source names the tier that produced an option's effective value.
type Source string

const (
	// SourceStore means the value was read from the store.
	SourceStore Source = "store"
	// SourceResolver means the store had no value and the default resolver
	// computed it.
	SourceResolver Source = "resolver"
	// SourceZero means neither the store nor a resolver produced a value.
	SourceZero Source = "zero"
	// SourceMismatch means the option was nil or has an unknown type.
	SourceMismatch Source = "mismatch"
)

// Resolution describes how an option's effective value was obtained.
type Resolution struct {
	Option string `json:"option"`
	Type   string `json:"type"`
	Source Source `json:"source"`
	Value  any    `json:"value,omitempty"`
	Found  bool   `json:"found"`
}

// Explain reads option with its declared type and reports which tier
// produced the value. It follows the same rules as the typed getters.
func (a *Accessor) Explain(ctx context.Context, option *Option) Resolution {
	if option == nil {
		return Resolution{Type: TypeUnknown.String(), Source: SourceMismatch}
	}
	res := Resolution{Option: option.Name, Type: option.Type.String()}

	switch option.Type {
	case TypeInt:
		if value, ok := a.readInt(ctx, option); ok {
			return res.with(SourceStore, value, true)
		}
		if option.DefaultInt != nil {
			return res.with(SourceResolver, option.DefaultInt(a.resolveContext(ctx, option)), true)
		}
		return res.with(SourceZero, 0, false)
	case TypeBool:
		if value, ok := a.readInt(ctx, option); ok {
			return res.with(SourceStore, value != 0, true)
		}
		if option.DefaultBool != nil {
			return res.with(SourceResolver, option.DefaultBool(a.resolveContext(ctx, option)), true)
		}
		return res.with(SourceZero, false, false)
	case TypeStr:
		if value, ok := a.readStr(ctx, option); ok {
			return res.with(SourceStore, value, true)
		}
		if option.DefaultStr != nil {
			value, ok := option.DefaultStr(a.resolveContext(ctx, option))
			if ok {
				return res.with(SourceResolver, value, true)
			}
		}
		return res.with(SourceZero, nil, false)
	default:
		res.Source = SourceMismatch
		return res
	}
}

func (r Resolution) with(source Source, value any, found bool) Resolution {
	r.Source = source
	r.Value = value
	r.Found = found
	return r
}

// ToJSON serialises the resolution for logging or diagnostics.
func (r Resolution) ToJSON() ([]byte, error) {
	type alias Resolution
	return json.Marshal(alias(r))
}

// ResolutionFromJSON deserialises a payload produced by ToJSON.
func ResolutionFromJSON(payload []byte) (Resolution, error) {
	type alias Resolution
	var res alias
	if err := json.Unmarshal(payload, &res); err != nil {
		return Resolution{}, err
	}
	return Resolution(res), nil
}
