package settings

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// RuleContext carries the inputs bound into a rule environment.
type RuleContext struct {
	Option string
	Type   Type
	Now    *time.Time
	Args   map[string]any
	// Lists holds configured lists by section then key. Each section is bound
	// as a top-level variable, so library.artwork_online_sources is reachable
	// from a rule. Sections named like a reserved binding are skipped.
	Lists map[string]map[string][]string
}

var reservedBindings = map[string]struct{}{
	"option": {},
	"now":    {},
	"args":   {},
	"call":   {},
}

// shadowsBinding reports whether a registry function called name would hide
// a reserved binding or one of the sorted bound variable names.
func shadowsBinding(name string, bound []string) bool {
	if _, reserved := reservedBindings[name]; reserved {
		return true
	}
	_, found := slices.BinarySearch(bound, name)
	return found
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Lists == nil {
		ctx.Lists = map[string]map[string][]string{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) optionBinding() map[string]any {
	return map[string]any{
		"name": ctx.Option,
		"type": ctx.Type.String(),
	}
}

// bindings returns the variables shared by every engine.
func (ctx RuleContext) bindings() map[string]any {
	env := map[string]any{
		"option": ctx.optionBinding(),
		"now":    ctx.timestamp(),
		"args":   ctx.Args,
	}
	for section, keys := range ctx.Lists {
		if _, reserved := reservedBindings[section]; reserved {
			continue
		}
		values := make(map[string]any, len(keys))
		for key, list := range keys {
			if list == nil {
				list = []string{}
			}
			values[key] = list
		}
		env[section] = values
	}
	return env
}

// Evaluator executes rule expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewProgramCache returns a ProgramCache safe for concurrent use.
func NewProgramCache() ProgramCache {
	return &programCache{}
}

type programCache struct {
	programs sync.Map
}

func (c *programCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *programCache) Set(key string, value any) {
	c.programs.Store(key, value)
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*settings.exprEvaluator":
		return "expr"
	case "*settings.celEvaluator":
		return "cel"
	case "*settings.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
