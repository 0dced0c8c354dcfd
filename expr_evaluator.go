package settings

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr evaluator.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEvaluator executes rule expressions using github.com/expr-lang/expr.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr. It is the
// engine used by rule resolvers unless another one is configured.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	bound := ctx.bindings()
	names := slices.Sorted(maps.Keys(bound))
	env := e.environment(bound)
	if e.cache == nil {
		result, err := exprlang.Eval(expression, env)
		if err != nil {
			return nil, wrapEvaluationError("expr", expression, ctx.Option, err)
		}
		return result, nil
	}
	program, err := e.loadOrCompile(expression, names)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, ctx.Option, err)
	}
	return result, nil
}

// Compile checks expression and returns a rule that keeps its compiled
// programs, one per set of bound variable names.
func (e *exprEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	owner := e
	if owner.cache == nil {
		owner = &exprEvaluator{cache: NewProgramCache(), registry: e.registry}
	}
	if _, err := owner.loadOrCompile(expression, nil); err != nil {
		return nil, err
	}
	return &exprCompiledRule{
		evaluator:  owner,
		expression: expression,
	}, nil
}

// loadOrCompile caches programs by expression and bound variable names.
// Registry functions named like a bound variable are not declared, so they
// never shadow it.
func (e *exprEvaluator) loadOrCompile(expression string, bound []string) (*exprvm.Program, error) {
	cacheKey := expression
	if len(bound) > 0 {
		cacheKey += "|" + strings.Join(bound, ",")
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if names := e.registryNames(); len(names) > 0 {
		options = append(options, exprlang.Function("call", func(arguments ...any) (any, error) {
			if len(arguments) == 0 {
				return nil, fmt.Errorf("call requires a function name")
			}
			name, ok := arguments[0].(string)
			if !ok {
				return nil, fmt.Errorf("call expects a string name, got %T", arguments[0])
			}
			return e.registry.Call(name, arguments[1:]...)
		}))
		for _, name := range names {
			if shadowsBinding(name, bound) {
				continue
			}
			options = append(options, exprlang.Function(name, e.registryFunction(name)))
		}
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(cacheKey, program)
	}
	return program, nil
}

type exprCompiledRule struct {
	evaluator  *exprEvaluator
	expression string
}

func (r *exprCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("compiled rule missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}

// environment adds registry functions to bound without replacing any bound
// variable.
func (e *exprEvaluator) environment(bound map[string]any) map[string]any {
	if e.registry == nil {
		return bound
	}
	names := slices.Sorted(maps.Keys(bound))
	bound["call"] = func(name string, arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
	for _, name := range e.registry.Names() {
		if shadowsBinding(name, names) {
			continue
		}
		bound[name] = e.registryFunction(name)
	}
	return bound
}

func (e *exprEvaluator) registryNames() []string {
	if e == nil || e.registry == nil {
		return nil
	}
	return e.registry.Names()
}

func (e *exprEvaluator) registryFunction(name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}
