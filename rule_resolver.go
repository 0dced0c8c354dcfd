package settings

import (
	"fmt"
	"math"
	"time"
)

// ResolverOption configures a rule resolver.
type ResolverOption func(*ruleResolver)

// WithRuleEvaluator selects the engine evaluating the rule. Defaults to the
// expr engine.
func WithRuleEvaluator(evaluator Evaluator) ResolverOption {
	return func(r *ruleResolver) {
		r.evaluator = evaluator
		r.explicit = true
	}
}

// WithList binds the configured list section.key into the rule environment.
// Unconfigured lists are bound as empty lists.
func WithList(section, key string) ResolverOption {
	return func(r *ruleResolver) {
		r.lists = append(r.lists, listRef{section: section, key: key})
	}
}

// WithArgs binds static arguments reachable as args in the rule.
func WithArgs(args map[string]any) ResolverOption {
	return func(r *ruleResolver) {
		if len(args) == 0 {
			return
		}
		if r.args == nil {
			r.args = make(map[string]any, len(args))
		}
		for key, value := range args {
			r.args[key] = value
		}
	}
}

type listRef struct {
	section string
	key     string
}

type ruleResolver struct {
	expression string
	evaluator  Evaluator
	explicit   bool
	lists      []listRef
	args       map[string]any
}

func newRuleResolver(expression string, opts []ResolverOption) *ruleResolver {
	r := &ruleResolver{expression: expression}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.evaluator == nil && !r.explicit {
		r.evaluator = NewExprEvaluator()
	}
	return r
}

// RuleBool returns a resolver evaluating expression to a bool. Evaluation
// failures and non-bool results resolve to false.
func RuleBool(expression string, opts ...ResolverOption) BoolResolver {
	r := newRuleResolver(expression, opts)
	return func(rc ResolveContext) bool {
		value, ok := r.evaluate(rc)
		if !ok {
			return false
		}
		b, ok := value.(bool)
		if !ok {
			r.reportResult(rc, value)
			return false
		}
		return b
	}
}

// RuleInt returns a resolver evaluating expression to an integer. Whole
// floating point results are accepted. Evaluation failures and other results
// resolve to 0.
func RuleInt(expression string, opts ...ResolverOption) IntResolver {
	r := newRuleResolver(expression, opts)
	return func(rc ResolveContext) int {
		value, ok := r.evaluate(rc)
		if !ok {
			return 0
		}
		n, ok := toInt(value)
		if !ok {
			r.reportResult(rc, value)
			return 0
		}
		return n
	}
}

// RuleStr returns a resolver evaluating expression to a string. Evaluation
// failures and non-string results resolve to absent.
func RuleStr(expression string, opts ...ResolverOption) StrResolver {
	r := newRuleResolver(expression, opts)
	return func(rc ResolveContext) (string, bool) {
		value, ok := r.evaluate(rc)
		if !ok {
			return "", false
		}
		s, ok := value.(string)
		if !ok {
			r.reportResult(rc, value)
			return "", false
		}
		return s, true
	}
}

func (r *ruleResolver) ruleContext(rc ResolveContext) RuleContext {
	ctx := RuleContext{
		Option: rc.optionName(),
		Args:   r.args,
	}
	if rc.Option != nil {
		ctx.Type = rc.Option.Type
	}
	if len(r.lists) > 0 {
		ctx.Lists = make(map[string]map[string][]string, len(r.lists))
		for _, ref := range r.lists {
			section, ok := ctx.Lists[ref.section]
			if !ok {
				section = map[string][]string{}
				ctx.Lists[ref.section] = section
			}
			list := rc.List(ref.section, ref.key)
			if list == nil {
				list = []string{}
			}
			section[ref.key] = list
		}
	}
	return ctx
}

func (r *ruleResolver) evaluate(rc ResolveContext) (any, bool) {
	engine := evaluatorEngineName(r.evaluator)
	if r.evaluator == nil {
		rc.log(Event{Stage: StageResolve, Engine: engine, Expr: r.expression, Err: ErrNoEvaluator})
		return nil, false
	}
	ctx := r.ruleContext(rc)
	start := time.Now()
	value, err := r.evaluator.Evaluate(ctx, r.expression)
	err = wrapEvaluationError(engine, r.expression, ctx.Option, err)
	rc.log(Event{
		Stage:    StageResolve,
		Engine:   engine,
		Expr:     r.expression,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, false
	}
	return value, true
}

func (r *ruleResolver) reportResult(rc ResolveContext, value any) {
	engine := evaluatorEngineName(r.evaluator)
	err := wrapEvaluationError(engine, r.expression, rc.optionName(), fmt.Errorf("%w: %T", ErrResultType, value))
	rc.log(Event{Stage: StageResolve, Engine: engine, Expr: r.expression, Err: err})
}

func toInt(value any) (int, bool) {
	switch n := value.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	default:
		return 0, false
	}
}

// floatToInt accepts whole values in [math.MinInt, math.MaxInt]. The upper
// bound is exclusive because float64(math.MaxInt) rounds up past it.
func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}
