package settings

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeMismatch indicates a nil option or an accessor that does not
	// match the option's declared type. Nothing is written.
	ErrTypeMismatch = errors.New("settings: option type mismatch")
	// ErrStoreRequired indicates a write through an accessor without a store.
	ErrStoreRequired = errors.New("settings: store is required")
	// ErrNoEvaluator indicates a rule resolver without a usable evaluator,
	// for example the JS engine in a build without the js_eval tag.
	ErrNoEvaluator = errors.New("settings: evaluator not configured")
	// ErrResultType indicates a rule produced a value of the wrong type.
	ErrResultType = errors.New("settings: rule result has wrong type")
)

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Option string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: %s evaluator %s option=%s: %v", e.Engine, describeExpression(e.Expr), describeOption(e.Option), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func describeOption(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "settings:") {
		return err
	}
	return fmt.Errorf("settings: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, option string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Option == "" {
			evalErr.Option = option
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Option: option,
		Err:    err,
	}
}
