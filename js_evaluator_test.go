//go:build js_eval

package settings

import (
	"errors"
	"testing"
	"time"
)

func TestJSEvaluatorInterruptsLongRules(t *testing.T) {
	evaluator := NewJSEvaluator(JSWithTimeout(50 * time.Millisecond))

	start := time.Now()
	_, err := evaluator.Evaluate(RuleContext{Option: "volume"}, `(function(){ while (true) {} })()`)
	if err == nil {
		t.Fatalf("expected interrupted rule to fail")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Engine != "js" {
		t.Fatalf("expected js EvaluationError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("expected rule to stop near the timeout, took %s", elapsed)
	}
}

func TestJSEvaluatorSharesProgramCache(t *testing.T) {
	cache := NewProgramCache()
	evaluator := NewJSEvaluator(JSWithProgramCache(cache))

	got, err := evaluator.Evaluate(RuleContext{Args: map[string]any{"n": 2}}, "args.n * 3")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if n, ok := toInt(got); !ok || n != 6 {
		t.Fatalf("expected 6, got %v", got)
	}
	if _, ok := cache.Get("args.n * 3"); !ok {
		t.Fatalf("expected compiled script in cache")
	}
}
