//go:build !js_eval

package settings

// NewJSEvaluator returns nil unless the module is built with -tags js_eval.
// Rule resolvers given a nil evaluator fail closed and log ErrNoEvaluator.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = newJSSettings(opts)
	return nil
}

func jsEvaluatorAvailable() bool { return false }
