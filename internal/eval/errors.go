package eval

import "fmt"

// ExprError is returned for any evaluation-time failure: division by zero,
// unknown function, arity mismatch, or loop-count exceeded (§7
// ExpressionError).
type ExprError struct {
	Message string
}

func (e *ExprError) Error() string { return "eval: " + e.Message }

func newExprError(format string, args ...any) *ExprError {
	return &ExprError{Message: fmt.Sprintf(format, args...)}
}

// MissingNodeError is returned when an expression references an id that has
// no binding in the current variable environment (§7 MissingNode).
type MissingNodeError struct {
	Ref string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("eval: reference %q has no bound value", e.Ref)
}
