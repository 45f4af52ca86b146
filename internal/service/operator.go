package service

import "context"

type operatorKey struct{}

// WithOperator tags ctx with the authenticated operator driving a request.
// Events appended under that ctx record the operator as their actor.
func WithOperator(ctx context.Context, operatorID int) context.Context {
	return context.WithValue(ctx, operatorKey{}, operatorID)
}

// OperatorFromContext returns the operator set by WithOperator. Requests
// from the daemon itself carry none.
func OperatorFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(operatorKey{}).(int)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}
