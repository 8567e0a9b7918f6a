package navigation

import "context"

// Request is a navigation as seen by middleware, before a record is
// assigned.
type Request struct {
	// Target is a path ("/daily?d=1") or a route name ("daily").
	Target string

	// Params fill the pattern of a named target.
	Params map[string]string

	Options NavigateOptions
	Trigger Trigger

	// id is a record ID reserved before the request reached the handler.
	id uint64
}

// Handler runs a navigation.
type Handler func(ctx context.Context, req *Request) (Navigation, error)

// Middleware wraps every navigation. It can observe or short-circuit it.
type Middleware interface {
	Handle(ctx context.Context, req *Request, next Handler) (Navigation, error)
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx context.Context, req *Request, next Handler) (Navigation, error)

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, req *Request, next Handler) (Navigation, error) {
	return f(ctx, req, next)
}

// ComposeMiddleware builds a handler chain from middleware and a final handler.
// Middleware is executed in order (first to last), with the handler at the end.
func ComposeMiddleware(mw []Middleware, handler Handler) Handler {
	if len(mw) == 0 {
		return handler
	}

	// Build chain from end to start
	chain := handler
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func(ctx context.Context, req *Request) (Navigation, error) {
			return m.Handle(ctx, req, next)
		}
	}
	return chain
}

// Chain creates a middleware that combines multiple middleware in order.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Handler) (Navigation, error) {
		return ComposeMiddleware(middleware, next)(ctx, req)
	})
}

// Skip is a middleware that skips to the next middleware based on a condition.
func Skip(condition func(req *Request) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Handler) (Navigation, error) {
		if condition(req) {
			return next(ctx, req)
		}
		return mw.Handle(ctx, req, next)
	})
}

// Only is a middleware that runs only if a condition is true.
func Only(condition func(req *Request) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req *Request, next Handler) (Navigation, error) {
		if !condition(req) {
			return next(ctx, req)
		}
		return mw.Handle(ctx, req, next)
	})
}
