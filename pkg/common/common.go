// Package common provides shared types used across the trellis engine.
package common

import (
	"net/http"
)

// Middleware is a function that wraps an http.Handler.
// It may rewrite the request before calling the wrapped handler, rewrite the
// response after it returns, or write a response itself without calling the
// wrapped handler at all (short-circuit).
type Middleware func(http.Handler) http.Handler

// MiddlewareChain is an ordered list of middleware.
type MiddlewareChain []Middleware

// NewMiddlewareChain creates a new middleware chain.
func NewMiddlewareChain(middlewares ...Middleware) MiddlewareChain {
	return middlewares
}

// Append adds middleware to the end of the chain.
func (c MiddlewareChain) Append(middlewares ...Middleware) MiddlewareChain {
	return append(c, middlewares...)
}

// Prepend adds middleware to the beginning of the chain.
func (c MiddlewareChain) Prepend(middlewares ...Middleware) MiddlewareChain {
	result := make(MiddlewareChain, len(middlewares)+len(c))
	copy(result, middlewares)
	copy(result[len(middlewares):], c)
	return result
}

// Then applies the chain to a handler. The first middleware in the chain
// becomes the outermost layer: it runs first on the way in and last on the
// way out.
func (c MiddlewareChain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}
