package middleware

import (
	"net/http"

	"github.com/trellis-http/trellis/pkg/common"
)

// MapRequest lifts a pure request-rewriting function into a middleware. The
// rewritten request is always passed on to the next stage; a MapRequest
// middleware cannot short-circuit.
//
// Returning nil from fn passes the original request through unchanged.
func MapRequest(fn func(*http.Request) *http.Request) common.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mapped := fn(r); mapped != nil {
				r = mapped
			}
			next.ServeHTTP(w, r)
		})
	}
}
