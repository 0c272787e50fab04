package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/trellis-http/trellis/pkg/extract"
	"github.com/trellis-http/trellis/pkg/pattern"
)

// ErrFrozen is returned by registration calls after serving has begun.
var ErrFrozen = errors.New("router: route table is frozen once serving has begun")

// Register adds a route. The pattern is compiled immediately, so malformed
// patterns fail here rather than at request time, as does a route declaring
// more than one body-consuming extractor.
//
// Registering a second route for the same (method, pattern) pair replaces
// the first and logs a warning: last registration wins.
func (r *Router) Register(method, pat string, handler HandlerFunc, extractors ...extract.Extractor) error {
	if handler == nil {
		return fmt.Errorf("router: nil handler for %s %s", method, pat)
	}

	compiled, err := pattern.Compile(pat)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	consumers := 0
	for _, ex := range extractors {
		if ex.ConsumesBody() {
			consumers++
		}
	}
	if consumers > 1 {
		return fmt.Errorf("router: route %s %s declares %d body-consuming extractors, at most one is allowed", method, pat, consumers)
	}

	rt := &route{
		method:     method,
		raw:        pat,
		pat:        compiled,
		handler:    handler,
		extractors: extractors,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}

	for i, existing := range r.routes {
		if existing.method == method && existing.raw == pat {
			r.logger.Warn("duplicate route registration, last registration wins",
				zap.String("method", method),
				zap.String("pattern", pat),
			)
			r.routes[i] = rt
			return nil
		}
	}
	r.routes = append(r.routes, rt)
	return nil
}

// Get registers a GET route.
func (r *Router) Get(pat string, handler HandlerFunc, extractors ...extract.Extractor) error {
	return r.Register(http.MethodGet, pat, handler, extractors...)
}

// Post registers a POST route.
func (r *Router) Post(pat string, handler HandlerFunc, extractors ...extract.Extractor) error {
	return r.Register(http.MethodPost, pat, handler, extractors...)
}

// Put registers a PUT route.
func (r *Router) Put(pat string, handler HandlerFunc, extractors ...extract.Extractor) error {
	return r.Register(http.MethodPut, pat, handler, extractors...)
}

// Patch registers a PATCH route.
func (r *Router) Patch(pat string, handler HandlerFunc, extractors ...extract.Extractor) error {
	return r.Register(http.MethodPatch, pat, handler, extractors...)
}

// Delete registers a DELETE route.
func (r *Router) Delete(pat string, handler HandlerFunc, extractors ...extract.Extractor) error {
	return r.Register(http.MethodDelete, pat, handler, extractors...)
}

// Merge unions another router's route table into this one. Duplicate
// (method, pattern) pairs resolve last-registration-wins, so other's routes
// override existing ones. Middleware and state are not merged; install those
// on the receiving router.
func (r *Router) Merge(other *Router) error {
	for _, rt := range other.snapshot() {
		if err := r.Register(rt.method, rt.raw, rt.handler, rt.extractors...); err != nil {
			return err
		}
	}
	return nil
}

// Nest re-registers every route of sub with prefix prepended to its pattern.
// The prefix must itself be a valid pattern fragment beginning with "/".
func (r *Router) Nest(prefix string, sub *Router) error {
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("router: nest prefix %q must begin with '/'", prefix)
	}
	prefix = strings.TrimSuffix(prefix, "/")

	for _, rt := range sub.snapshot() {
		full := prefix + rt.raw
		if rt.raw == "/" && prefix != "" {
			full = prefix
		}
		if err := r.Register(rt.method, full, rt.handler, rt.extractors...); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) snapshot() []*route {
	r.mu.Lock()
	defer r.mu.Unlock()
	routes := make([]*route, len(r.routes))
	copy(routes, r.routes)
	return routes
}
