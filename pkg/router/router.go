// Package router maps (method, path) pairs to handlers and dispatches
// incoming requests through the middleware pipeline, the extractor set, and
// the response conversion contract.
//
// All registration happens during a build phase; the route table and
// middleware chain are immutable once serving begins.
package router

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/trellis-http/trellis/pkg/codec"
	"github.com/trellis-http/trellis/pkg/common"
	"github.com/trellis-http/trellis/pkg/extract"
	"github.com/trellis-http/trellis/pkg/middleware"
	"github.com/trellis-http/trellis/pkg/pattern"
	"github.com/trellis-http/trellis/pkg/render"
)

// HandlerFunc is the application entry point for one route. It receives the
// request context and the tuple of resolved extractor values, and returns a
// renderable result or an error. Handlers never see path-matching or
// header-parsing mechanics directly, only their extractor outputs.
type HandlerFunc func(ctx context.Context, args extract.Args) (any, error)

// route is one entry in the route table.
type route struct {
	method     string
	raw        string
	pat        *pattern.Pattern
	handler    HandlerFunc
	extractors []extract.Extractor
}

// Router is the request-dispatch engine. It implements http.Handler.
//
// Registration (Register, Use, Merge, Nest) must complete before the first
// request is served; the first call to Build or ServeHTTP freezes the router.
type Router struct {
	logger *zap.Logger
	state  *extract.State
	codecs *codec.Registry

	routes      []*route
	middlewares common.MiddlewareChain

	buildOnce sync.Once
	buildErr  error
	handler   http.Handler

	mu     sync.Mutex
	frozen bool
}

// New creates a router. Shared state, codecs, logging, and global middleware
// are supplied via options.
func New(opts ...Option) *Router {
	r := &Router{
		state:  extract.NewState(),
		codecs: codec.DefaultRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		r.logger = logger
	}
	return r
}

// Use installs middleware. Installation order is significant: the
// last-installed middleware wraps all previously installed layers, so it
// executes first on the way in and last on the way out.
func (r *Router) Use(middlewares ...common.Middleware) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	r.middlewares = r.middlewares.Append(middlewares...)
	return nil
}

// Build freezes the router: it validates every state-dependent extractor
// against the registered shared state, sorts the route table so literal
// segments take priority over captures regardless of registration order, and
// composes the middleware chain once. A validation failure here is a startup
// error; it is never surfaced per-request.
//
// Build is idempotent. ServeHTTP calls it implicitly on the first request.
func (r *Router) Build() error {
	r.buildOnce.Do(r.finalize)
	return r.buildErr
}

func (r *Router) finalize() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()

	if err := r.validateState(); err != nil {
		r.buildErr = err
		return
	}

	sort.SliceStable(r.routes, func(i, j int) bool {
		return r.routes[i].pat.Compare(r.routes[j].pat) < 0
	})

	// Chain composition happens once here, not per request. Appending the
	// installed middleware after the recovery layer keeps recovery outermost;
	// within the installed list, Then makes the first element the outer
	// layer, so the install order is reversed to satisfy LIFO wrapping.
	chain := common.NewMiddlewareChain(middleware.Recovery(r.logger))
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		chain = chain.Append(r.middlewares[i])
	}
	r.handler = chain.Then(http.HandlerFunc(r.dispatch))
}

func (r *Router) validateState() error {
	var err error
	for _, rt := range r.routes {
		for _, ex := range rt.extractors {
			dep, ok := unwrap(ex).(extract.StateDependent)
			if !ok {
				continue
			}
			if !r.state.Has(dep.StateType()) {
				err = multierr.Append(err, fmt.Errorf(
					"route %s %s: state value of type %s is not registered",
					rt.method, rt.raw, dep.StateType()))
			}
		}
	}
	return err
}

// ServeHTTP implements http.Handler. A router whose build failed logs the
// failure and refuses every request; misconfiguration must not masquerade as
// a per-request condition.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.buildOnce.Do(r.finalize)
	if r.buildErr != nil {
		r.logger.Error("router build failed",
			zap.Error(r.buildErr),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	r.handler.ServeHTTP(w, req)
}

// dispatch is the innermost pipeline stage: route matching, extraction,
// handler invocation, and response conversion.
func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	// A canceled request produces no partial response.
	if req.Context().Err() != nil {
		return
	}

	path := req.URL.Path
	var allowed []string
	for _, rt := range r.routes {
		bindings, ok := rt.pat.Match(path)
		if !ok {
			continue
		}
		if rt.method != req.Method {
			allowed = append(allowed, rt.method)
			continue
		}
		r.serveRoute(w, req, rt, bindings)
		return
	}

	if len(allowed) > 0 {
		w.Header().Set("Allow", allowHeader(allowed))
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

func (r *Router) serveRoute(w http.ResponseWriter, req *http.Request, rt *route, bindings pattern.Bindings) {
	rc := extract.NewRequestContext(req, bindings, r.state, r.codecs)

	// Extractors resolve in declaration order; the first rejection of a
	// non-Try extractor short-circuits before the handler runs.
	args := make(extract.Args, len(rt.extractors))
	for i, ex := range rt.extractors {
		v, rej := ex.Extract(rc)
		if rej != nil {
			r.logger.Debug("extraction rejected",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("pattern", rt.raw),
				zap.String("rejection", rej.Error()),
			)
			r.writeRenderable(w, req, rej)
			return
		}
		args[i] = v
	}

	if req.Context().Err() != nil {
		return
	}

	result, err := rt.handler(req.Context(), args)
	if err != nil {
		resp, handled := render.ConvertError(err)
		if !handled {
			r.logger.Error("unhandled handler error",
				zap.Error(err),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.String("pattern", rt.raw),
			)
		}
		r.write(w, req, resp)
		return
	}

	resp, err := render.Convert(result)
	if err != nil {
		r.logger.Error("failed to render handler result",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("pattern", rt.raw),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	r.write(w, req, resp)
}

func (r *Router) writeRenderable(w http.ResponseWriter, req *http.Request, v render.Renderable) {
	resp, err := v.Render()
	if err != nil {
		r.logger.Error("failed to render response", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	r.write(w, req, resp)
}

func (r *Router) write(w http.ResponseWriter, req *http.Request, resp *render.Response) {
	if err := resp.Write(w); err != nil {
		r.logger.Error("failed to write response",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
	}
}

// allowHeader deduplicates and sorts the methods registered for a path.
func allowHeader(methods []string) string {
	seen := make(map[string]struct{}, len(methods))
	uniq := methods[:0]
	for _, m := range methods {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		uniq = append(uniq, m)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, ", ")
}

// unwrap sees through wrapper extractors such as extract.Try.
func unwrap(e extract.Extractor) extract.Extractor {
	for {
		w, ok := e.(interface{ Unwrap() extract.Extractor })
		if !ok {
			return e
		}
		e = w.Unwrap()
	}
}
