package router

import (
	"go.uber.org/zap"

	"github.com/trellis-http/trellis/pkg/codec"
	"github.com/trellis-http/trellis/pkg/common"
)

// Option configures a Router during construction.
type Option func(*Router)

// WithLogger sets the logger for all router operations. Without it the
// router falls back to a production zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// WithState registers shared-state values, keyed by their dynamic type.
// Handlers reach them through extract.StateOf; a state extractor whose type
// was never provided fails the build, not the request.
func WithState(values ...any) Option {
	return func(r *Router) { r.state.Provide(values...) }
}

// WithCodecs replaces the default JSON/form/multipart codec registry used by
// content-type-dispatched body extractors.
func WithCodecs(registry *codec.Registry) Option {
	return func(r *Router) { r.codecs = registry }
}

// WithMiddleware installs middleware at construction time, equivalent to
// calling Use before any request is served.
func WithMiddleware(middlewares ...common.Middleware) Option {
	return func(r *Router) { r.middlewares = r.middlewares.Append(middlewares...) }
}
