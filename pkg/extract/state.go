package extract

import (
	"fmt"
	"reflect"
)

// State is the shared-state container injected at router construction time.
// Values are keyed by their dynamic type, registered during the build phase,
// and read-only during request processing; any internal mutability (e.g. a
// connection pool) is the value's own concurrency responsibility.
type State struct {
	values map[reflect.Type]any
}

// NewState creates an empty state container.
func NewState() *State {
	return &State{values: make(map[reflect.Type]any)}
}

// Provide registers values keyed by their dynamic type. Registering a second
// value of the same type replaces the first. It returns the container for
// chaining.
func (s *State) Provide(values ...any) *State {
	for _, v := range values {
		if v == nil {
			panic("extract: cannot provide nil state value")
		}
		s.values[reflect.TypeOf(v)] = v
	}
	return s
}

// Has reports whether a value of type t is registered. Routers use this at
// build time to turn a missing registration into a startup error instead of
// a per-request one.
func (s *State) Has(t reflect.Type) bool {
	_, ok := s.values[t]
	return ok
}

func (s *State) get(t reflect.Type) (any, bool) {
	v, ok := s.values[t]
	return v, ok
}

// StateDependent is implemented by extractors that read from shared state,
// so the router can validate registrations during its build phase.
type StateDependent interface {
	StateType() reflect.Type
}

type stateExtractor[T any] struct{}

// StateOf extracts the registered shared-state value of type T. A missing
// registration is a build-time router error; it is never surfaced as a
// request rejection.
func StateOf[T any]() Extractor {
	return stateExtractor[T]{}
}

func (stateExtractor[T]) ConsumesBody() bool { return false }

func (stateExtractor[T]) StateType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (e stateExtractor[T]) Extract(rc *RequestContext) (any, *Rejection) {
	v, ok := rc.state.get(e.StateType())
	if !ok {
		// Unreachable after build-phase validation; kept so a router used
		// without Build still fails loudly rather than returning a zero value.
		return nil, reject(NotFound, "state value of type %s not registered", e.StateType())
	}
	return v.(T), nil
}

func (e stateExtractor[T]) String() string {
	return fmt.Sprintf("state[%s]", e.StateType())
}
