package extract

import "fmt"

// Result is the value a handler receives when it opts into fallible-wrapped
// extraction via Try: either the extracted value or the rejection, never
// both.
type Result struct {
	Value     any
	Rejection *Rejection
}

// Ok reports whether extraction succeeded.
func (r Result) Ok() bool { return r.Rejection == nil }

// ValueAs returns the extracted value asserted to T. It panics if extraction
// failed or the value has a different type; callers check Ok first.
func ValueAs[T any](r Result) T {
	return r.Value.(T)
}

type tryExtractor struct {
	inner Extractor
}

// Try wraps an extractor so its failure no longer short-circuits dispatch:
// the handler receives a Result carrying the rejection and decides its own
// response.
func Try(e Extractor) Extractor {
	return tryExtractor{inner: e}
}

func (t tryExtractor) Extract(rc *RequestContext) (any, *Rejection) {
	v, rej := t.inner.Extract(rc)
	return Result{Value: v, Rejection: rej}, nil
}

func (t tryExtractor) ConsumesBody() bool { return t.inner.ConsumesBody() }

// Unwrap exposes the wrapped extractor so build-phase checks (state
// validation) see through the Try wrapper.
func (t tryExtractor) Unwrap() Extractor { return t.inner }

// Args is the ordered tuple of resolved extractor values passed to a
// handler, one entry per declared extractor.
type Args []any

// Arg returns the i-th resolved argument asserted to T. A type mismatch is a
// route-configuration bug and panics with a descriptive message.
func Arg[T any](args Args, i int) T {
	v, ok := args[i].(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("extract: argument %d has type %T, handler expected %T", i, args[i], zero))
	}
	return v
}
