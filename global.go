package aerosol

import (
	"context"
)

// TimingMode controls whether constructor runs are captured with go-timing.
type TimingMode int

const (
	// TimingDisable turns off timing for all collections.
	TimingDisable TimingMode = iota

	// TimingConstructors starts a timing context for each constructor or
	// generator run. This is useful to see where dependency resolution time
	// is being spent, and the exact stack of the resolution.
	TimingConstructors
)

// EnableTiming gates construction timing globally.
var EnableTiming = TimingDisable

type aeroKeyType int

const aeroKey aeroKeyType = 0

// Attach returns a context carrying the Aero, for code that threads a
// context.Context through its call graph instead of passing the Aero
// explicitly. Constructors receive a context derived from the one passed to
// the triggering access, so anything they resolve flows through the same
// collection.
func Attach(ctx context.Context, a Aero) context.Context {
	return context.WithValue(ctx, aeroKey, a)
}

// FromContext returns the Aero attached to the context and panics if there is
// none. Request-scoped code that only ever runs behind Attach can use this
// for brevity.
func FromContext(ctx context.Context) Aero {
	a, ok := TryFromContext(ctx)
	if !ok {
		panic("aerosol: no dependency collection attached to context")
	}
	return a
}

// TryFromContext returns the Aero attached to the context, if any.
func TryFromContext(ctx context.Context) (Aero, bool) {
	value := ctx.Value(aeroKey)
	if value == nil {
		return Aero{}, false
	}
	a, ok := value.(Aero)
	return a, ok
}

// Resolve returns the value of type T from the Aero attached to the context,
// constructing it on demand like Obtain.
func Resolve[T any](ctx context.Context) (T, error) {
	a, ok := TryFromContext(ctx)
	if !ok {
		var zero T
		return zero, &DependencyError{
			Message:        "no dependency collection attached to context resolving",
			ReferencedType: typeOf[T](),
		}
	}
	return ObtainWithError[T](ctx, a)
}

// MustResolve behaves like Resolve but panics on failure.
func MustResolve[T any](ctx context.Context) T {
	value, err := Resolve[T](ctx)
	if err != nil {
		panic(err)
	}
	return value
}

// Status describes the dependency collection attached to the context.
func Status(ctx context.Context) string {
	return FromContext(ctx).Status()
}
