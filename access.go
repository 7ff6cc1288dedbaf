package aerosol

import (
	"context"
	"reflect"
)

// Resolver is the access surface shared by Aero and View. The package-level
// typed accessors work against either; a View additionally restricts which
// types may pass through.
type Resolver interface {
	resolverStore() *store
	resolverAero() Aero
	allows(t reflect.Type) error
}

// Get returns the value of type T, panicking if it is not present. Get never
// runs a constructor; use Obtain for on-demand construction. It does wait out
// a construction that is already in flight.
func Get[T any](r Resolver) T {
	value, err := getWithError[T](r)
	if err != nil {
		panic(err)
	}
	return value
}

// TryGet returns the value of type T and whether it was present. Like Get it
// never runs a constructor, but waits out a construction already in flight.
func TryGet[T any](r Resolver) (T, bool) {
	value, err := getWithError[T](r)
	return value, err == nil
}

func getWithError[T any](r Resolver) (T, error) {
	var target T
	t := typeOf[T]()
	if err := r.allows(t); err != nil {
		return target, err
	}
	err := r.resolverStore().fillType(context.Background(), r.resolverAero(), t, reflect.ValueOf(&target), false)
	return target, err
}

// Obtain returns the value of type T, constructing and memoizing it first if
// the type has a generator, a provider, or a registered constructor. Panics
// on failure; the typical behavior for an unsatisfiable dependency is a
// panic on the caller's side anyway, so this presents the simplified
// interface.
func Obtain[T any](ctx context.Context, r Resolver) T {
	value, err := ObtainWithError[T](ctx, r)
	if err != nil {
		panic(err)
	}
	return value
}

// ObtainWithError behaves like Obtain but reports failure as an error value
// carrying the cause. A failed construction leaves the type absent, so a
// later call can retry it.
func ObtainWithError[T any](ctx context.Context, r Resolver) (T, error) {
	var target T
	t := typeOf[T]()
	if err := r.allows(t); err != nil {
		return target, err
	}
	err := r.resolverStore().fillType(ctx, r.resolverAero(), t, reflect.ValueOf(&target), true)
	return target, err
}

// Has reports whether a value of type T is already present. It does not count
// unconstructed generators or bindings and does not block on an in-flight
// construction.
func Has[T any](r Resolver) bool {
	t := typeOf[T]()
	if r.allows(t) != nil {
		return false
	}
	s := r.resolverStore()
	sl := s.findApplicableSlot(t)
	if sl == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return sl.filled
}

// Insert stores value under T, overwriting any existing value, and returns
// the previous value if one was present. Every handle sharing the collection
// observes the new value immediately.
func Insert[T any](r Resolver, value T) (T, bool) {
	var prev T
	t := typeOf[T]()
	if err := r.allows(t); err != nil {
		panic(err)
	}
	previous, replaced := r.resolverStore().insertValue(t, value)
	if replaced {
		prev = previous.(T)
	}
	return prev, replaced
}

// GetBatch fills every target, each of which must be a pointer to the
// requested dependency type, constructing values as needed. It panics if any
// dependency cannot be provided; GetBatchWithError returns the failure
// instead.
func GetBatch(ctx context.Context, r Resolver, targets ...any) {
	if err := GetBatchWithError(ctx, r, targets...); err != nil {
		panic(err)
	}
}

// GetBatchWithError fills every target from the collection, stopping at the
// first dependency that cannot be provided.
func GetBatchWithError(ctx context.Context, r Resolver, targets ...any) error {
	s := r.resolverStore()
	a := r.resolverAero()
	for _, target := range targets {
		val := reflect.ValueOf(target)
		if val.Kind() != reflect.Pointer || val.IsNil() {
			panic("aerosol: target must be a non-nil pointer")
		}
		if err := r.allows(val.Type().Elem()); err != nil {
			return err
		}
		if err := s.fill(ctx, a, target, true); err != nil {
			return err
		}
	}
	return nil
}

// GetOrInit returns the existing value for T, or atomically constructs it
// with init, stores it and returns it. Exactly one of any number of
// concurrent callers runs init; the others block until it finishes and
// receive the same value. A generator or provider already attached to T takes
// precedence over init, which is only a fallback for an unbound type.
func GetOrInit[T any](ctx context.Context, r Resolver, init Constructor[T]) (T, error) {
	var target T
	t := typeOf[T]()
	if err := r.allows(t); err != nil {
		return target, err
	}
	s := r.resolverStore()
	sl := s.findApplicableSlot(t)
	unbound := sl == nil
	if !unbound {
		s.mu.Lock()
		unbound = !sl.filled && sl.generator == nil && sl.binding == nil && sl.constructing == nil
		s.mu.Unlock()
	}
	if unbound {
		sl = s.bindSlot(t, bindingOf(init))
	}
	err := s.getValue(ctx, r.resolverAero(), sl, t, reflect.ValueOf(&target), true)
	return target, err
}
