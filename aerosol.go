package aerosol

import (
	"context"
	"reflect"
)

// Aero is a cheap handle to a shared collection of dependencies keyed by
// type. Copies of an Aero (including the result of Clone) observe the same
// underlying collection: an insert through one handle is immediately visible
// through all of them, and a value lives as long as any handle does. The zero
// Aero is not usable; create one with New.
type Aero struct {
	inner *store
}

// Option configures an Aero while it is being built by New.
type Option func(*store)

// WithOverrides allows later arguments to New to replace dependencies already
// added for the same type. Without it a second value or generator for a type
// is a hard panic. This is useful for testing scenarios where a shared setup
// provides defaults and an individual test swaps one dependency out.
func WithOverrides() Option {
	return func(s *store) {
		s.loose = true
	}
}

// WithConstructionContext sets the context whose values constructors observe.
// Constructors always run with the deadline and cancellation of the access
// that triggered them, but their values come from this context instead, so a
// memoized value never captures request-scoped data. This is also where a
// timing root belongs when EnableTiming is on. Defaults to
// context.Background().
func WithConstructionContext(ctx context.Context) Option {
	return func(s *store) {
		s.base = ctx
	}
}

// New builds an Aero from the given arguments. Each argument may be:
//
//   - a plain value, stored under its concrete type;
//   - a function, registered as a generator: its non-error results become
//     lazily constructed dependencies of the collection, and its parameters
//     are resolved from the same collection when it first runs
//     (context.Context and Aero parameters are passed through directly);
//   - an *Interface, whose providers are bound into the collection and whose
//     flattened requirement closure is validated once everything else has
//     been added;
//   - Optional(...), Constructed[T]() or an Option.
//
// Arguments can be mixed in any order: options apply first, then values and
// generators, then interfaces, then eager construction. A missing interface
// requirement or a conflicting provider panics here, at definition time,
// rather than surfacing later during an access.
func New(args ...any) Aero {
	s := newStore()
	a := Aero{inner: s}

	var dependencies []any
	var interfaces []*Interface
	var eager []*constructedMarker

	for _, arg := range args {
		switch v := arg.(type) {
		case Option:
			v(s)
		case *Interface:
			interfaces = append(interfaces, v)
		case *constructedMarker:
			eager = append(eager, v)
		default:
			dependencies = append(dependencies, arg)
		}
	}

	for _, dep := range dependencies {
		s.addDependency(dep)
	}

	for _, it := range interfaces {
		if err := s.bindInterface(it); err != nil {
			panic(err)
		}
	}
	for _, it := range interfaces {
		if err := it.Satisfied(a); err != nil {
			panic(err)
		}
	}

	for _, m := range eager {
		if err := s.constructType(context.Background(), a, m.typ); err != nil {
			panic(err)
		}
	}

	return a
}

// addDependency stores one non-option argument to New.
func (s *store) addDependency(dep any) {
	if ow, ok := dep.(*optionalWrapper); ok {
		s.addOptional(ow)
		return
	}
	if dep == nil {
		panic("aerosol: untyped nil dependency")
	}
	t := reflect.TypeOf(dep)
	if t.Kind() == reflect.Func {
		s.addGenerator(dep)
		return
	}
	s.addValue(t, dep)
}

// Clone returns a handle sharing the same dependency collection. It is O(1):
// an Aero is already safe and cheap to copy directly, Clone just makes the
// sharing explicit at call sites.
func (a Aero) Clone() Aero {
	return a
}

// Status is a diagnostic tool describing each dependency type the collection
// knows about, whether it has a value, and how it can be constructed.
func (a Aero) Status() string {
	return a.resolverStore().Status()
}

func (a Aero) resolverStore() *store {
	if a.inner == nil {
		panic("aerosol: use New to create an Aero")
	}
	return a.inner
}

func (a Aero) resolverAero() Aero { return a }

func (a Aero) allows(reflect.Type) error { return nil }
