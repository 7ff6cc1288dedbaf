package aerosol

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Constructor is the construction rule for a dependency type: given a context
// and the dependency collection it belongs to, produce a value or fail. A
// constructor may fetch other dependencies from the collection while it runs;
// it should pass ctx along to those calls so cyclic construction is caught
// instead of deadlocking.
type Constructor[T any] func(ctx context.Context, a Aero) (T, error)

// binding is the type-erased form of a Constructor. It carries the identity
// of the original function so conflicting bindings for the same type can be
// detected at composition time.
type binding struct {
	typ reflect.Type
	id  uintptr
	fn  func(ctx context.Context, a Aero) (any, error)
}

func bindingOf[T any](fn Constructor[T]) *binding {
	return &binding{
		typ: typeOf[T](),
		id:  reflect.ValueOf(fn).Pointer(),
		fn: func(ctx context.Context, a Aero) (any, error) {
			return fn(ctx, a)
		},
	}
}

func typeOf[T any]() reflect.Type {
	var zero T
	return reflect.TypeOf(&zero).Elem()
}

// constructorRegistry holds the constructors registered against dependency
// types themselves. Every Aero asked for one of these types falls back to
// the same construction rule.
var constructorRegistry sync.Map // map[reflect.Type]*binding

// RegisterConstructor attaches a construction rule to the type T itself. Any
// Aero asked for a T that has no stored value and no local generator or
// provider uses this rule, constructing the value on first access and
// memoizing it in that Aero's collection. Registering a different constructor
// for an already-registered type panics as a conflicting provider;
// re-registering the same function is a no-op.
func RegisterConstructor[T any](fn Constructor[T]) {
	b := bindingOf(fn)
	existing, loaded := constructorRegistry.LoadOrStore(b.typ, b)
	if loaded && existing.(*binding).id != b.id {
		panic(fmt.Sprintf("aerosol: conflicting provider for type %v", b.typ))
	}
}

func registeredConstructor(t reflect.Type) *binding {
	if b, ok := constructorRegistry.Load(t); ok {
		return b.(*binding)
	}
	return nil
}

// clearRegisteredConstructors empties the global constructor registry. Only
// used by tests.
func clearRegisteredConstructors() {
	constructorRegistry.Range(func(key, _ any) bool {
		constructorRegistry.Delete(key)
		return true
	})
}

// constructedMarker asks New to construct the given type eagerly once the
// rest of the collection is in place.
type constructedMarker struct {
	typ reflect.Type
}

// Constructed is an argument for New that constructs a T eagerly while the
// Aero is being built rather than on first access. The type must have a
// generator or provider in the same New call, or a constructor registered
// against it; a construction failure panics since there is no caller to
// report it to yet.
func Constructed[T any]() any {
	return &constructedMarker{typ: typeOf[T]()}
}

// ConstructRemaining walks the interface's flattened requirement closure and
// constructs every type that does not have a value yet. Typically called at
// application startup to front-load construction cost and surface failures
// before any request touches the collection.
func (a Aero) ConstructRemaining(ctx context.Context, it *Interface) error {
	s := a.resolverStore()
	if err := s.bindInterface(it); err != nil {
		return err
	}
	for _, t := range it.ordered {
		if err := s.constructType(ctx, a, t); err != nil {
			return err
		}
	}
	return nil
}

// constructType makes sure t has a value, constructing it if needed.
func (s *store) constructType(ctx context.Context, a Aero, t reflect.Type) error {
	return s.fillType(ctx, a, t, reflect.New(t), true)
}
