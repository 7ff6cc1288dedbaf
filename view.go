package aerosol

import "reflect"

// View is a capability-narrowed handle to the same underlying dependency
// collection as the Aero it was derived from. It can read, construct and
// insert only the types in its interface's flattened closure; every other
// type fails with an unsatisfied-requirement error. A View is a restriction,
// not a copy: mutations made through it are visible to the parent Aero and
// vice versa. Use it to hand a limited surface to code that should not see
// the whole collection.
type View struct {
	inner *store
	iface *Interface
}

// Derive returns a View exposing only the given interface's requirement
// closure. The interface's providers are bound into the collection first, and
// the derivation fails if the Aero does not satisfy the interface, so a View
// that exists can always provide its full closure.
func (a Aero) Derive(it *Interface) (View, error) {
	s := a.resolverStore()
	if err := s.bindInterface(it); err != nil {
		return View{}, err
	}
	if err := it.Satisfied(a); err != nil {
		return View{}, err
	}
	return View{inner: s, iface: it}, nil
}

// MustDerive behaves like Derive but panics on failure.
func (a Aero) MustDerive(it *Interface) View {
	v, err := a.Derive(it)
	if err != nil {
		panic(err)
	}
	return v
}

// Interface returns the requirement set this view was derived with.
func (v View) Interface() *Interface {
	return v.iface
}

// Status describes the state of the shared dependency collection.
func (v View) Status() string {
	return v.resolverStore().Status()
}

func (v View) resolverStore() *store {
	if v.inner == nil {
		panic("aerosol: use Aero.Derive to create a View")
	}
	return v.inner
}

// Constructors reached through a view still receive the full collection; the
// narrowing applies to the view's callers, not to construction rules.
func (v View) resolverAero() Aero {
	return Aero{inner: v.inner}
}

func (v View) allows(t reflect.Type) error {
	if _, ok := v.iface.closure[t]; ok {
		return nil
	}
	return &DependencyError{
		Message:        "dependency type not in interface " + v.iface.name,
		ReferencedType: t,
	}
}
