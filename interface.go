package aerosol

import (
	"fmt"
	"reflect"
)

// Interface is a named, composable requirement set: the dependency types a
// piece of code needs from an Aero, plus optionally a provider for some of
// them. An Interface is built once with NewInterface and is immutable
// afterwards. Composing interfaces with Extends unions their requirement
// closures, deduplicated by type identity, so diamond-shaped inheritance
// collapses cleanly: a type reachable through two parents is one requirement,
// not a conflict. Two parents supplying different providers for the same type
// is a conflict, and it is raised where the composition is defined.
type Interface struct {
	name    string
	parents []*Interface

	direct   []reflect.Type
	bindings map[reflect.Type]*binding

	// Flattened closure, computed once at definition time.
	closure map[reflect.Type]*binding
	source  map[reflect.Type]string
	ordered []reflect.Type
}

// InterfaceOption adds a requirement, a provider or a parent to an interface
// under construction.
type InterfaceOption func(*Interface)

// Require declares that the interface needs a dependency of type T.
func Require[T any]() InterfaceOption {
	return func(it *Interface) {
		it.direct = append(it.direct, typeOf[T]())
	}
}

// Provide declares that the interface needs a dependency of type T and
// supplies the constructor to use when an Aero it is bound to has no value
// for T. The binding belongs to the type, not to any particular Aero: every
// collection the interface is bound to uses the same construction rule.
func Provide[T any](fn Constructor[T]) InterfaceOption {
	return func(it *Interface) {
		b := bindingOf(fn)
		if existing, ok := it.bindings[b.typ]; ok && existing.id != b.id {
			panic(fmt.Sprintf("aerosol: conflicting provider for type %v in interface %q", b.typ, it.name))
		}
		it.direct = append(it.direct, b.typ)
		it.bindings[b.typ] = b
	}
}

// Extends declares parent interfaces whose requirements and providers are
// inherited.
func Extends(parents ...*Interface) InterfaceOption {
	return func(it *Interface) {
		it.parents = append(it.parents, parents...)
	}
}

// NewInterface builds a requirement set from the given options and computes
// its flattened inheritance closure immediately. Conflicting providers for
// the same dependency type reachable through different parents panic here, at
// the point of composition; ambiguity is never resolved by inheritance order.
func NewInterface(name string, opts ...InterfaceOption) *Interface {
	it := &Interface{
		name:     name,
		bindings: map[reflect.Type]*binding{},
	}
	for _, opt := range opts {
		opt(it)
	}
	it.flatten()
	return it
}

func (it *Interface) flatten() {
	it.closure = map[reflect.Type]*binding{}
	it.source = map[reflect.Type]string{}

	for _, parent := range it.parents {
		for _, t := range parent.ordered {
			it.mergeRequirement(t, parent.closure[t], parent.source[t])
		}
	}
	for _, t := range it.direct {
		it.mergeRequirement(t, it.bindings[t], it.name)
	}
}

// mergeRequirement adds one requirement to the closure, deduplicating by type
// identity. The same type reachable through two inheritance paths collapses
// to a single requirement; two different providers for it are a hard error.
func (it *Interface) mergeRequirement(t reflect.Type, b *binding, from string) {
	existing, seen := it.closure[t]
	if !seen {
		it.closure[t] = b
		it.source[t] = from
		it.ordered = append(it.ordered, t)
		return
	}
	if b == nil {
		return
	}
	if existing == nil {
		it.closure[t] = b
		it.source[t] = from
		return
	}
	if existing.id != b.id {
		panic(fmt.Sprintf("aerosol: conflicting provider for type %v in interface %q (via %q and %q)",
			t, it.name, it.source[t], from))
	}
}

// Name returns the interface's name.
func (it *Interface) Name() string {
	return it.name
}

// Types returns the flattened requirement closure in declaration order,
// parents before direct requirements.
func (it *Interface) Types() []reflect.Type {
	out := make([]reflect.Type, len(it.ordered))
	copy(out, it.ordered)
	return out
}

// Satisfied reports whether the Aero can provide every dependency type in the
// interface's flattened closure right now: a stored value, a generator, a
// bound provider, or a constructor registered against the type. The
// interface's own providers only count once they have been bound into the
// collection, which New and Derive do before checking, so a nil result is the
// satisfaction proof that gates handing this Aero to code declaring the
// interface as its requirement.
func (it *Interface) Satisfied(a Aero) error {
	s := a.resolverStore()
	for _, t := range it.ordered {
		if sl := s.findApplicableSlot(t); sl != nil {
			continue
		}
		if registeredConstructor(t) != nil {
			continue
		}
		return &DependencyError{
			Message:        "missing dependency type",
			ReferencedType: t,
			Status:         s.Status(),
		}
	}
	return nil
}

// Assert panics if the Aero does not satisfy the interface.
func (it *Interface) Assert(a Aero) {
	if err := it.Satisfied(a); err != nil {
		panic(err)
	}
}

// bindInterface installs the interface's providers into the store. A stored
// value for a type always wins over a binding; an existing different
// generator or provider is a conflict unless the store allows overrides.
func (s *store) bindInterface(it *Interface) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range it.ordered {
		b := it.closure[t]
		if b == nil {
			continue
		}
		sl, ok := s.slots[t]
		if !ok {
			s.slots[t] = &slot{slotType: t, status: statusBound, binding: b}
			continue
		}
		if sl.assignedFrom != nil || sl.filled {
			continue
		}
		if sl.binding != nil && sl.binding.id == b.id {
			continue
		}
		if (sl.binding != nil || sl.generator != nil) && !s.loose {
			return &DependencyError{
				Message:        "conflicting provider for type",
				ReferencedType: t,
				Status:         s.statusLocked(),
			}
		}
		sl.binding = b
		sl.generator = nil
		sl.status = statusBound
	}
	return nil
}
