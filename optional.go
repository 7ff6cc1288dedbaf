package aerosol

import (
	"fmt"
	"reflect"
)

// optionalWrapper is an internal wrapper to signal that a nil pointer should
// be silently skipped instead of panicking.
type optionalWrapper struct {
	dependency any
}

// Optional wraps a dependency argument to New so typed nil pointers are
// silently skipped. If the dependency is nil it is not added to the
// collection; if it is non-nil it is added as a normal direct dependency.
//
// Constraints:
//   - Only pointer and interface types are allowed
//   - Generators (functions) cannot be optional
//
// The primary use case is testing, where dependencies may be conditionally
// provided:
//
//	var mockDB *MockDatabase // may be nil in some tests
//	a := aerosol.New(aerosol.Optional(mockDB), ...)
func Optional(dep any) *optionalWrapper {
	return &optionalWrapper{
		dependency: dep,
	}
}

// addOptional handles an optional dependency: nil is skipped, anything else
// is added as a normal dependency.
func (s *store) addOptional(ow *optionalWrapper) {
	dep := ow.dependency

	if _, ok := dep.(*optionalWrapper); ok {
		panic("aerosol: Optional cannot wrap another Optional")
	}
	if _, ok := dep.(*constructedMarker); ok {
		panic("aerosol: Optional cannot wrap Constructed")
	}
	if _, ok := dep.(*Interface); ok {
		panic("aerosol: Optional cannot wrap an Interface")
	}

	depType := reflect.TypeOf(dep)
	if depType == nil {
		// untyped nil - skip silently
		return
	}

	if depType.Kind() == reflect.Func {
		panic("aerosol: Optional cannot wrap a generator function")
	}

	if kind := depType.Kind(); kind != reflect.Pointer && kind != reflect.Interface {
		panic(fmt.Sprintf("aerosol: Optional requires a pointer or interface type, got: %s", depType))
	}

	if reflect.ValueOf(dep).IsNil() {
		// typed nil - skip silently
		return
	}

	s.addValue(depType, dep)
}
