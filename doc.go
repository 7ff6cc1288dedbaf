// Package aerosol provides simple but powerful dependency composition. It stores
// dependencies keyed by their type in a shared, concurrency-safe collection that
// is cheap to hand around an application. Dependencies can be inserted eagerly at
// startup, or constructed lazily and memoized the first time they are asked for.
// A value can be requested by its concrete type or by an interface it implements.
//
// The Aero type is the handle to the collection and has comprehensive
// documentation about how it works. Requirement sets are declared with
// NewInterface and are checked against a concrete Aero when it is built, before
// any runtime access happens.
//
// There are also helper functions for carrying an Aero inside a context.Context
// to make use in request-scoped code more concise.
package aerosol
