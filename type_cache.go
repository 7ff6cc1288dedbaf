package aerosol

import (
	"reflect"
	"sync"
)

// typeInfo caches the reflection queries needed to drive a generator
// function: its parameter types and its non-error result types.
type typeInfo struct {
	params   []reflect.Type
	results  []reflect.Type
	hasError bool
}

// Global type cache to avoid repeated reflection operations.
var typeInfoCache sync.Map // map[reflect.Type]*typeInfo

// funcInfo returns cached parameter and result information for a generator
// function type, computing it on first use. Panics if t is not a function or
// declares more than one error result.
func funcInfo(t reflect.Type) *typeInfo {
	if cached, ok := typeInfoCache.Load(t); ok {
		return cached.(*typeInfo)
	}

	if t.Kind() != reflect.Func {
		panic("aerosol: generator must be a function")
	}

	info := &typeInfo{}
	info.params = make([]reflect.Type, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		info.params[i] = t.In(i)
	}

	for i := 0; i < t.NumOut(); i++ {
		returnType := t.Out(i)
		if returnType.AssignableTo(errorType) {
			if info.hasError {
				panic("aerosol: multiple error results on a generator function not permitted")
			}
			info.hasError = true
		} else {
			info.results = append(info.results, returnType)
		}
	}

	actual, _ := typeInfoCache.LoadOrStore(t, info)
	return actual.(*typeInfo)
}

// interfaceCache caches which concrete types satisfy which interfaces.
type interfaceCache struct {
	mu    sync.RWMutex
	cache map[interfaceCacheKey]bool
}

type interfaceCacheKey struct {
	concrete reflect.Type
	iface    reflect.Type
}

var globalInterfaceCache = &interfaceCache{
	cache: make(map[interfaceCacheKey]bool),
}

// canAssign checks if the concrete type can be assigned to the interface
// type, with caching.
func canAssign(concrete, iface reflect.Type) bool {
	if iface.Kind() != reflect.Interface {
		return concrete == iface
	}

	key := interfaceCacheKey{concrete: concrete, iface: iface}

	// Fast path: check cache
	globalInterfaceCache.mu.RLock()
	if result, ok := globalInterfaceCache.cache[key]; ok {
		globalInterfaceCache.mu.RUnlock()
		return result
	}
	globalInterfaceCache.mu.RUnlock()

	// Slow path: compute and cache
	result := concrete.AssignableTo(iface)

	globalInterfaceCache.mu.Lock()
	globalInterfaceCache.cache[key] = result
	globalInterfaceCache.mu.Unlock()

	return result
}
