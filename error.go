package aerosol

import (
	"fmt"
	"reflect"
)

// DependencyError reports a dependency that could not be provided: a missing
// type, a conflicting provider, a failed construction, or a cycle. Status
// carries a snapshot of the store at the point of failure to make diagnosing
// the problem practical. Definition-time failures (missing requirements,
// conflicting providers at composition) are raised as panics carrying this
// type; access-time failures are returned as ordinary errors.
type DependencyError struct {
	Message        string
	ReferencedType reflect.Type
	Status         string
	SourceError    error
}

func (e *DependencyError) Error() string {
	if e.SourceError == nil {
		return fmt.Sprintf("%s: %v", e.Message, e.ReferencedType)
	}
	return fmt.Sprintf("%s: %v (%v)", e.Message, e.ReferencedType, e.SourceError.Error())
}

func (e *DependencyError) Unwrap() error {
	return e.SourceError
}
