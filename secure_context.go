package aerosol

import (
	"context"
	"time"
)

// secureContext is the context constructors run under. It returns deadline
// and cancellation information from the innerContext (the access that
// triggered the construction) and values from the baseContext (the
// collection's construction context). The exceptions are cycleKey and
// aeroKey, which come from the innerContext: cycle state belongs to the
// construction chain, and the attached collection is resolution machinery
// rather than request data.
//
// The reason this exists is that a constructed value is memoized for the life
// of the collection while the triggering access is often request-scoped; a
// constructor that read the caller's values would bake one request's data
// into a shared value.
type secureContext struct {
	baseContext  context.Context
	innerContext context.Context
}

func (h *secureContext) Deadline() (deadline time.Time, ok bool) {
	return h.innerContext.Deadline()
}

func (h *secureContext) Done() <-chan struct{} {
	return h.innerContext.Done()
}

func (h *secureContext) Err() error {
	return h.innerContext.Err()
}

func (h *secureContext) Value(key any) any {
	if key == cycleKey || key == aeroKey {
		return h.innerContext.Value(key)
	}
	return h.baseContext.Value(key)
}
