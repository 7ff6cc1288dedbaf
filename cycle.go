package aerosol

import (
	"context"
	"reflect"
	"sync"
)

type cycle int

const cycleKey cycle = 0

// cycleChecker records which dependency types are being constructed somewhere
// up the current construction chain. It travels on the context threaded
// through constructors, so detection only works for constructors that pass
// their context along; a constructor that drops it turns a cycle into a
// deadlock instead.
type cycleChecker struct {
	inProcess map[reflect.Type]bool
	lock      sync.Mutex
}

// checkCycle reports a cyclic dependency error if the slot's type is already
// being constructed by the caller's own construction chain. Waiting on a slot
// owned by an unrelated goroutine is fine; waiting on one owned by an
// ancestor of this call would never finish.
func checkCycle(ctx context.Context, s *store, sl *slot) error {
	c := ctx.Value(cycleKey)
	if c == nil {
		return nil
	}
	checker := c.(*cycleChecker)
	checker.lock.Lock()
	defer checker.lock.Unlock()
	if checker.inProcess[sl.slotType] {
		return &DependencyError{
			Message:        "cyclic dependency error getting slot",
			ReferencedType: sl.slotType,
			Status:         s.Status(),
		}
	}
	return nil
}

// enterConstruction registers every claimed slot type as in-process on the
// returned context and hands back the function that clears them when the
// construction run finishes.
func enterConstruction(ctx context.Context, s *store, claimed []*slot) (context.Context, func(), error) {
	var checker *cycleChecker
	checkerCtx := ctx
	if c := ctx.Value(cycleKey); c != nil {
		checker = c.(*cycleChecker)
	} else {
		checker = &cycleChecker{
			inProcess: map[reflect.Type]bool{},
		}
		checkerCtx = context.WithValue(ctx, cycleKey, checker)
	}

	checker.lock.Lock()
	defer checker.lock.Unlock()

	for _, sl := range claimed {
		if checker.inProcess[sl.slotType] {
			return nil, func() {}, &DependencyError{
				Message:        "cyclic dependency error getting slot",
				ReferencedType: sl.slotType,
				Status:         s.Status(),
			}
		}
	}
	for _, sl := range claimed {
		checker.inProcess[sl.slotType] = true
	}

	return checkerCtx, func() {
		checker.lock.Lock()
		for _, sl := range claimed {
			delete(checker.inProcess, sl.slotType)
		}
		checker.lock.Unlock()
	}, nil
}
