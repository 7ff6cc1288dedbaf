package aerosol

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/gburgyan/go-timing"
)

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	aeroType    = reflect.TypeOf(Aero{})
)

type slotStatus int

const (
	statusDirect slotStatus = iota
	statusGenerator
	statusBound
	statusAssigned
)

// slot tracks the lifecycle of a single dependency type within a store. A
// slot starts out without a value, possibly carrying a generator or a
// constructor binding, and moves through an in-flight construction phase to
// holding a value. Once a value is set it never reverts; a failed
// construction clears the in-flight marker so a later access can retry.
type slot struct {
	slotType reflect.Type
	status   slotStatus
	value    any
	filled   bool

	// generator is a function whose results fill this slot and possibly others.
	generator any

	// binding is a typed constructor attached to the slot's type.
	binding *binding

	// constructing is non-nil while a constructor is running for this slot.
	// Waiters block on the channel; it is closed when the run finishes.
	constructing chan struct{}

	// assignedFrom points at the slot that actually holds the value when this
	// slot only records an interface-to-concrete assignment.
	assignedFrom *slot
}

// store is the type-indexed dependency map shared by every handle cloned from
// the same Aero. All mutation goes through its lock.
type store struct {
	mu    sync.Mutex
	slots map[reflect.Type]*slot
	loose bool

	// base supplies the values constructors observe; see secureContext.
	base context.Context
}

func newStore() *store {
	return &store{slots: map[reflect.Type]*slot{}, base: context.Background()}
}

// addValue puts a concrete value into the store under the given type. Strict
// stores treat a second value for the same type as a programming error.
func (s *store) addValue(t reflect.Type, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[t]; ok && !s.loose {
		panic(fmt.Sprintf("aerosol: duplicate dependency %v; use WithOverrides to allow replacement", t))
	}
	s.slots[t] = &slot{slotType: t, status: statusDirect, value: value, filled: true}
}

// insertValue stores value under t, overwriting any existing value, and
// reports the previous one. An in-flight construction is left to finish, but
// its result will not replace the inserted value.
func (s *store) insertValue(t reflect.Type, value any) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[t]
	if !ok || sl.assignedFrom != nil {
		s.slots[t] = &slot{slotType: t, status: statusDirect, value: value, filled: true}
		if ok && sl.assignedFrom.filled {
			return sl.assignedFrom.value, true
		}
		return nil, false
	}
	var prev any
	replaced := false
	if sl.filled {
		prev, replaced = sl.value, true
	}
	sl.value = value
	sl.filled = true
	return prev, replaced
}

// findApplicableSlot locates the slot that can satisfy a request for type t.
// An exact match wins. If t is an interface, a slot whose type implements it
// is used and an assignment slot is recorded so later requests hit directly.
func (s *store) findApplicableSlot(t reflect.Type) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findApplicableSlotLocked(t)
}

func (s *store) findApplicableSlotLocked(t reflect.Type) *slot {
	if sl, ok := s.slots[t]; ok {
		if sl.assignedFrom != nil {
			return sl.assignedFrom
		}
		return sl
	}
	if t.Kind() != reflect.Interface {
		return nil
	}
	for slotType, sl := range s.slots {
		if sl.assignedFrom != nil {
			continue
		}
		if canAssign(slotType, t) {
			s.slots[t] = &slot{slotType: slotType, status: statusAssigned, assignedFrom: sl}
			return sl
		}
	}
	return nil
}

// bindSlot attaches a constructor binding to the slot for t, creating the
// slot if needed. An existing value, generator or binding is left untouched.
func (s *store) bindSlot(t reflect.Type, b *binding) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[t]; ok {
		if sl.assignedFrom != nil {
			return sl.assignedFrom
		}
		if sl.binding == nil && sl.generator == nil && !sl.filled {
			sl.binding = b
			sl.status = statusBound
		}
		return sl
	}
	sl := &slot{slotType: t, status: statusBound, binding: b}
	s.slots[t] = sl
	return sl
}

// fill resolves the dependency for target, which must be a non-nil pointer to
// the requested type. When construct is false only values that already exist
// (or are mid-construction) are returned.
func (s *store) fill(ctx context.Context, a Aero, target any, construct bool) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Pointer || val.IsNil() {
		panic("aerosol: target must be a non-nil pointer")
	}
	return s.fillType(ctx, a, val.Type().Elem(), val, construct)
}

// fillType is the central resolution path: find the applicable slot for t,
// falling back to a constructor registered against the type itself, then read
// or construct its value.
func (s *store) fillType(ctx context.Context, a Aero, t reflect.Type, target reflect.Value, construct bool) error {
	sl := s.findApplicableSlot(t)
	if sl == nil && construct {
		if b := registeredConstructor(t); b != nil {
			sl = s.bindSlot(t, b)
		}
	}
	if sl == nil {
		return &DependencyError{Message: "dependency not found", ReferencedType: t, Status: s.Status()}
	}
	return s.getValue(ctx, a, sl, t, target, construct)
}

// getValue returns the slot's value through target, constructing it first
// when allowed and needed. Concurrent requests for a missing value collapse
// into a single constructor run; the losers block until the winner finishes
// and then pick up its result.
func (s *store) getValue(ctx context.Context, a Aero, sl *slot, requested reflect.Type, target reflect.Value, construct bool) error {
	for {
		s.mu.Lock()
		if sl.filled {
			value := sl.value
			s.mu.Unlock()
			if rv := reflect.ValueOf(value); rv.IsValid() {
				target.Elem().Set(rv)
			}
			return nil
		}
		if ch := sl.constructing; ch != nil {
			s.mu.Unlock()
			if err := checkCycle(ctx, s, sl); err != nil {
				return err
			}
			select {
			case <-ch:
				continue
			case <-ctx.Done():
				return &DependencyError{
					Message:        "context done waiting for dependency",
					ReferencedType: requested,
					Status:         s.Status(),
					SourceError:    ctx.Err(),
				}
			}
		}
		if !construct || (sl.generator == nil && sl.binding == nil) {
			s.mu.Unlock()
			return &DependencyError{Message: "dependency has no value", ReferencedType: requested, Status: s.Status()}
		}
		claimed := s.claimConstructionLocked(sl)
		s.mu.Unlock()
		if err := s.construct(ctx, a, sl, claimed); err != nil {
			return err
		}
	}
}

// claimConstructionLocked marks sl and, for generators, every unfilled
// sibling output slot as being constructed by this run so racing requests for
// any of the outputs wait for it instead of invoking the generator again.
// Callers must hold the store lock.
func (s *store) claimConstructionLocked(sl *slot) []*slot {
	ch := make(chan struct{})
	sl.constructing = ch
	claimed := []*slot{sl}
	if sl.generator == nil {
		return claimed
	}
	for _, out := range s.generatorOutputSlotsLocked(sl) {
		if out == nil || out == sl || out.filled || out.constructing != nil {
			continue
		}
		out.constructing = ch
		claimed = append(claimed, out)
	}
	return claimed
}

// construct runs the slot's generator or constructor binding. claimed lists
// every slot this run is responsible for; their in-flight markers are cleared
// and their waiters released when the run finishes, whether or not it
// produced a value. A panicking constructor likewise leaves the slot absent.
func (s *store) construct(ctx context.Context, a Aero, sl *slot, claimed []*slot) error {
	ch := sl.constructing
	defer func() {
		s.mu.Lock()
		for _, c := range claimed {
			if c.constructing == ch {
				c.constructing = nil
			}
		}
		s.mu.Unlock()
		close(ch)
	}()

	// Constructed values outlive the triggering access, so the constructor
	// runs with the caller's deadline but the construction context's values.
	ctx = &secureContext{baseContext: s.base, innerContext: ctx}

	ctx, release, err := enterConstruction(ctx, s, claimed)
	if err != nil {
		return err
	}
	defer release()

	if EnableTiming == TimingConstructors {
		tCtx, complete := timing.Start(ctx, "aerosol:"+sl.slotType.String())
		defer complete()
		ctx = tCtx
	}

	if sl.binding != nil {
		value, cerr := sl.binding.fn(ctx, a)
		if cerr != nil {
			return &DependencyError{
				Message:        "error constructing dependency",
				ReferencedType: sl.slotType,
				Status:         s.Status(),
				SourceError:    cerr,
			}
		}
		s.mu.Lock()
		if !sl.filled {
			sl.value = value
			sl.filled = true
		}
		s.mu.Unlock()
		return nil
	}

	results, gerr := s.invokeGenerator(ctx, a, sl)
	if gerr != nil {
		return gerr
	}
	if resultErr := generatorError(results); resultErr != nil {
		return &DependencyError{
			Message:        "error invoking generator",
			ReferencedType: sl.slotType,
			Status:         s.Status(),
			SourceError:    resultErr,
		}
	}
	s.mapGeneratorResults(results)
	return nil
}
