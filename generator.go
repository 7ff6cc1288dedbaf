package aerosol

import (
	"context"
	"fmt"
	"reflect"
)

// addGenerator validates the generator function and creates a slot for each
// of its non-error results. If it's not valid this function panics; it is
// only reachable from New.
func (s *store) addGenerator(generatorFunction any) {
	info := funcInfo(reflect.TypeOf(generatorFunction))

	if len(info.results) == 0 {
		panic("aerosol: generator must have at least one result value")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, resultType := range info.results {
		if _, ok := s.slots[resultType]; ok && !s.loose {
			panic(fmt.Sprintf("aerosol: duplicate dependency %v; use WithOverrides to allow replacement", resultType))
		}
		s.slots[resultType] = &slot{
			generator: generatorFunction,
			slotType:  resultType,
			status:    statusGenerator,
		}
	}
}

// invokeGenerator calls the slot's generator function, resolving each of its
// parameters from the store. context.Context and Aero parameters are
// satisfied directly; anything else is fetched (and constructed if needed)
// like a normal dependency.
func (s *store) invokeGenerator(ctx context.Context, a Aero, activeSlot *slot) ([]reflect.Value, error) {
	info := funcInfo(reflect.TypeOf(activeSlot.generator))
	params := make([]reflect.Value, len(info.params))
	for i, inType := range info.params {
		switch inType {
		case contextType:
			params[i] = reflect.ValueOf(ctx)
		case aeroType:
			params[i] = reflect.ValueOf(a)
		default:
			paramPointer := reflect.New(inType)
			if err := s.fillType(ctx, a, inType, paramPointer, true); err != nil {
				return nil, err
			}
			params[i] = paramPointer.Elem()
		}
	}

	return reflect.ValueOf(activeSlot.generator).Call(params), nil
}

// generatorError finds the error result from a generator run, if one exists.
func generatorError(results []reflect.Value) error {
	for _, result := range results {
		if result.Type().AssignableTo(errorType) && !result.IsNil() {
			return result.Interface().(error)
		}
	}
	return nil
}

// mapGeneratorResults stores the non-error results of a generator run in
// their slots. A value that arrived some other way while the generator was
// running wins over the generator's result.
func (s *store) mapGeneratorResults(results []reflect.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, result := range results {
		resultType := result.Type()
		if resultType.AssignableTo(errorType) {
			// already handled
			continue
		}
		if resultSlot, ok := s.slots[resultType]; ok && resultSlot.assignedFrom == nil {
			if !resultSlot.filled {
				resultSlot.value = result.Interface()
				resultSlot.filled = true
			}
		} else {
			// addGenerator pre-creates the output slots, so this only happens
			// when the slot was displaced by an interface assignment.
			s.slots[resultType] = &slot{
				slotType: resultType,
				status:   statusDirect,
				value:    result.Interface(),
				filled:   true,
			}
		}
	}
}

// generatorOutputSlotsLocked returns the slots for each non-error result of
// the slot's generator. Callers must hold the store lock so the claimed set
// stays consistent with what the run will fill.
func (s *store) generatorOutputSlotsLocked(activeSlot *slot) []*slot {
	info := funcInfo(reflect.TypeOf(activeSlot.generator))
	result := make([]*slot, 0, len(info.results))
	for _, retType := range info.results {
		result = append(result, s.slots[retType])
	}
	return result
}
