package aerosol

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Status returns a string describing the state of the store: each dependency
// type that is known about, whether it has a value, and how a value can be
// made.
//
// Note that while everything returned is true, a stored type that implements
// an interface which hasn't been asked for yet will not show an entry for the
// interface; those assignments are recorded lazily on first lookup.
func (s *store) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *store) statusLocked() string {
	slotVals := map[string]string{}
	var slotKeys []string

	for t, sl := range s.slots {
		keyString := fmt.Sprintf("%v", t)
		var slotLine string
		switch {
		case sl.assignedFrom != nil:
			slotLine = fmt.Sprintf("%v - assigned from %v", t, sl.slotType)
		case sl.status == statusDirect:
			slotLine = fmt.Sprintf("%v - direct value set", t)
		case sl.status == statusGenerator && !sl.filled:
			slotLine = fmt.Sprintf("%v - uninitialized - generator: %s", t, formatGeneratorDebug(sl.generator))
		case sl.status == statusGenerator:
			slotLine = fmt.Sprintf("%v - created from generator: %s", t, formatGeneratorDebug(sl.generator))
		case sl.filled:
			slotLine = fmt.Sprintf("%v - created from bound constructor", t)
		default:
			slotLine = fmt.Sprintf("%v - uninitialized - constructor bound", t)
		}
		slotVals[keyString] = slotLine
		slotKeys = append(slotKeys, keyString)
	}

	sort.Strings(slotKeys)

	result := strings.Builder{}
	for _, slotKey := range slotKeys {
		if result.Len() > 0 {
			result.WriteString("\n")
		}
		result.WriteString(slotVals[slotKey])
	}

	return result.String()
}

// formatGeneratorDebug simply returns a string representation of a generator.
// This is used instead of the native `%#v` formatter to not return the raw
// address of the generator as that's not important for this and simplifies
// testing.
func formatGeneratorDebug(gen any) string {
	if gen == nil {
		return "-"
	}
	genType := reflect.TypeOf(gen)
	if genType.Kind() != reflect.Func {
		// We should never get here
		return "non-function!"
	}
	builder := strings.Builder{}
	builder.WriteString("(")
	for i := 0; i < genType.NumIn(); i++ {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(genType.In(i).String())
	}
	builder.WriteString(") ")
	for i := 0; i < genType.NumOut(); i++ {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(genType.Out(i).String())
	}
	return builder.String()
}
