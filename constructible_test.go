package aerosol

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registeredThing struct {
	built bool
}

func newRegisteredThing(ctx context.Context, a Aero) (*registeredThing, error) {
	return &registeredThing{built: true}, nil
}

func TestRegisterConstructor_FallbackConstruction(t *testing.T) {
	t.Cleanup(clearRegisteredConstructors)
	RegisterConstructor(newRegisteredThing)

	// A brand-new collection knows nothing about the type, yet Obtain can
	// build it from the constructor registered against the type itself.
	a := New()
	thing := Obtain[*registeredThing](context.Background(), a)
	assert.True(t, thing.built)

	// The result is memoized per collection, not globally.
	assert.Same(t, thing, Get[*registeredThing](a))
	b := New()
	other := Obtain[*registeredThing](context.Background(), b)
	assert.NotSame(t, thing, other)
}

func TestRegisterConstructor_GetDoesNotConstruct(t *testing.T) {
	t.Cleanup(clearRegisteredConstructors)
	RegisterConstructor(newRegisteredThing)

	a := New()
	_, found := TryGet[*registeredThing](a)
	assert.False(t, found)
}

func TestRegisterConstructor_LocalGeneratorWins(t *testing.T) {
	t.Cleanup(clearRegisteredConstructors)
	RegisterConstructor(newRegisteredThing)

	a := New(func() *registeredThing {
		return &registeredThing{built: false}
	})

	thing := Obtain[*registeredThing](context.Background(), a)
	assert.False(t, thing.built)
}

func TestRegisterConstructor_ConflictPanics(t *testing.T) {
	t.Cleanup(clearRegisteredConstructors)
	RegisterConstructor(newRegisteredThing)

	// Re-registering the same function is a no-op.
	assert.NotPanics(t, func() {
		RegisterConstructor(newRegisteredThing)
	})

	assert.Panics(t, func() {
		RegisterConstructor(func(ctx context.Context, a Aero) (*registeredThing, error) {
			return nil, fmt.Errorf("different rule")
		})
	})
}

func TestRegisterConstructor_SatisfiesInterface(t *testing.T) {
	t.Cleanup(clearRegisteredConstructors)
	RegisterConstructor(newRegisteredThing)

	it := NewInterface("things", Require[*registeredThing]())
	assert.NoError(t, it.Satisfied(New()))
}

func TestConstructRemaining(t *testing.T) {
	loggerCalls := 0
	clockCalls := 0
	it := NewInterface("app",
		Provide[*testLogger](func(ctx context.Context, a Aero) (*testLogger, error) {
			loggerCalls++
			return &testLogger{}, nil
		}),
		Provide[*testClock](func(ctx context.Context, a Aero) (*testClock, error) {
			clockCalls++
			return &testClock{now: 1}, nil
		}),
	)

	a := New(it)
	require.NoError(t, a.ConstructRemaining(context.Background(), it))

	assert.Equal(t, 1, loggerCalls)
	assert.Equal(t, 1, clockCalls)
	assert.True(t, Has[*testLogger](a))
	assert.True(t, Has[*testClock](a))

	// Everything already has a value; a second pass constructs nothing.
	require.NoError(t, a.ConstructRemaining(context.Background(), it))
	assert.Equal(t, 1, loggerCalls)
	assert.Equal(t, 1, clockCalls)
}

func TestConstructRemaining_SkipsExistingValues(t *testing.T) {
	calls := 0
	it := NewInterface("app",
		Provide[*testLogger](func(ctx context.Context, a Aero) (*testLogger, error) {
			calls++
			return &testLogger{}, nil
		}),
	)

	mine := &testLogger{lines: []string{"mine"}}
	a := New(mine, it)
	require.NoError(t, a.ConstructRemaining(context.Background(), it))

	assert.Equal(t, 0, calls)
	assert.Same(t, mine, Get[*testLogger](a))
}

func TestConstructRemaining_ReportsFailure(t *testing.T) {
	it := NewInterface("app",
		Require[*testLogger](),
		Provide[*testClock](func(ctx context.Context, a Aero) (*testClock, error) {
			return nil, fmt.Errorf("no clock source")
		}),
	)

	a := New(&testLogger{}, it)
	err := a.ConstructRemaining(context.Background(), it)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no clock source")
}
