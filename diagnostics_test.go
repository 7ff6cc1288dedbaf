package aerosol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_DirectValue(t *testing.T) {
	a := New(&testWidget{val: 1})
	assert.Equal(t, "*aerosol.testWidget - direct value set", a.Status())
}

func TestStatus_GeneratorLifecycle(t *testing.T) {
	a := New(func(ctx context.Context) *testWidget {
		return &testWidget{val: 1}
	})

	assert.Equal(t, "*aerosol.testWidget - uninitialized - generator: (context.Context) *aerosol.testWidget", a.Status())

	Obtain[*testWidget](context.Background(), a)
	assert.Equal(t, "*aerosol.testWidget - created from generator: (context.Context) *aerosol.testWidget", a.Status())
}

func TestStatus_BoundConstructorLifecycle(t *testing.T) {
	it := NewInterface("logging", Provide[*testLogger](newTestLogger))
	a := New(it)

	assert.Equal(t, "*aerosol.testLogger - uninitialized - constructor bound", a.Status())

	Obtain[*testLogger](context.Background(), a)
	assert.Equal(t, "*aerosol.testLogger - created from bound constructor", a.Status())
}

func TestStatus_InterfaceAssignment(t *testing.T) {
	a := New(&tempImpl{})
	Get[tempInterface](a)

	status := a.Status()
	assert.Contains(t, status, "*aerosol.tempImpl - direct value set")
	assert.Contains(t, status, "aerosol.tempInterface - assigned from *aerosol.tempImpl")
}

func TestStatus_MultipleEntriesSorted(t *testing.T) {
	a := New(
		&testWidget{val: 1},
		func() *testDoodad { return &testDoodad{val: "x"} },
	)

	assert.Equal(t,
		"*aerosol.testDoodad - uninitialized - generator: () *aerosol.testDoodad\n"+
			"*aerosol.testWidget - direct value set",
		a.Status())
}
