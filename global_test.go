package aerosol

import (
	"context"
	"testing"

	"github.com/gburgyan/go-timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobal_AttachAndFromContext(t *testing.T) {
	a := New(&testWidget{val: 42})
	ctx := Attach(context.Background(), a)

	got := FromContext(ctx)
	assert.Equal(t, 42, Get[*testWidget](got).val)

	assert.Panics(t, func() {
		FromContext(context.Background())
	})

	_, ok := TryFromContext(context.Background())
	assert.False(t, ok)
}

func TestGlobal_Resolve(t *testing.T) {
	a := New(func(ctx context.Context) *testWidget {
		return &testWidget{val: 7}
	})
	ctx := Attach(context.Background(), a)

	widget, err := Resolve[*testWidget](ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, widget.val)

	_, err = Resolve[*testDoodad](ctx)
	assert.Error(t, err)

	_, err = Resolve[*testWidget](context.Background())
	require.Error(t, err)
	var depErr *DependencyError
	require.ErrorAs(t, err, &depErr)
}

func TestGlobal_MustResolve(t *testing.T) {
	a := New(&testWidget{val: 1})
	ctx := Attach(context.Background(), a)

	assert.Equal(t, 1, MustResolve[*testWidget](ctx).val)
	assert.Panics(t, func() {
		MustResolve[*testDoodad](ctx)
	})
}

func TestGlobal_NestedAttachShadows(t *testing.T) {
	outer := New(&testWidget{val: 1})
	inner := New(&testWidget{val: 2})

	ctx := Attach(context.Background(), outer)
	ctx2 := Attach(ctx, inner)

	assert.Equal(t, 1, MustResolve[*testWidget](ctx).val)
	assert.Equal(t, 2, MustResolve[*testWidget](ctx2).val)
}

func TestGlobal_Status(t *testing.T) {
	a := New(&testWidget{val: 1})
	ctx := Attach(context.Background(), a)

	assert.Contains(t, Status(ctx), "direct value set")
}

func TestGlobal_TimingCapture(t *testing.T) {
	EnableTiming = TimingConstructors
	defer func() { EnableTiming = TimingDisable }()

	timingCtx := timing.Root(context.Background())
	a := New(
		WithConstructionContext(timingCtx),
		func(ctx context.Context) *testWidget {
			return &testWidget{val: 42}
		},
	)

	widget := Obtain[*testWidget](context.Background(), a)
	assert.Equal(t, 42, widget.val)
}
