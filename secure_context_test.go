package aerosol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestKey struct{}

func TestSecureContext_ConstructorDoesNotSeeCallerValues(t *testing.T) {
	var seen any = "unset"
	a := New(func(ctx context.Context) *testWidget {
		seen = ctx.Value(requestKey{})
		return &testWidget{val: 42}
	})

	callerCtx := context.WithValue(context.Background(), requestKey{}, "request-scoped")
	widget := Obtain[*testWidget](callerCtx, a)

	assert.Equal(t, 42, widget.val)
	assert.Nil(t, seen)
}

func TestSecureContext_ConstructionContextValuesVisible(t *testing.T) {
	base := context.WithValue(context.Background(), requestKey{}, "site-scoped")
	var seen any
	a := New(
		WithConstructionContext(base),
		func(ctx context.Context) *testWidget {
			seen = ctx.Value(requestKey{})
			return &testWidget{val: 1}
		},
	)

	Obtain[*testWidget](context.Background(), a)
	assert.Equal(t, "site-scoped", seen)
}

func TestSecureContext_CallerDeadlineFlows(t *testing.T) {
	deadline := time.Now().Add(time.Hour)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	var gotDeadline time.Time
	var hasDeadline bool
	a := New(func(innerCtx context.Context) *testWidget {
		gotDeadline, hasDeadline = innerCtx.Deadline()
		return &testWidget{val: 1}
	})

	Obtain[*testWidget](ctx, a)
	require.True(t, hasDeadline)
	assert.WithinDuration(t, deadline, gotDeadline, time.Second)
}

func TestSecureContext_NestedConstructionStaysScrubbed(t *testing.T) {
	var outerSeen, innerSeen any
	a := New(
		func(ctx context.Context) *testDoodad {
			innerSeen = ctx.Value(requestKey{})
			return &testDoodad{val: "leaf"}
		},
		func(ctx context.Context, d *testDoodad) *testWidget {
			outerSeen = ctx.Value(requestKey{})
			return &testWidget{val: len(d.val)}
		},
	)

	callerCtx := context.WithValue(context.Background(), requestKey{}, "request-scoped")
	widget := Obtain[*testWidget](callerCtx, a)

	assert.Equal(t, 4, widget.val)
	assert.Nil(t, outerSeen)
	assert.Nil(t, innerSeen)
}

func TestSecureContext_ResolveInsideConstructor(t *testing.T) {
	// The attached collection is resolution machinery, not request data, so
	// it survives the value scrub and Resolve keeps working in constructors.
	a := New(
		&testDoodad{val: "dep"},
		func(ctx context.Context) *testWidget {
			d := MustResolve[*testDoodad](ctx)
			return &testWidget{val: len(d.val)}
		},
	)
	ctx := Attach(context.Background(), a)

	widget, err := Resolve[*testWidget](ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, widget.val)
}
