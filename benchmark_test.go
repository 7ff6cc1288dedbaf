package aerosol

import (
	"context"
	"testing"
)

func BenchmarkGetDirectValue(b *testing.B) {
	a := New(&testWidget{val: 42})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Get[*testWidget](a)
	}
}

func BenchmarkObtainMemoized(b *testing.B) {
	a := New(func() *testWidget { return &testWidget{val: 42} })
	ctx := context.Background()
	Obtain[*testWidget](ctx, a)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Obtain[*testWidget](ctx, a)
	}
}

func BenchmarkInterfaceLookup(b *testing.B) {
	a := New(&tempImpl{})
	// First request records the interface assignment slot; the loop measures
	// the repeated-lookup path.
	Get[tempInterface](a)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Get[tempInterface](a)
	}
}

func BenchmarkViewGet(b *testing.B) {
	it := NewInterface("bench", Require[*testWidget]())
	a := New(&testWidget{val: 42})
	v := a.MustDerive(it)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Get[*testWidget](v)
	}
}

func BenchmarkNew(b *testing.B) {
	for i := 0; i < b.N; i++ {
		New(&testWidget{val: 42}, &testDoodad{val: "x"})
	}
}
