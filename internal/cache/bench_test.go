package cache

import "testing"

func BenchmarkGet(b *testing.B) {
	c := New[uint64, int](1000, nil)
	for i := range uint64(100) {
		c.Put(i, int(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(50)
	}
}

func BenchmarkObtain(b *testing.B) {
	c := New[uint64, int](1000, nil)
	create := func() (int, error) { return 1, nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Obtain(uint64(i%100), create)
	}
}

func BenchmarkTrim(b *testing.B) {
	c := New(64, func(uint64, int) {})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Put(uint64(i), i)
	}
}
