package tracker

import "testing"

func BenchmarkSetWithSubscribers(b *testing.B) {
	tr := New(true)
	for i := 0; i < 8; i++ {
		tr.Subscribe(func(bool) {})
	}
	b.ResetTimer()
	v := true
	for i := 0; i < b.N; i++ {
		v = !v
		tr.Set(v)
	}
}
