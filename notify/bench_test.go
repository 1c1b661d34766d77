package notify

import "testing"

func BenchmarkSchedule(b *testing.B) {
	m := New()
	defer m.Close()

	done := make(chan struct{}, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Schedule(func() {
			select {
			case done <- struct{}{}:
			default:
			}
		})
		<-done
	}
}

func BenchmarkBatch(b *testing.B) {
	m := New()
	defer m.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Batch(func() {
			m.Schedule(func() {})
			m.Schedule(func() {})
		})
	}
	m.Flush()
}
