package reactor

import "testing"

func BenchmarkEffect_Create(b *testing.B) {
	count := NewSignal(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eff := Effect(func() { _ = count.Get() })
		eff.Stop()
	}
}

func BenchmarkEffect_CreateMultipleDeps(b *testing.B) {
	s1 := NewSignal(0)
	s2 := NewSignal("test")
	s3 := NewSignal(true)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eff := Effect(func() {
			_ = s1.Get()
			_ = s2.Get()
			_ = s3.Get()
		})
		eff.Stop()
	}
}

func BenchmarkEffect_Execute(b *testing.B) {
	count := NewSignal(0)
	eff := Effect(func() { _ = count.Get() })
	defer eff.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count.Set(i)
	}
}

func BenchmarkEffect_ExecuteWithComputation(b *testing.B) {
	count := NewSignal(0)

	var result int
	eff := Effect(func() {
		val := count.Get()
		result = val * val
	})
	defer eff.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count.Set(i)
	}
	_ = result
}

func BenchmarkEffect_Stop(b *testing.B) {
	effects := make([]EffectRef, b.N)
	count := NewSignal(0)

	for i := 0; i < b.N; i++ {
		effects[i] = Effect(func() { _ = count.Get() })
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		effects[i].Stop()
	}
}

func BenchmarkEffect_WithCleanup(b *testing.B) {
	count := NewSignal(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eff := EffectWithCleanup(func() func() {
			_ = count.Get()
			return func() {}
		})
		eff.Stop()
	}
}

func BenchmarkEffect_CleanupExecution(b *testing.B) {
	count := NewSignal(0)

	eff := EffectWithCleanup(func() func() {
		_ = count.Get()
		return func() {}
	})
	defer eff.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count.Set(i)
	}
}

func BenchmarkEffect_ManyEffectsOneSignal(b *testing.B) {
	count := NewSignal(0)
	effects := make([]EffectRef, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 100; j++ {
			effects[j] = Effect(func() { _ = count.Get() })
		}
		count.Set(i)
		for j := 0; j < 100; j++ {
			effects[j].Stop()
		}
	}
}

func BenchmarkEffect_ChainedComputed(b *testing.B) {
	base := NewSignal(0)
	comp := NewComputed(func() int { return base.Get() * 2 })

	var result int
	eff := Effect(func() { result = comp.Get() })
	defer eff.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		base.Set(i)
	}
	_ = result
}

func BenchmarkEffect_ConcurrentStops(b *testing.B) {
	count := NewSignal(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eff := Effect(func() { _ = count.Get() })

		go eff.Stop()
		go eff.Stop()
		go eff.Stop()

		eff.Stop()
	}
}

func BenchmarkEffect_WithCleanupExecution(b *testing.B) {
	count := NewSignal(0)

	cleanupCounter := 0
	eff := EffectWithCleanup(func() func() {
		_ = count.Get()
		return func() { cleanupCounter++ }
	})
	defer eff.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		count.Set(i)
	}
}
