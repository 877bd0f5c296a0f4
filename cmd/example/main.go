package main

import (
	"fmt"
	"os"

	"github.com/coregx/reactor"
	reactorzerolog "github.com/coregx/reactor/plugins/zerolog"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	reactor.InstallHooks(reactorzerolog.NewSink(logger))
	defer reactor.InstallHooks(nil)

	demoBasicSignals()
	demoAutoTrackedComputed()
	demoChainedComputed()
	demoEffects()
	demoSugar()
	demoCycleDetection()
	fmt.Println("\n=== Demo Complete ===")
}

func demoBasicSignals() {
	fmt.Println("=== Phase 1: Basic Signals ===")

	s := reactor.NewSignal("test")

	unsub := s.SubscribeForever(func(v string) {
		fmt.Println("Signal changed:", v)
	})
	defer unsub()

	fmt.Println("Current value:", s.Get())

	s.Set("test1")
	s.Update(func(v string) string { return v + "_updated" })
}

func demoAutoTrackedComputed() {
	fmt.Println("\n=== Phase 2: Auto-Tracked Computed ===")

	count := reactor.NewSignal(5)
	// doubled discovers count as a dependency the first time it reads it,
	// there is no dependency list to pass in.
	doubled := reactor.NewComputed(func() int {
		return count.Get() * 2
	})

	fmt.Printf("count = %d, doubled = %d\n", count.Get(), doubled.Get())

	count.Set(10)
	fmt.Printf("After count.Set(10): doubled = %d\n", doubled.Get())

	firstName := reactor.NewSignal("John")
	lastName := reactor.NewSignal("Doe")

	fullName := reactor.NewComputed(func() string {
		return firstName.Get() + " " + lastName.Get()
	})

	fmt.Printf("\nFull name: %s\n", fullName.Get())
	firstName.Set("Jane")
	fmt.Printf("After firstName.Set('Jane'): %s\n", fullName.Get())

	unsubComputed := fullName.SubscribeForever(func(v string) {
		fmt.Println("Full name changed:", v)
	})
	defer unsubComputed()

	lastName.Set("Smith")
}

func demoChainedComputed() {
	fmt.Println("\n=== Phase 3: Chained Computed + Short-Circuiting ===")

	x := reactor.NewSignal(3)
	y := reactor.NewComputed(func() int { return x.Get() * x.Get() })
	z := reactor.NewComputed(func() int { return y.Get() + 1 })

	fmt.Printf("z = %d\n", z.Get())
	x.Set(3) // same value: change-detector stops propagation before y recomputes
	fmt.Printf("After x.Set(3) (no real change): z = %d\n", z.Get())
}

func demoEffects() {
	fmt.Println("\n=== Phase 4: Effects ===")

	x := reactor.NewSignal(3)
	y := reactor.NewSignal(4)

	eff := reactor.Effect(func() {
		fmt.Printf("x=%d, y=%d, sum=%d\n", x.Get(), y.Get(), x.Get()+y.Get())
	})
	defer eff.Stop()

	x.Set(5)
	y.Set(6)

	timer := reactor.NewSignal(0)
	effWithCleanup := reactor.EffectWithCleanup(func() func() {
		v := timer.Get()
		fmt.Printf("Starting timer with value: %d\n", v)
		return func() {
			fmt.Printf("Cleaning up timer value: %d\n", v)
		}
	})
	timer.Set(1)
	timer.Set(2)
	effWithCleanup.Stop()
}

func demoSugar() {
	fmt.Println("\n=== Phase 5: Sugar Layer ===")

	count := reactor.NewSignal(7)
	wrapped := reactor.AsSignal[int](count)
	fmt.Println("AsSignal on an existing signal returns it unchanged:", wrapped == count)

	plain := reactor.AsSignal[int](42)
	fmt.Println("AsSignal on a plain value wraps it:", plain.Get())

	fmt.Println("Unref(count) =", reactor.Unref(count))
	fmt.Println("Unref(plain int) =", reactor.Unref(99))

	nums := reactor.NewSignal([]int{1, 2, 3})
	fmt.Printf("DeepUnref(nums) = %v\n", reactor.DeepUnref(nums))
}

func demoCycleDetection() {
	fmt.Println("\n=== Phase 6: Cycle Detection ===")

	var a, b *reactor.Computed[int]
	a = reactor.NewComputed(func() int { return b.Get() })
	b = reactor.NewComputed(func() int { return a.Get() })

	_, err := a.TryGet()
	fmt.Println("reading a cyclic pair returns an error:", err)
}
