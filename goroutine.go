package reactor

import "runtime"

// goroutineID extracts the calling goroutine's id from its stack trace so
// the tracking context can be kept goroutine-local without a full
// context.Context thread-through. Parses the "goroutine N [...running]"
// header runtime.Stack always emits first.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	seenDigit := false
	for i := 0; i < n; i++ {
		c := buf[i]
		if c >= '0' && c <= '9' {
			seenDigit = true
			id = id*10 + uint64(c-'0')
			continue
		}
		if seenDigit {
			break
		}
	}
	return id
}
