// Package testutil holds helpers shared by package tests.
package testutil

import (
	"runtime"
	"testing"
	"time"
)

// leakTimeout bounds how long a check waits for goroutines to wind down.
var leakTimeout = 5 * time.Second

// GoroutineBaseline settles the runtime and returns the current goroutine count.
func GoroutineBaseline() int {
	runtime.GC()
	time.Sleep(20 * time.Millisecond)
	return runtime.NumGoroutine()
}

// TrackGoroutines takes a baseline now and, once tb and its deferred calls
// have finished, fails tb if more than margin extra goroutines are still alive.
func TrackGoroutines(tb testing.TB, margin int) {
	tb.Helper()
	baseline := GoroutineBaseline()
	tb.Cleanup(func() { AssertNoGoroutineLeaks(tb, baseline, margin) })
}

// AssertNoGoroutineLeaks waits for the goroutine count to fall back to
// baseline+margin. On timeout it fails tb with every goroutine's stack.
func AssertNoGoroutineLeaks(tb testing.TB, baseline, margin int) {
	tb.Helper()
	deadline := time.Now().Add(leakTimeout)
	for {
		current := runtime.NumGoroutine()
		if current <= baseline+margin {
			return
		}
		if time.Now().After(deadline) {
			tb.Errorf("goroutine leak: %d running, baseline %d, margin %d\n%s", current, baseline, margin, allStacks())
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func allStacks() string {
	buf := make([]byte, 64<<10)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, 2*len(buf))
	}
}
