package main

import (
	"sync"
	"time"
)

// pendingWrites tracks goroutines that record sessions so quitting can wait
// for them instead of cutting a vault write short.
type pendingWrites struct {
	wg sync.WaitGroup
}

func (writes *pendingWrites) Go(fn func()) {
	writes.wg.Add(1)
	go func() {
		defer writes.wg.Done()
		fn()
	}()
}

// Wait blocks until every tracked goroutine returned or timeout elapsed. It
// reports whether all of them finished.
func (writes *pendingWrites) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		writes.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
