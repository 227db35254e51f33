package engine

import (
	"errors"
	"sync/atomic"
)

var ErrReentrantCall = errors.New("reentrant call rejected")

// reentrancyGuard is an engine-scoped exclusive flag wrapped around every
// state-mutating entry point. External code invoked mid-settlement (token
// contracts, receive hooks) that calls back into the engine trips the flag
// and fails immediately instead of observing partial state.
//
// The flag is a compare-and-swap rather than a mutex: a reentrant call
// arrives on the goroutine that already holds the engine, so blocking would
// deadlock rather than reject.
type reentrancyGuard struct {
	locked int32
}

func (g *reentrancyGuard) enter() error {
	if !atomic.CompareAndSwapInt32(&g.locked, 0, 1) {
		return ErrReentrantCall
	}

	return nil
}

func (g *reentrancyGuard) exit() {
	atomic.StoreInt32(&g.locked, 0)
}
