package swapbuf

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Locker is the guard lock shared by a Swap and a reader session. Enter blocks
// until the lock is held and Exit releases it. Implementations are exclusive and
// not reentrant: calling Enter twice from the same context deadlocks.
type Locker interface {
	// Init prepares the lock for use. It must run exactly once, before the
	// lock is shared with a second context.
	Init()
	Enter()
	Exit()
}

// maxSpins is how many failed polls a SpinLock makes before yielding the
// processor once.
const maxSpins = 64

// SpinLock is a busy-waiting critical section. Contention is invisible other
// than as delay: there is no timeout, no fairness and no busy signal. The zero
// value is unlocked.
type SpinLock struct {
	state uint32
}

// Init resets the lock to the unlocked state.
func (s *SpinLock) Init() { atomic.StoreUint32(&s.state, 0) }

// Enter spins until the lock is acquired.
func (s *SpinLock) Enter() {
	spins := 0
	for {
		// poll with a plain load first so a held lock is not hammered with
		// failing compare and swaps.
		if atomic.LoadUint32(&s.state) == 0 &&
			atomic.CompareAndSwapUint32(&s.state, 0, 1) {
			return
		}

		// goroutines are not cores: with fewer Ps than spinning contexts the
		// holder may need this P to make progress.
		spins++
		if spins > maxSpins {
			spins = 0
			runtime.Gosched()
		}
	}
}

// Exit releases the lock.
func (s *SpinLock) Exit() { atomic.StoreUint32(&s.state, 0) }

// MutexLock adapts a sync.Mutex to Locker, parking waiters instead of spinning.
type MutexLock struct {
	mu sync.Mutex
}

// Init is a no-op: the zero sync.Mutex is ready to use.
func (m *MutexLock) Init() {}

// Enter locks the mutex.
func (m *MutexLock) Enter() { m.mu.Lock() }

// Exit unlocks the mutex.
func (m *MutexLock) Exit() { m.mu.Unlock() }
