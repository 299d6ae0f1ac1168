package swapbuf

const errReleased = "swapbuf: use of released reader guard"

// ReaderGuard is a reader session on a Value. It holds the Value's lock from
// the moment it is returned by Reader until Release, so the slot it is bound to
// cannot be handed back to the writer while it is alive. A guard must not
// outlive the Value it came from.
type ReaderGuard[T any] struct {
	val  *T
	lock Locker
	gen  uint64
}

// Get returns the value the guard is bound to. It panics if the guard has been
// Released or Transferred.
func (g *ReaderGuard[T]) Get() T {
	if g.lock == nil {
		panic(errReleased)
	}
	return *g.val
}

// Gen reports how many Swaps had completed when the guard was acquired.
func (g *ReaderGuard[T]) Gen() uint64 { return g.gen }

// Live reports if the guard still holds the lock.
func (g *ReaderGuard[T]) Live() bool { return g.lock != nil }

// Release ends the session and unblocks a pending Swap. Only the first call
// releases the lock; later calls do nothing.
func (g *ReaderGuard[T]) Release() {
	lock := g.lock
	if lock == nil {
		return
	}
	g.lock, g.val = nil, nil
	lock.Exit()
}

// Transfer moves the session into a new guard and leaves g released without
// unlocking. Exactly one of the two guards owns the lock afterwards.
func (g *ReaderGuard[T]) Transfer() *ReaderGuard[T] {
	out := *g
	g.lock, g.val = nil, nil
	return &out
}
