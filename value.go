package swapbuf

// Value buffers a T between exactly one writer context and exactly one reader
// context. The writer mutates its own slot without locking and publishes it with
// Swap; the reader binds to the other slot with Reader. The lock only ever
// covers the selector flip and the reader's session, never the writer's update.
//
// The zero value must be Initialized before Swap or Reader are used.
type Value[T any] struct {
	pair[T]
	sel  uint32 // index of the writer's slot
	gen  uint64 // number of completed Swaps
	lock Locker
}

// New returns an Initialized Value guarded by its own SpinLock.
func New[T any]() *Value[T] {
	v := new(Value[T])
	v.Init()
	return v
}

// NewWithLock returns an Initialized Value guarded by l. The caller owns l and
// is responsible for calling l.Init exactly once, before it is first used by
// this or any other Value sharing it.
func NewWithLock[T any](l Locker) *Value[T] {
	v := &Value[T]{lock: l}
	v.Init()
	return v
}

// Init prepares the Value. It is not synchronized: it must complete before the
// reader context is started. If no lock was supplied, a SpinLock is installed
// and initialized. Init panics if T holds pointers.
func (v *Value[T]) Init() {
	checkPlain[T]()
	if v.lock == nil {
		lock := new(SpinLock)
		lock.Init()
		v.lock = lock
	}
}

// Seed sets both slots to x. Like Init, it must run before the reader context
// is started.
func (v *Value[T]) Seed(x T) { v.seed(x) }

// Writer returns the slot the writer is currently targeting. It never blocks
// and must only be called from the writer context. The returned pointer is
// invalidated by the next Swap.
//
// After a Swap the writer's slot holds the value committed two Swaps ago, not
// the latest one. Use Last to continue from the latest committed value.
func (v *Value[T]) Writer() *T { return v.write(v.sel) }

// Last returns the most recently committed value. It never blocks and must only
// be called from the writer context.
func (v *Value[T]) Last() T { return *v.read(v.sel) }

// Gen returns the number of completed Swaps. It must only be called from the
// writer context; readers get the generation from their ReaderGuard.
func (v *Value[T]) Gen() uint64 { return v.gen }

// Swap publishes the writer's slot. Every Reader call that begins after Swap
// returns observes what was written before it. Swap blocks for as long as a
// ReaderGuard is alive, and must only be called from the writer context.
func (v *Value[T]) Swap() {
	v.lock.Enter()
	v.sel ^= 1
	v.gen++
	v.lock.Exit()
}

// Store writes x to the writer's slot and publishes it.
func (v *Value[T]) Store(x T) {
	*v.Writer() = x
	v.Swap()
}

// Reader acquires the lock and returns a guard bound to the most recently
// committed value. It blocks while a Swap is in progress. Only one guard may be
// alive at a time, and it must be Released for the writer to make progress.
func (v *Value[T]) Reader() *ReaderGuard[T] {
	v.lock.Enter()
	return &ReaderGuard[T]{
		val:  v.read(v.sel),
		lock: v.lock,
		gen:  v.gen,
	}
}

// Read calls fn with the most recently committed value while holding a reader
// session. The session is released when fn returns or panics.
func (v *Value[T]) Read(fn func(T)) {
	guard := v.Reader()
	defer guard.Release()
	fn(guard.Get())
}

// Load returns a copy of the most recently committed value.
func (v *Value[T]) Load() T {
	guard := v.Reader()
	x := guard.Get()
	guard.Release()
	return x
}
