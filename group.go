package swapbuf

// Group is a record of Fields that share one lock and one selector, so a single
// Swap commits all of them together and a single GroupGuard reads all of them
// from the same commit. Sharing is always explicit: fields only share a lock by
// being created in the same Group.
type Group struct {
	sel  uint32 // index of the writer's slot in every field
	gen  uint64 // number of completed Swaps
	lock Locker
}

// NewGroup returns a Group guarded by l. If l is nil the Group gets its own
// initialized SpinLock; otherwise the caller owns l and must have called
// l.Init.
func NewGroup(l Locker) *Group {
	if l == nil {
		lock := new(SpinLock)
		lock.Init()
		l = lock
	}
	return &Group{lock: l}
}

// Gen returns the number of completed Swaps. Writer context only.
func (g *Group) Gen() uint64 { return g.gen }

// Swap publishes the writer's slot of every Field in the Group at once. It
// blocks while a GroupGuard is alive. Writer context only.
func (g *Group) Swap() {
	g.lock.Enter()
	g.sel ^= 1
	g.gen++
	g.lock.Exit()
}

// Reader acquires the Group's lock and returns a guard through which every
// Field reads its most recently committed value.
func (g *Group) Reader() *GroupGuard {
	g.lock.Enter()
	return &GroupGuard{group: g, read: g.sel ^ 1, gen: g.gen}
}

// Read calls fn with a live GroupGuard and releases it when fn returns or
// panics.
func (g *Group) Read(fn func(*GroupGuard)) {
	guard := g.Reader()
	defer guard.Release()
	fn(guard)
}

// GroupGuard is a reader session over every Field of a Group.
type GroupGuard struct {
	group *Group
	read  uint32
	gen   uint64
}

// Gen reports how many Swaps had completed when the guard was acquired.
func (gg *GroupGuard) Gen() uint64 { return gg.gen }

// Live reports if the guard still holds the lock.
func (gg *GroupGuard) Live() bool { return gg.group != nil }

// Release ends the session. Later calls do nothing.
func (gg *GroupGuard) Release() {
	group := gg.group
	if group == nil {
		return
	}
	gg.group = nil
	group.lock.Exit()
}

// Field is one buffered member of a Group.
type Field[T any] struct {
	pair[T]
	group *Group
}

// NewField adds a Field to g. Fields must be created before the reader context
// is started. NewField panics if T holds pointers.
func NewField[T any](g *Group) *Field[T] {
	checkPlain[T]()
	return &Field[T]{group: g}
}

// Seed sets both slots to x. It must run before the reader context is started.
func (f *Field[T]) Seed(x T) { f.seed(x) }

// Writer returns the field's slot the writer is targeting. Writer context only.
func (f *Field[T]) Writer() *T { return f.write(f.group.sel) }

// Last returns the field's most recently committed value. Writer context only.
func (f *Field[T]) Last() T { return *f.read(f.group.sel) }

// Get returns the field's value as seen by gg. It panics if gg is released or
// belongs to another Group.
func (f *Field[T]) Get(gg *GroupGuard) T {
	if gg.group == nil {
		panic(errReleased)
	}
	if gg.group != f.group {
		panic("swapbuf: group guard used with a field of another group")
	}
	return f.slots[gg.read&1].val
}
