// package swapbuf passes a value from one writer context to one reader context
// so that the reader always sees a complete, self-consistent copy of it.
//
// Consider a counter kept by one core and sampled by another. Sharing a plain
// variable works only as long as every update is a single atomic store:
//
//	var stats struct {
//		ticks uint64
//		sum   uint64
//	}
//
//	func tick(n uint64) {
//		stats.ticks++
//		stats.sum += n // a reader between these lines sees a torn record
//	}
//
// Guarding the whole record with a lock avoids the tear, but then the writer
// holds the lock for the entire update and the reader stalls behind it. A Value
// instead keeps two copies. The writer updates its own copy without locking and
// only takes the lock to flip which copy is exposed:
//
//	var stats = swapbuf.New[struct{ ticks, sum uint64 }]()
//
//	func tick(n uint64) {
//		w := stats.Writer()
//		*w = stats.Last()
//		w.ticks++
//		w.sum += n
//		stats.Swap()
//	}
//
//	func sample() (ticks, sum uint64) {
//		guard := stats.Reader()
//		defer guard.Release()
//		x := guard.Get()
//		return x.ticks, x.sum
//	}
//
// The writer's critical section is a single bit flip. The reader's is as long as
// it keeps its guard, and while it does the writer's next Swap waits, so the
// copy the reader is bound to is never written underneath it.
//
// Exactly one writer and one reader are supported, and a Value must be
// Initialized before the reader context starts. Misuse is not reported: it shows
// up as a deadlock or a torn read. Fields that must be read together can share
// one lock and selector through a Group.
package swapbuf
