package swapbuf

import (
	"testing"

	"github.com/zeebo/assert"
)

func TestGroup(t *testing.T) {
	g := NewGroup(nil)
	count := NewField[uint64](g)
	total := NewField[uint64](g)
	total.Seed(100)

	*count.Writer() = 1
	*total.Writer() = total.Last() + 1
	g.Swap()
	assert.Equal(t, g.Gen(), uint64(1))

	g.Read(func(gg *GroupGuard) {
		assert.Equal(t, gg.Gen(), uint64(1))
		assert.Equal(t, count.Get(gg), uint64(1))
		assert.Equal(t, total.Get(gg), uint64(101))
	})

	// a guard holds back the Swap of every field in the group.
	gg := g.Reader()
	done := make(chan struct{})
	go func() {
		*count.Writer() = 2
		*total.Writer() = total.Last() + 2
		g.Swap()
		close(done)
	}()
	assert.That(t, blocked(done))
	assert.Equal(t, count.Get(gg), uint64(1))
	assert.Equal(t, total.Get(gg), uint64(101))
	gg.Release()
	assert.That(t, !gg.Live())
	assert.That(t, finishes(done))

	g.Read(func(gg *GroupGuard) {
		assert.Equal(t, count.Get(gg), uint64(2))
		assert.Equal(t, total.Get(gg), uint64(103))
	})
}

func TestGroupGuardMisuse(t *testing.T) {
	panics := func(fn func()) (ok bool) {
		defer func() { ok = recover() != nil }()
		fn()
		return false
	}

	a, b := NewGroup(nil), NewGroup(new(MutexLock))
	fa := NewField[int32](a)

	gb := b.Reader()
	assert.That(t, panics(func() { fa.Get(gb) }))
	gb.Release()

	ga := a.Reader()
	ga.Release()
	ga.Release()
	assert.That(t, panics(func() { fa.Get(ga) }))
	assert.That(t, panics(func() { NewField[map[int]int](a) }))
}

func TestGroupStress(t *testing.T) {
	num := uint64(50000)
	if testing.Short() {
		num = 5000
	}

	g := NewGroup(nil)
	n := NewField[uint64](g)
	sum := NewField[uint64](g)
	squares := NewField[[2]uint64](g)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := uint64(1); i <= num; i++ {
			*n.Writer() = i
			*sum.Writer() = sum.Last() + i
			*squares.Writer() = [2]uint64{i, i * i}
			g.Swap()
		}
	}()

	var prev uint64
	for finished := false; !finished; {
		select {
		case <-done:
			finished = true
		default:
		}

		g.Read(func(gg *GroupGuard) {
			i, s, sq := n.Get(gg), sum.Get(gg), squares.Get(gg)

			// every field comes from the same commit.
			assert.Equal(t, i, gg.Gen())
			assert.Equal(t, s, i*(i+1)/2)
			assert.Equal(t, sq, [2]uint64{i, i * i})
			assert.That(t, i >= prev)
			prev = i
		})
	}

	assert.Equal(t, prev, num)
}
