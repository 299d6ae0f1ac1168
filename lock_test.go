package swapbuf

import (
	"runtime"
	"sync"
	"testing"

	"github.com/zeebo/assert"
)

func TestLocker(t *testing.T) {
	t.Run("SpinLock", func(t *testing.T) { testLocker(t, new(SpinLock)) })
	t.Run("MutexLock", func(t *testing.T) { testLocker(t, new(MutexLock)) })
}

func testLocker(t *testing.T, l Locker) {
	l.Init()

	ch := make(chan bool, 2)
	l.Enter()
	go func() {
		l.Enter()
		ch <- false
		l.Exit()
	}()
	for i := 0; i < 10; i++ {
		runtime.Gosched()
	}
	ch <- true
	l.Exit()
	assert.That(t, <-ch)
	assert.That(t, !<-ch)

	// a plain counter stays exact when every increment is inside the lock.
	num, np := 1000, runtime.GOMAXPROCS(-1)+1
	total := 0

	var wg sync.WaitGroup
	wg.Add(np)
	for i := 0; i < np; i++ {
		go func() {
			defer wg.Done()
			for i := 0; i < num; i++ {
				l.Enter()
				total++
				l.Exit()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, total, num*np)
}

func BenchmarkLocker(b *testing.B) {
	b.Run("SpinLock", func(b *testing.B) { benchmarkLocker(b, new(SpinLock)) })
	b.Run("MutexLock", func(b *testing.B) { benchmarkLocker(b, new(MutexLock)) })
}

func benchmarkLocker(b *testing.B, l Locker) {
	l.Init()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.Enter()
			l.Exit()
		}
	})
}
