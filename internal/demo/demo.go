// Package demo runs the two-core counter exchange: core 1 keeps committing an
// incrementing counter and a running-total record, core 0 samples both and
// prints what it sees.
package demo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/pcg"

	"github.com/zeebo/swapbuf"
	"github.com/zeebo/swapbuf/internal/board"
	"github.com/zeebo/swapbuf/internal/config"
	"github.com/zeebo/swapbuf/internal/trace"
)

var ErrTornRead = errors.New("demo: reader observed a torn record")

// Stats summarizes a run from the reader's side.
type Stats struct {
	Samples int
	Last    int32  // last counter value printed
	Gen     uint64 // generation of the last sample
	Ticks   uint64 // ticks in the last record sampled
	Torn    int    // records whose fields disagreed
}

// exchange is everything shared between the two cores. It is built and
// initialized on core 0 before core 1 is launched.
type exchange struct {
	ps swapbuf.Int32

	stats *swapbuf.Group
	ticks *swapbuf.Field[uint64]
	total *swapbuf.Field[uint64]
}

func newExchange() *exchange {
	x := new(exchange)
	x.ps.Init()
	x.stats = swapbuf.NewGroup(nil)
	x.ticks = swapbuf.NewField[uint64](x.stats)
	x.total = swapbuf.NewField[uint64](x.stats)
	return x
}

// Run blinks the boot sequence, launches the writer on core 1 and samples on
// the calling goroutine until ctx is done or the writer finishes its
// iterations. It returns ErrTornRead if any record sampled was inconsistent.
func Run(ctx context.Context, cfg config.Board, sink *trace.Sink) (Stats, error) {
	log := sink.Core(0)
	pin := board.NewPin(cfg.LEDPin, log)

	if err := board.BootBlink(ctx, pin, cfg.Blink.Count, cfg.Blink.Phase.D()); err != nil {
		return Stats{}, fmt.Errorf("boot blink: %w", err)
	}

	x := newExchange()

	var cores board.Multicore
	if err := cores.Launch(ctx, func(ctx context.Context) {
		writer(ctx, x, cfg.Writer, sink)
	}); err != nil {
		return Stats{}, fmt.Errorf("launch core 1: %w", err)
	}
	defer cores.Stop()

	log.Info().
		Int("iterations", cfg.Writer.Iterations).
		Dur("period", cfg.Reader.Period.D()).
		Msg("core 1 launched")

	stats := reader(ctx, x, cfg.Reader, sink, cores.Done())

	log.Info().
		Int("samples", stats.Samples).
		Int32("last", stats.Last).
		Uint64("gen", stats.Gen).
		Int("torn", stats.Torn).
		Msg("reader stopped")

	if stats.Torn > 0 {
		return stats, ErrTornRead
	}
	return stats, nil
}

// writer is the core 1 loop: bump the counter, extend the record, publish both.
func writer(ctx context.Context, x *exchange, cfg config.WriterConfig, sink *trace.Sink) {
	log := sink.Core(1)
	log.Debug().Msg("writer started")

	for i := uint64(1); cfg.Iterations == 0 || i <= uint64(cfg.Iterations); i++ {
		if ctx.Err() != nil {
			break
		}

		*x.ps.Writer() = x.ps.Last() + 1
		x.ps.Swap()

		*x.ticks.Writer() = i
		*x.total.Writer() = x.total.Last() + i
		x.stats.Swap()

		if pace := cfg.Pace.D(); pace > 0 {
			if board.Sleep(ctx, pace) != nil {
				break
			}
		}
	}

	log.Debug().
		Uint64("commits", x.ps.Gen()).
		Uint64("ticks", x.ticks.Last()).
		Msg("writer stopped")
}

// reader is the core 0 loop. After the writer finishes it takes one last
// sample so the final commit is always observed.
func reader(ctx context.Context, x *exchange, cfg config.ReaderConfig, sink *trace.Sink, writerDone <-chan struct{}) (stats Stats) {
	rng := pcg.New(uint64(time.Now().UnixNano()), 0)
	log := sink.Core(0)

	for {
		finished := false
		select {
		case <-writerDone:
			finished = true
		default:
		}

		guard := x.ps.Reader()
		stats.Last = guard.Get()
		stats.Gen = guard.Gen()
		guard.Release()
		stats.Samples++
		sink.Printf(0, "PS: %d\n", stats.Last)

		x.stats.Read(func(gg *swapbuf.GroupGuard) {
			ticks, total := x.ticks.Get(gg), x.total.Get(gg)
			stats.Ticks = ticks
			if total != ticks*(ticks+1)/2 {
				stats.Torn++
				log.Error().
					Uint64("ticks", ticks).
					Uint64("total", total).
					Uint64("gen", gg.Gen()).
					Msg("torn record")
			}
		})

		if finished {
			return stats
		}

		wait := cfg.Period.D()
		if jitter := cfg.Jitter.D(); jitter > 0 {
			wait += time.Duration(uint64(rng.Uint32()) % uint64(jitter))
		}
		select {
		case <-ctx.Done():
			return stats
		case <-writerDone:
		case <-time.After(wait):
		}
	}
}
