package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/docopt/docopt-go"
	"github.com/rs/zerolog"

	"github.com/zeebo/swapbuf/internal/config"
	"github.com/zeebo/swapbuf/internal/demo"
	"github.com/zeebo/swapbuf/internal/trace"
)

// set via linker flags
var version = "dev"

func main() {
	usage := `swapdemo.
Usage:
	swapdemo run [--conf <filename>] [--duration <d>] [--quiet]
	swapdemo config [--conf <filename>]
	swapdemo -h | --help
	swapdemo --version
Options:
	--conf <filename>  Board configuration file (TOML). Built-in defaults when omitted.
	--duration <d>     Stop after this long, e.g. 5s. Runs until interrupted when omitted.
	--quiet            Only log warnings and errors.
	-h --help          Show this screen.
	--version          Show version.`

	arguments, _ := docopt.ParseArgs(usage, nil, version)

	confFile, _ := arguments["--conf"].(string)
	cfg, err := config.Load(confFile)
	if err != nil {
		log.Fatal(err)
	}

	if arguments["config"].(bool) {
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	if arguments["run"].(bool) {
		var duration time.Duration
		if raw, ok := arguments["--duration"].(string); ok {
			duration, err = time.ParseDuration(raw)
			if err != nil || duration <= 0 {
				log.Fatalf("invalid --duration %q", raw)
			}
		}
		if err := run(cfg, duration, arguments["--quiet"].(bool)); err != nil {
			log.Fatal(err)
		}
	}
}

func run(cfg config.Board, duration time.Duration, quiet bool) error {
	opts := trace.Options{
		NoColor:   cfg.Log.NoColor,
		Timestamp: cfg.Log.Timestamp,
	}
	opts.Level, _ = zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	trace.ApplyEnv(&opts)
	if quiet && opts.Level < zerolog.WarnLevel {
		opts.Level = zerolog.WarnLevel
	}

	core0, close0, err := trace.Open(cfg.Log.Core0)
	if err != nil {
		return err
	}
	defer close0()
	core1, close1, err := trace.Open(cfg.Log.Core1)
	if err != nil {
		return err
	}
	defer close1()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	sink := trace.New(core0, core1, opts)
	stats, err := demo.Run(ctx, cfg, sink)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("swapdemo: %w", err)
	}

	sink.Core(0).Info().
		Int("samples", stats.Samples).
		Int32("last", stats.Last).
		Uint64("ticks", stats.Ticks).
		Msg("done")
	return nil
}
