// Package trace is the per-core debug sink. Each core writes to its own output,
// the way each core of the board owns one UART, and gets a zerolog.Logger
// tagged with its core number.
package trace

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel     = "SWAPBUF_LOG_LEVEL"
	EnvLogNoColor   = "SWAPBUF_LOG_NOCOLOR"
	EnvLogTimestamp = "SWAPBUF_LOG_TIMESTAMP"
)

// Cores is the number of cores a Sink routes for.
const Cores = 2

type Options struct {
	Level     zerolog.Level
	NoColor   bool
	Timestamp bool
}

// DefaultOptions logs at info level with timestamps, colorized on terminals.
func DefaultOptions() Options {
	return Options{Level: zerolog.InfoLevel, Timestamp: true}
}

// ApplyEnv overrides opts from the SWAPBUF_LOG_* environment variables.
// Unparseable values are ignored.
func ApplyEnv(opts *Options) {
	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			opts.Level = lvl
		}
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		opts.Timestamp = v
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// Sink routes formatted debug output to one writer per core. It is safe for
// both cores to use concurrently, including when they share a writer.
type Sink struct {
	outs    [Cores]io.Writer
	loggers [Cores]zerolog.Logger
}

// New returns a Sink writing core 0 output to core0 and core 1 output to core1.
func New(core0, core1 io.Writer, opts Options) *Sink {
	s := new(Sink)
	s.outs[0] = zerolog.SyncWriter(core0)
	if core1 == core0 {
		s.outs[1] = s.outs[0]
	} else {
		s.outs[1] = zerolog.SyncWriter(core1)
	}

	for core := range s.outs {
		ctx := zerolog.New(console(s.outs[core], rawFile(core, core0, core1), opts)).
			Level(opts.Level).
			With().
			Int("core", core)
		if opts.Timestamp {
			ctx = ctx.Timestamp()
		}
		s.loggers[core] = ctx.Logger()
	}
	return s
}

func rawFile(core int, core0, core1 io.Writer) io.Writer {
	if core == 0 {
		return core0
	}
	return core1
}

// console builds the human readable writer for out. Colors are only used when
// the underlying output is a terminal.
func console(out, raw io.Writer, opts Options) io.Writer {
	noColor := true
	if f, ok := raw.(*os.File); ok && !opts.NoColor {
		fd := f.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			noColor = false
			out = zerolog.SyncWriter(colorable.NewColorable(f))
		}
	}

	cw := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
	if !opts.Timestamp {
		cw.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	return cw
}

// Core returns the logger for core. It panics if core is out of range.
func (s *Sink) Core(core int) zerolog.Logger { return s.loggers[core] }

// Printf renders a formatted message straight to core's output, without any
// log envelope.
func (s *Sink) Printf(core int, format string, args ...interface{}) {
	fmt.Fprintf(s.outs[core], format, args...)
}

// Open resolves an output name from the board config: "stdout", "stderr" or a
// file path opened for appending. The returned closer is a no-op for the
// standard streams.
func Open(name string) (io.Writer, func() error, error) {
	switch name {
	case "stdout":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("trace output %s: %w", name, err)
	}
	return f, f.Close, nil
}
