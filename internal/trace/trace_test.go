package trace

import (
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/zeebo/assert"
)

func TestSinkRoutesPerCore(t *testing.T) {
	var core0, core1 bytes.Buffer
	s := New(&core0, &core1, Options{Level: zerolog.DebugLevel})

	s.Printf(0, "PS: %d\n", 5)
	s.Printf(1, "tick %s\n", "b")
	s.Core(1).Debug().Uint64("gen", 2).Msg("swap")

	assert.Equal(t, core0.String(), "PS: 5\n")
	out := core1.String()
	assert.That(t, strings.HasPrefix(out, "tick b\n"))
	assert.That(t, strings.Contains(out, "swap"))
	assert.That(t, strings.Contains(out, "core=1"))
	assert.That(t, strings.Contains(out, "gen=2"))
}

func TestSinkLevel(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, &buf, Options{Level: zerolog.WarnLevel})

	s.Core(0).Info().Msg("quiet")
	assert.Equal(t, buf.Len(), 0)
	s.Core(0).Warn().Msg("loud")
	assert.That(t, strings.Contains(buf.String(), "loud"))
}

func TestSinkSharedOutput(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, &buf, DefaultOptions())

	var wg sync.WaitGroup
	wg.Add(Cores)
	for core := 0; core < Cores; core++ {
		go func(core int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Printf(core, "core %d line %d\n", core, i)
				s.Core(core).Info().Int("i", i).Msg("sample")
			}
		}(core)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 400)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvLogNoColor, "true")
	t.Setenv(EnvLogTimestamp, "nope")

	opts := DefaultOptions()
	ApplyEnv(&opts)
	assert.Equal(t, opts.Level, zerolog.DebugLevel)
	assert.That(t, opts.NoColor)
	assert.That(t, opts.Timestamp)
}

func TestOpen(t *testing.T) {
	w, closer, err := Open("stdout")
	assert.NoError(t, err)
	assert.That(t, w != nil)
	assert.NoError(t, closer())

	w, closer, err = Open(filepath.Join(t.TempDir(), "core1.log"))
	assert.NoError(t, err)
	s := New(w, w, Options{Level: zerolog.InfoLevel})
	s.Printf(1, "hello\n")
	assert.NoError(t, closer())

	_, _, err = Open(filepath.Join(t.TempDir(), "missing", "core1.log"))
	assert.Error(t, err)
}
