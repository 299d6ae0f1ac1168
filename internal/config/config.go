package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

var ErrInvalidConfig = errors.New("invalid config")

// Board describes the simulated dual-core board the demo runs on.
type Board struct {
	LEDPin int          `toml:"led_pin"`
	Blink  BlinkConfig  `toml:"blink"`
	Writer WriterConfig `toml:"writer"`
	Reader ReaderConfig `toml:"reader"`
	Log    LogConfig    `toml:"log"`
}

// BlinkConfig is the boot-delay blink sequence shown before core 1 starts.
type BlinkConfig struct {
	Count int      `toml:"count"`
	Phase Duration `toml:"phase"`
}

// WriterConfig drives the core 1 writer loop.
type WriterConfig struct {
	// Iterations is the number of commits before the writer stops. Zero means
	// run until cancelled.
	Iterations int `toml:"iterations"`
	// Pace is slept between commits. Zero spins flat out.
	Pace Duration `toml:"pace"`
}

// ReaderConfig drives the core 0 sampling loop.
type ReaderConfig struct {
	Period Duration `toml:"period"`
	Jitter Duration `toml:"jitter"`
}

// LogConfig routes the per-core debug output.
type LogConfig struct {
	Level     string `toml:"level"`
	NoColor   bool   `toml:"no_color"`
	Timestamp bool   `toml:"timestamp"`
	// Core0 and Core1 name each core's output: "stdout", "stderr" or a file
	// path.
	Core0 string `toml:"core0"`
	Core1 string `toml:"core1"`
}

// Duration is a time.Duration written as a string like "250ms".
type Duration time.Duration

func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the board the demo runs without a config file: the LED
// blinks once for 250ms, the writer spins and the reader samples every 200ms.
func Default() Board {
	return Board{
		LEDPin: 25,
		Blink: BlinkConfig{
			Count: 1,
			Phase: Duration(250 * time.Millisecond),
		},
		Reader: ReaderConfig{
			Period: Duration(200 * time.Millisecond),
		},
		Log: LogConfig{
			Level:     "info",
			Timestamp: true,
			Core0:     "stdout",
			Core1:     "stderr",
		},
	}
}

// Load reads a TOML board file over the defaults. An empty path returns the
// defaults.
func Load(path string) (Board, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Board{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Board{}, fmt.Errorf("%w: unknown keys in %s: %s",
			ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	if err := Validate(cfg); err != nil {
		return Board{}, err
	}
	return cfg, nil
}

func Validate(cfg Board) error {
	if cfg.LEDPin < 0 {
		return fmt.Errorf("%w: led_pin must not be negative", ErrInvalidConfig)
	}
	if cfg.Blink.Count < 0 || cfg.Blink.Phase < 0 {
		return fmt.Errorf("%w: blink count and phase must not be negative", ErrInvalidConfig)
	}
	if cfg.Writer.Iterations < 0 || cfg.Writer.Pace < 0 {
		return fmt.Errorf("%w: writer iterations and pace must not be negative", ErrInvalidConfig)
	}
	if cfg.Reader.Period <= 0 {
		return fmt.Errorf("%w: reader period must be positive", ErrInvalidConfig)
	}
	if cfg.Reader.Jitter < 0 {
		return fmt.Errorf("%w: reader jitter must not be negative", ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, cfg.Log.Level)
	}
	if cfg.Log.Core0 == "" || cfg.Log.Core1 == "" {
		return fmt.Errorf("%w: both core outputs must be set", ErrInvalidConfig)
	}
	return nil
}
