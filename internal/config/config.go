// Package config loads tcademo's CUE configuration.
//
// A configuration file is unified with the embedded #Config schema, which is
// closed (unknown fields are errors) and supplies a default for every field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/tcademo/internal/feature/counter"
)

//go:embed schema.cue
var schemaSource string

// IDs values.
const (
	IDsRandom     = "random"
	IDsSequential = "sequential"
)

// Config is the decoded configuration.
type Config struct {
	Counter CounterConfig
	Timer   TimerConfig
	Tab     string
	Log     slog.Level
	History int
	IDs     string
}

// CounterConfig configures the counter feature.
type CounterConfig struct {
	Initial  int
	Overflow counter.Overflow
}

// TimerConfig configures the timer feature.
type TimerConfig struct {
	Period time.Duration
}

// rawConfig mirrors #Config for cue.Value.Decode.
type rawConfig struct {
	Counter struct {
		Initial  int    `json:"initial"`
		Overflow string `json:"overflow"`
	} `json:"counter"`
	Timer struct {
		Period string `json:"period"`
	} `json:"timer"`
	App struct {
		Tab string `json:"tab"`
	} `json:"app"`
	Log struct {
		Level string `json:"level"`
	} `json:"log"`
	History struct {
		Size int `json:"size"`
	} `json:"history"`
	IDs string `json:"ids"`
}

// Error reports an invalid configuration.
type Error struct {
	Source string // file name, or "<defaults>"
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Default returns the configuration of an empty file.
func Default() Config {
	cfg, err := Parse(nil, "<defaults>")
	if err != nil {
		// The embedded schema is broken; nothing can work.
		panic(err)
	}
	return cfg
}

// Load reads and validates the file at path. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Source: path, Err: err}
	}
	return Parse(data, path)
}

// Parse validates CUE source against #Config and decodes it.
func Parse(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, &Error{Source: "schema.cue", Err: err}
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, &Error{Source: filename, Err: err}
	}

	merged := def.Unify(user)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return Config{}, &Error{Source: filename, Err: err}
	}

	var raw rawConfig
	if err := merged.Decode(&raw); err != nil {
		return Config{}, &Error{Source: filename, Err: fmt.Errorf("decode: %w", err)}
	}
	cfg, err := raw.convert()
	if err != nil {
		return Config{}, &Error{Source: filename, Err: err}
	}
	return cfg, nil
}

func (r rawConfig) convert() (Config, error) {
	overflow, err := counter.ParseOverflow(r.Counter.Overflow)
	if err != nil {
		return Config{}, err
	}
	period, err := time.ParseDuration(r.Timer.Period)
	if err != nil {
		return Config{}, fmt.Errorf("timer.period: %w", err)
	}
	if period <= 0 {
		return Config{}, fmt.Errorf("timer.period: must be positive, got %s", period)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(r.Log.Level)); err != nil {
		return Config{}, fmt.Errorf("log.level: %w", err)
	}
	return Config{
		Counter: CounterConfig{Initial: r.Counter.Initial, Overflow: overflow},
		Timer:   TimerConfig{Period: period},
		Tab:     r.App.Tab,
		Log:     level,
		History: r.History.Size,
		IDs:     r.IDs,
	}, nil
}
