// Package spinchain computes quantum-mechanical observables for spin-chain
// Hamiltonians: time evolution under the Schrodinger equation, extremal and
// targeted eigenpairs, and entanglement entropies of reduced density matrices.
//
// The package is the policy layer on top of the krylov solvers: it validates
// operator/state subspace compatibility before any numerical call, configures
// the solves, and classifies their convergence outcomes.
package spinchain

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Config holds the runtime configuration shared by all solves.
type Config struct {
	// Rank and Size identify this process within the fixed set of
	// cooperating processes. All solver-invoking calls are collective
	// across that set.
	Rank int `toml:"rank"`
	Size int `toml:"size"`

	// ComplexEnabled reports whether the numeric backend supports complex
	// arithmetic. Real-time evolution requires it.
	ComplexEnabled bool `toml:"complex_enabled"`

	// Solver defaults, used when a call does not set its own.
	Tol           float64 `toml:"tol"`
	NCV           int     `toml:"ncv"`
	MaxIterations int     `toml:"max_iterations"`

	LogLevel string `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Rank:           0,
		Size:           1,
		ComplexEnabled: true,
		LogLevel:       "info",
	}
}

type fileConfig struct {
	Rank           int     `toml:"rank"`
	Size           int     `toml:"size"`
	ComplexEnabled bool    `toml:"complex_enabled"`
	Tol            float64 `toml:"tol"`
	NCV            int     `toml:"ncv"`
	MaxIterations  int     `toml:"max_iterations"`
	LogLevel       string  `toml:"log_level"`
}

// LoadConfig reads a TOML config file, filling unset fields with defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "")
	}

	if meta.IsDefined("rank") {
		cfg.Rank = raw.Rank
	}
	if meta.IsDefined("size") {
		cfg.Size = raw.Size
	}
	if meta.IsDefined("complex_enabled") {
		cfg.ComplexEnabled = raw.ComplexEnabled
	}
	if meta.IsDefined("tol") {
		cfg.Tol = raw.Tol
	}
	if meta.IsDefined("ncv") {
		cfg.NCV = raw.NCV
	}
	if meta.IsDefined("max_iterations") {
		cfg.MaxIterations = raw.MaxIterations
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if cfg.Size < 1 {
		return Config{}, errors.Errorf("size %d", cfg.Size)
	}
	if cfg.Rank < 0 || cfg.Rank >= cfg.Size {
		return Config{}, errors.Errorf("rank %d size %d", cfg.Rank, cfg.Size)
	}
	return cfg, nil
}

// Runtime is the context under which operators, states and solves live.
// Initialization is lazy and happens at most once.
type Runtime struct {
	cfg         Config
	log         zerolog.Logger
	initialized bool
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

// Initialize sets the runtime configuration. It may be called at most once
// with a non-nil config; later calls carrying a new config are a usage error
// rather than being silently ignored. A nil config initializes defaults, and
// is a no-op once initialized.
func (rt *Runtime) Initialize(cfg *Config) error {
	if rt.initialized {
		if cfg != nil {
			return errors.Errorf("runtime already initialized, cannot apply new configuration")
		}
		return nil
	}

	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}
	if cfg.Size < 1 {
		return errors.Errorf("size %d", cfg.Size)
	}
	if cfg.Rank < 0 || cfg.Rank >= cfg.Size {
		return errors.Errorf("rank %d size %d", cfg.Rank, cfg.Size)
	}

	rt.cfg = *cfg
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	rt.log = zerolog.New(output).Level(level).With().
		Timestamp().Int("rank", cfg.Rank).Logger()
	rt.initialized = true
	return nil
}

func (rt *Runtime) ensureInit() {
	if !rt.initialized {
		rt.Initialize(nil)
	}
}

func (rt *Runtime) Config() Config {
	rt.ensureInit()
	return rt.cfg
}

func (rt *Runtime) Rank() int {
	rt.ensureInit()
	return rt.cfg.Rank
}

func (rt *Runtime) Size() int {
	rt.ensureInit()
	return rt.cfg.Size
}

// Distinguished reports whether this is the process on which rank-local
// results such as density matrices are computed.
func (rt *Runtime) Distinguished() bool {
	return rt.Rank() == 0
}

func (rt *Runtime) Logger() *zerolog.Logger {
	rt.ensureInit()
	return &rt.log
}
