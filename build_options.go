package perfectset

import (
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"

	seterrors "github.com/tamirms/perfectset/errors"
)

const (
	// defaultMaxAttempts bounds hash sampling per level (and per bucket at the
	// second level). Each attempt succeeds with constant probability, so the
	// chance of exhausting 64 attempts on well-formed input is negligible.
	defaultMaxAttempts = 64

	// pcgStreamMixer derives the second PCG seed word from WithSeed's value.
	pcgStreamMixer = 0x517cc1b727220a95
)

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

type buildConfig struct {
	seed        uint64
	src         rand.Source
	srcSet      bool // WithRandSource was used, even with a nil source
	maxAttempts int
	workers     int
	keyHasher   KeyHasherID
	logger      zerolog.Logger
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		seed:        0x1234567890abcdef, // Arbitrary default; overridden via WithSeed
		maxAttempts: defaultMaxAttempts,
		workers:     0, // Default to single-threaded; use WithWorkers(n) to parallelize
		keyHasher:   HasherXXH3,
		logger:      zerolog.Nop(),
	}
}

func (c *buildConfig) validate() error {
	if c.srcSet && c.src == nil {
		return fmt.Errorf("%w: nil random source", seterrors.ErrInvalidOption)
	}
	if c.maxAttempts < 1 {
		return fmt.Errorf("%w: max attempts %d < 1", seterrors.ErrInvalidOption, c.maxAttempts)
	}
	if c.workers < 0 {
		return fmt.Errorf("%w: negative worker count %d", seterrors.ErrInvalidOption, c.workers)
	}
	if _, err := newKeyHasher(c.keyHasher); err != nil {
		return err
	}
	return nil
}

// source returns the random source builds draw from. A caller-supplied
// source is used as is; otherwise a PCG generator is seeded from c.seed.
func (c *buildConfig) source() rand.Source {
	if c.src != nil {
		return c.src
	}
	return rand.NewPCG(c.seed, c.seed^pcgStreamMixer)
}

// WithSeed sets the seed of the default PCG random source.
// Two builds of the same keys with the same seed produce identical tables.
func WithSeed(seed uint64) BuildOption {
	return func(c *buildConfig) {
		c.seed = seed
	}
}

// WithRandSource sets the random source for hash parameter sampling,
// overriding WithSeed. The Set keeps using src for later Init calls.
// src is not safe for concurrent use by multiple Sets.
func WithRandSource(src rand.Source) BuildOption {
	return func(c *buildConfig) {
		c.src = src
		c.srcSet = true
	}
}

// WithMaxAttempts bounds the number of hash functions sampled at the first
// level and for each second-level bucket before the build fails with
// ErrBuildExhausted.
func WithMaxAttempts(n int) BuildOption {
	return func(c *buildConfig) {
		c.maxAttempts = n
	}
}

// WithWorkers sets the number of goroutines building second-level tables.
// The resulting Set does not depend on the worker count.
func WithWorkers(n int) BuildOption {
	return func(c *buildConfig) {
		c.workers = n
	}
}

// WithKeyHasher selects the hash used by the byte-key API.
// Default is HasherXXH3.
func WithKeyHasher(id KeyHasherID) BuildOption {
	return func(c *buildConfig) {
		c.keyHasher = id
	}
}

// WithLogger sets the logger for build diagnostics. Builds log at debug
// level only. Default is zerolog.Nop().
func WithLogger(l zerolog.Logger) BuildOption {
	return func(c *buildConfig) {
		c.logger = l
	}
}
