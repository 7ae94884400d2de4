package dict

import (
	"log/slog"
	"math/rand/v2"
)

// Config defines configurable Dict options.
type Config struct {
	sizeHint   int
	ctx        any
	env        *Env
	autoShrink bool
	rnd        *rand.Rand
	logger     *slog.Logger
}

// WithPresize configures a new Dict with a table large enough to hold
// sizeHint entries without growing. If sizeHint is zero or negative, the
// value is ignored and the table is allocated on first insert.
func WithPresize(sizeHint int) func(*Config) {
	return func(c *Config) {
		c.sizeHint = sizeHint
	}
}

// WithContext sets the opaque value passed to every Type callback.
func WithContext(ctx any) func(*Config) {
	return func(c *Config) {
		c.ctx = ctx
	}
}

// WithEnv makes the dict take its hash seed and resize switch from env
// instead of DefaultEnv.
func WithEnv(env *Env) func(*Config) {
	return func(c *Config) {
		c.env = env
	}
}

// WithAutoShrink makes Delete shrink the table once it is less than
// MinFillPercent full. Disabled by default; callers usually shrink
// explicitly with Resize after a batch of deletions.
func WithAutoShrink() func(*Config) {
	return func(c *Config) {
		c.autoShrink = true
	}
}

// WithRand sets the random source used by RandomKey and SomeKeys.
// Mostly useful to make sampling reproducible in tests.
func WithRand(r *rand.Rand) func(*Config) {
	return func(c *Config) {
		c.rnd = r
	}
}

// WithLogger sets the logger that receives resize events at debug level.
func WithLogger(l *slog.Logger) func(*Config) {
	return func(c *Config) {
		c.logger = l
	}
}
