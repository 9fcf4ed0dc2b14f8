package runtime

import "go.uber.org/zap"

// DefaultMaxCallDepth bounds nested invocations when Config leaves it unset.
const DefaultMaxCallDepth = 16

// Config holds runtime settings.
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// MaxCallDepth is the deepest frame stack a top-level call may build,
	// counting the top-level frame. 0 means DefaultMaxCallDepth.
	MaxCallDepth int
}

// Option configures a Runtime.
type Option func(*options)

type options struct {
	logger *zap.Logger
	cfg    Config
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithMemoryLimitPages caps instance memory.
func WithMemoryLimitPages(pages uint32) Option {
	return func(o *options) {
		o.cfg.MemoryLimitPages = pages
	}
}

// WithMaxCallDepth bounds nested invocations.
func WithMaxCallDepth(depth int) Option {
	return func(o *options) {
		o.cfg.MaxCallDepth = depth
	}
}

// WithLogger sets the logger used by the runtime and its host functions.
// Without it the package Logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func (c Config) withDefaults() Config {
	if c.MaxCallDepth <= 0 {
		c.MaxCallDepth = DefaultMaxCallDepth
	}
	return c
}
