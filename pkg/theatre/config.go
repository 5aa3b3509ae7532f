package theatre

// config.go: solver configuration knobs

import "go.uber.org/zap"

// Config tunes a Solver. The zero value is usable: team size defaults to
// the number of distinct roles each surgery requires, logging is disabled,
// and no monitor is attached.
type Config struct {
	// MaxTeamSize bounds how many staff members one surgery's team may
	// have. Zero means one member per distinct required role, which always
	// suffices for coverage; raising it only adds larger minimal teams
	// (useful when combined availability, not coverage, is the bottleneck).
	MaxTeamSize int

	// Logger receives debug-level build and search summaries and an
	// info-level outcome line. Nil disables logging.
	Logger *zap.Logger

	// Monitor, when set, aggregates statistics across invocations in
	// addition to the per-invocation Stats on every Result.
	Monitor *Monitor
}

// DefaultConfig returns the zero configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// normalize fills defaults so the solver never checks for nil.
func (c *Config) normalize() *Config {
	out := &Config{}
	if c != nil {
		*out = *c
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return out
}
