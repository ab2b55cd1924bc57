package pipeline

import "github.com/finagent-ai/finagent/pkg/stategraph/config"

// Defaults for pipeline tuning knobs.
const (
	// DefaultMaxRevisions bounds the writer/quality-checker cycle. Once the
	// report has been revised this many times the quality route is forced
	// forward regardless of score.
	DefaultMaxRevisions = 2

	// DefaultPassScore is the minimum quality score (out of 10) for a draft
	// to pass review.
	DefaultPassScore = 7
)

// Options tune pipeline behavior.
type Options struct {
	MaxRevisions int
	PassScore    int
}

// Option mutates pipeline options.
type Option func(*Options)

// WithMaxRevisions overrides the revision cycle bound.
func WithMaxRevisions(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.MaxRevisions = n
		}
	}
}

// WithPassScore overrides the quality pass threshold. A threshold above 10
// fails every draft, which forces the full revision cycle.
func WithPassScore(score int) Option {
	return func(o *Options) {
		o.PassScore = score
	}
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		MaxRevisions: DefaultMaxRevisions,
		PassScore:    DefaultPassScore,
	}
}

// OptionsFromConfig reads the "pipeline" section of a config file:
//
//	pipeline:
//	  max_revisions: 2
//	  pass_score: 7
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		MaxRevisions: cfg.Int("pipeline.max_revisions", DefaultMaxRevisions),
		PassScore:    cfg.Int("pipeline.pass_score", DefaultPassScore),
	}
}
