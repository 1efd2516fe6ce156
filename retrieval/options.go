package retrieval

// Options contains configuration for an index
type Options struct {
	ScoreThreshold float32
}

// Option is a function type to modify Options
type Option func(*Options)

// WithScoreThreshold sets the minimum similarity score a match must have
// to be returned from Query
func WithScoreThreshold(threshold float32) Option {
	return func(o *Options) {
		o.ScoreThreshold = threshold
	}
}
