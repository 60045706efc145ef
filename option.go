package sgtree

// DefaultAlpha is the balance factor used when WithAlpha is not given.
// A subtree is alpha-weight-balanced when neither child holds more than
// alpha of its nodes.
const DefaultAlpha = 2.0 / 3.0

// Options configures tree behavior.
type Options struct {
	alpha        float64 // Balance factor in [0.5, 1).
	logger       Logger
	cacheEntries int // Size of the Get lookup cache. 0 disables it.
	historyLimit int // Maximum undo depth for History. 0 means unlimited.
}

// DefaultOptions returns the default configuration: alpha 2/3, no logging,
// no lookup cache and unbounded history.
//
// goland:noinspection GoUnusedExportedFunction
func DefaultOptions() Options {
	return Options{
		alpha:  DefaultAlpha,
		logger: DiscardLogger{},
	}
}

// Option configures tree options using the functional options pattern.
type Option func(*Options)

// WithAlpha sets the balance factor. Smaller values keep the tree shorter at
// the cost of more frequent rebuilds. Values outside [0.5, 1) make the
// constructor fail with ErrInvalidAlpha.
func WithAlpha(alpha float64) Option {
	return func(opts *Options) {
		opts.alpha = alpha
	}
}

// WithLogger routes rebuild and maintenance events to logger.
// A *slog.Logger satisfies Logger directly.
func WithLogger(logger Logger) Option {
	return func(opts *Options) {
		if logger == nil {
			logger = DiscardLogger{}
		}
		opts.logger = logger
	}
}

// WithSearchCache enables an LRU cache of up to entries recently found keys
// in front of Get. The cache is dropped on every mutation that can remove or
// replace a key.
//
//goland:noinspection GoUnusedExportedFunction
func WithSearchCache(entries int) Option {
	return func(opts *Options) {
		opts.cacheEntries = entries
	}
}

// WithHistoryLimit bounds the number of commands a History keeps for undo.
// When the limit is exceeded the oldest command is forgotten.
//
//goland:noinspection GoUnusedExportedFunction
func WithHistoryLimit(n int) Option {
	return func(opts *Options) {
		opts.historyLimit = n
	}
}

func (o Options) validate() error {
	// NaN fails both comparisons
	if !(o.alpha >= 0.5 && o.alpha < 1) {
		return ErrInvalidAlpha
	}
	if o.cacheEntries < 0 {
		return ErrInvalidCacheSize
	}
	return nil
}
