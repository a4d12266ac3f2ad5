package roargo

import (
	"log/slog"
	"runtime"

	"golang.org/x/time/rate"

	"github.com/hupe1980/roargo/bitmap"
)

type options struct {
	fastRank         bool
	metricsCollector MetricsCollector
	logger           *Logger
	concurrency      int
	rateLimiter      *rate.Limiter
}

// Option configures conversion behavior.
//
// All entry points accept the same option set; options that do not
// apply to an operation are ignored (e.g. WithConcurrency outside
// DecodeAll).
type Option func(*options)

// WithFastRank selects the fast-rank bitmap flavor for constructed
// bitmaps. The flavor is an opaque tag consumed by rank-heavy read
// paths downstream; construction behavior is identical.
func WithFastRank() Option {
	return func(o *options) {
		o.fastRank = true
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &roargo.BasicMetricsCollector{}
//	b, _ := roargo.FromReader(r, roargo.WithMetricsCollector(metrics))
//	// ... more conversions ...
//	stats := metrics.GetStats()
//	fmt.Printf("Decodes: %d, Avg latency: %dns\n", stats.DecodeCount, stats.DecodeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := roargo.NewJSONLogger(slog.LevelDebug)
//	b, _ := roargo.FromReader(r, roargo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithConcurrency bounds the number of snapshots decoded in parallel by
// DecodeAll. Values below 1 keep the default (GOMAXPROCS).
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRateLimiter throttles snapshot opens in DecodeAll, e.g. to stay
// inside an object store's request budget. The limiter may be shared
// across calls. Pass nil to disable throttling.
//
// Example:
//
//	limiter := rate.NewLimiter(rate.Limit(100), 10) // 100 opens/s, burst 10
//	bitmaps, _ := roargo.DecodeAll(ctx, store, names, roargo.WithRateLimiter(limiter))
func WithRateLimiter(l *rate.Limiter) Option {
	return func(o *options) {
		o.rateLimiter = l
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		concurrency:      runtime.GOMAXPROCS(0),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// newBitmap constructs the destination bitmap for the configured flavor.
func (o *options) newBitmap() *bitmap.Bitmap {
	if o.fastRank {
		return bitmap.NewFastRank()
	}
	return bitmap.New()
}
