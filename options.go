package kdknn

import (
	"log/slog"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kdknn/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	workers          int
	controller       *resource.Controller
	rowFilter        *roaring.Bitmap
}

// Option configures Build, NewClassifier and NewRegressor.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kdknn.BasicMetricsCollector{}
//	idx, _ := kdknn.Build(points, rows, cols, 2, kdknn.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg evaluations: %.1f\n", stats.SearchCount, stats.AvgEvaluations())
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := kdknn.NewJSONLogger(slog.LevelInfo)
//	idx, _ := kdknn.Build(points, rows, cols, 2, kdknn.WithLogger(logger))
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

// WithWorkers sets the number of goroutines SearchBatch uses.
// If n <= 0, GOMAXPROCS is used.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithResourceController shares memory, worker and query-rate limits
// between indexes. The controller may be shared by any number of indexes.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithRowFilter indexes only the rows present in the bitmap.
// Result IDs stay row indices of the full point array. The bitmap is read
// once during Build and is not retained.
func WithRowFilter(rows *roaring.Bitmap) Option {
	return func(o *options) {
		o.rowFilter = rows
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}
