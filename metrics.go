package kdknn

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    searchHistogram prometheus.Histogram
//	    evaluations     prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordSearch(k, evaluations int, duration time.Duration, err error) {
//	    p.searchHistogram.Observe(duration.Seconds())
//	    p.evaluations.Add(float64(evaluations))
//	}
type MetricsCollector interface {
	// RecordBuild is called after each Build.
	// points is the number of indexed rows, err is nil if successful.
	RecordBuild(points int, duration time.Duration, err error)

	// RecordSearch is called after each single-query search.
	// evaluations is the number of distance computations the search needed.
	RecordSearch(k, evaluations int, duration time.Duration, err error)

	// RecordBatch is called after each batch search.
	// queries is the number of queries in the batch.
	RecordBatch(queries int, duration time.Duration, err error)

	// RecordRelease is called when an index is torn down.
	RecordRelease(nodes int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordRelease(int)                           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount        atomic.Int64
	BuildErrors       atomic.Int64
	BuildPoints       atomic.Int64
	BuildTotalNanos   atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	SearchEvaluations atomic.Int64
	BatchCount        atomic.Int64
	BatchErrors       atomic.Int64
	BatchQueries      atomic.Int64
	ReleaseCount      atomic.Int64
	ReleasedNodes     atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(points int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.BuildPoints.Add(int64(points))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k, evaluations int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.SearchEvaluations.Add(int64(evaluations))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(queries int, duration time.Duration, err error) {
	b.BatchCount.Add(1)
	b.BatchQueries.Add(int64(queries))
	if err != nil {
		b.BatchErrors.Add(1)
	}
}

// RecordRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRelease(nodes int) {
	b.ReleaseCount.Add(1)
	b.ReleasedNodes.Add(int64(nodes))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:        b.BuildCount.Load(),
		BuildErrors:       b.BuildErrors.Load(),
		BuildPoints:       b.BuildPoints.Load(),
		BuildAvgNanos:     avg(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchAvgNanos:    avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		SearchEvaluations: b.SearchEvaluations.Load(),
		BatchCount:        b.BatchCount.Load(),
		BatchErrors:       b.BatchErrors.Load(),
		BatchQueries:      b.BatchQueries.Load(),
		ReleaseCount:      b.ReleaseCount.Load(),
		ReleasedNodes:     b.ReleasedNodes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount        int64
	BuildErrors       int64
	BuildPoints       int64
	BuildAvgNanos     int64
	SearchCount       int64
	SearchErrors      int64
	SearchAvgNanos    int64
	SearchEvaluations int64
	BatchCount        int64
	BatchErrors       int64
	BatchQueries      int64
	ReleaseCount      int64
	ReleasedNodes     int64
}

// AvgEvaluations returns the mean number of distance computations per search.
func (s BasicMetricsStats) AvgEvaluations() float64 {
	if s.SearchCount == 0 {
		return 0
	}
	return float64(s.SearchEvaluations) / float64(s.SearchCount)
}
