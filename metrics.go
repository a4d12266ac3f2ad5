package roargo

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
//	    decodeCounter   prometheus.Counter
//	    decodeHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordDecode(duration time.Duration, bytesRead int64, containers int, err error) {
//	    p.decodeCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordBuild is called after each batch build (word array or
	// flat bit-set conversion). words is the input length in 64-bit
	// words, containers the number of chunks emitted.
	RecordBuild(duration time.Duration, words, containers int)

	// RecordDecode is called after each streaming decode.
	// bytesRead is the number of stream bytes consumed, containers the
	// number of chunks emitted, err is nil if successful.
	RecordDecode(duration time.Duration, bytesRead int64, containers int, err error)

	// RecordBatchDecode is called after each bulk decode operation.
	// count is the number of snapshots attempted, failed is the number
	// that failed, duration is the total time taken.
	RecordBatchDecode(count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(time.Duration, int, int)           {}
func (NoopMetricsCollector) RecordDecode(time.Duration, int64, int, error) {}
func (NoopMetricsCollector) RecordBatchDecode(int, int, time.Duration)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount        atomic.Int64
	BuildWords        atomic.Int64
	BuildContainers   atomic.Int64
	BuildTotalNanos   atomic.Int64
	DecodeCount       atomic.Int64
	DecodeErrors      atomic.Int64
	DecodeBytes       atomic.Int64
	DecodeContainers  atomic.Int64
	DecodeTotalNanos  atomic.Int64
	BatchDecodeCount  atomic.Int64
	BatchDecodeItems  atomic.Int64
	BatchDecodeFailed atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(duration time.Duration, words, containers int) {
	b.BuildCount.Add(1)
	b.BuildWords.Add(int64(words))
	b.BuildContainers.Add(int64(containers))
	b.BuildTotalNanos.Add(duration.Nanoseconds())
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(duration time.Duration, bytesRead int64, containers int, err error) {
	b.DecodeCount.Add(1)
	b.DecodeBytes.Add(bytesRead)
	b.DecodeContainers.Add(int64(containers))
	b.DecodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DecodeErrors.Add(1)
	}
}

// RecordBatchDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchDecode(count, failed int, duration time.Duration) {
	b.BatchDecodeCount.Add(1)
	b.BatchDecodeItems.Add(int64(count))
	b.BatchDecodeFailed.Add(int64(failed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:        b.BuildCount.Load(),
		BuildWords:        b.BuildWords.Load(),
		BuildContainers:   b.BuildContainers.Load(),
		BuildAvgNanos:     b.getAvgBuildNanos(),
		DecodeCount:       b.DecodeCount.Load(),
		DecodeErrors:      b.DecodeErrors.Load(),
		DecodeBytes:       b.DecodeBytes.Load(),
		DecodeContainers:  b.DecodeContainers.Load(),
		DecodeAvgNanos:    b.getAvgDecodeNanos(),
		BatchDecodeCount:  b.BatchDecodeCount.Load(),
		BatchDecodeItems:  b.BatchDecodeItems.Load(),
		BatchDecodeFailed: b.BatchDecodeFailed.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgDecodeNanos() int64 {
	count := b.DecodeCount.Load()
	if count == 0 {
		return 0
	}
	return b.DecodeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount        int64
	BuildWords        int64
	BuildContainers   int64
	BuildAvgNanos     int64
	DecodeCount       int64
	DecodeErrors      int64
	DecodeBytes       int64
	DecodeContainers  int64
	DecodeAvgNanos    int64
	BatchDecodeCount  int64
	BatchDecodeItems  int64
	BatchDecodeFailed int64
}
