// Package tracking provides OpenTelemetry metric instrumentation for the
// retry transport. Recording is best-effort: instrument initialization
// failures are logged to stderr and never break the calling code.
package tracking

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// Meter name for retry transport metrics instrumentation
	transportMeterName = "go-requeue/transport"

	metricRetriesQueued  = "transport.client.retry.queued"
	metricFlushBatchSize = "transport.client.retry.flush.batch_size"
	metricExhausted      = "transport.client.retry.exhausted"
	metricAbandoned      = "transport.client.calls.abandoned"

	// Attribute keys (following OTel semconv)
	attrRequestMethod = "http.request.method"
)

var (
	// Singleton meter initialization
	transportMeter metric.Meter
	meterOnce      sync.Once
	meterInitMu    sync.Mutex

	retriesQueued  metric.Int64Counter
	flushBatchSize metric.Int64Histogram
	exhausted      metric.Int64Counter
	abandoned      metric.Int64Counter
)

// logMetricError logs a metric initialization error to stderr. Metrics
// failures must not break the transport.
func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize metric %s: %v\n", metricName, err)
	}
}

// initTransportMeter initializes the OpenTelemetry meter and metric
// instruments. Called lazily and only once.
func initTransportMeter() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	if transportMeter != nil {
		return
	}

	transportMeter = otel.Meter(transportMeterName)

	var err error

	retriesQueued, err = transportMeter.Int64Counter(
		metricRetriesQueued,
		metric.WithDescription("Number of transport calls queued for a delayed resend"),
		metric.WithUnit("{call}"),
	)
	logMetricError(metricRetriesQueued, err)

	flushBatchSize, err = transportMeter.Int64Histogram(
		metricFlushBatchSize,
		metric.WithDescription("Number of queued calls resent per delay-timer firing"),
		metric.WithUnit("{call}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50, 100),
	)
	logMetricError(metricFlushBatchSize, err)

	exhausted, err = transportMeter.Int64Counter(
		metricExhausted,
		metric.WithDescription("Number of transport calls rejected after spending their retry budget"),
		metric.WithUnit("{call}"),
	)
	logMetricError(metricExhausted, err)

	abandoned, err = transportMeter.Int64Counter(
		metricAbandoned,
		metric.WithDescription("Number of queued calls dropped unresolved at disposal"),
		metric.WithUnit("{call}"),
	)
	logMetricError(metricAbandoned, err)
}

// getTransportMeter returns the meter, initializing it on first use
func getTransportMeter() metric.Meter {
	meterOnce.Do(initTransportMeter)
	return transportMeter
}

// RecordRetryQueued records one call entering the retry queue
func RecordRetryQueued(ctx context.Context, method string) {
	getTransportMeter()
	if retriesQueued == nil {
		return
	}
	retriesQueued.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrRequestMethod, method),
	))
}

// RecordFlush records the size of one resent batch
func RecordFlush(ctx context.Context, batchSize int) {
	getTransportMeter()
	if flushBatchSize == nil {
		return
	}
	flushBatchSize.Record(ctx, int64(batchSize))
}

// RecordExhausted records one call surfaced to its caller after its last
// permitted retry failed
func RecordExhausted(ctx context.Context, method string) {
	getTransportMeter()
	if exhausted == nil {
		return
	}
	exhausted.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrRequestMethod, method),
	))
}

// RecordAbandoned records calls dropped without resolution at disposal
func RecordAbandoned(ctx context.Context, count int) {
	getTransportMeter()
	if abandoned == nil {
		return
	}
	abandoned.Add(ctx, int64(count))
}
