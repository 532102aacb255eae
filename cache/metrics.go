package cache

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/vitalsync/go-common/cache"

// metrics wraps the OpenTelemetry counters the cache reports into. A nil
// *metrics is valid and records nothing, so the cache works without any
// meter provider configured.
type metrics struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	evictions     metric.Int64Counter
	revalidations metric.Int64Counter
}

func newMetrics(provider metric.MeterProvider) *metrics {
	if provider == nil {
		return nil
	}
	meter := provider.Meter(meterName)
	hits, err1 := meter.Int64Counter("cache.hits",
		metric.WithDescription("Cache hits, partitioned by freshness state"))
	misses, err2 := meter.Int64Counter("cache.misses",
		metric.WithDescription("Cache misses, including expired entries"))
	evictions, err3 := meter.Int64Counter("cache.evictions",
		metric.WithDescription("Entries evicted under capacity pressure"))
	revalidations, err4 := meter.Int64Counter("cache.revalidations",
		metric.WithDescription("Background revalidations, partitioned by outcome"))
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil
	}
	return &metrics{
		hits:          hits,
		misses:        misses,
		evictions:     evictions,
		revalidations: revalidations,
	}
}

func (m *metrics) hit(stale bool) {
	if m == nil {
		return
	}
	state := "fresh"
	if stale {
		state = "stale"
	}
	m.hits.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("state", state)))
}

func (m *metrics) miss() {
	if m == nil {
		return
	}
	m.misses.Add(context.Background(), 1)
}

func (m *metrics) eviction() {
	if m == nil {
		return
	}
	m.evictions.Add(context.Background(), 1)
}

func (m *metrics) revalidation(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.revalidations.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", outcome)))
}
