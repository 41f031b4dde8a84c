package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/sumanize/sumanize"
	"github.com/sumanize/sumanize/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() sumanize.MetricsSnapshot
	AuditDropped() uint64
	SyncDropped() uint64
	SyncRetries() uint64
	SyncFailed() uint64
}

type observedCounter struct {
	id         sumanize.MetricID
	instrument metric.Int64ObservableCounter
}

type observedHistogram struct {
	id      sumanize.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// Exporter registers observable instruments against the supplied meter and
// feeds them from engine snapshots.
//
// Exporter instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Exporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []observedCounter
	histograms   []observedHistogram
	auditDropped metric.Int64ObservableCounter
	syncDropped  metric.Int64ObservableCounter
	syncRetries  metric.Int64ObservableCounter
	syncFailed   metric.Int64ObservableCounter
}

// NewExporter registers the instruments for the given engine.
func NewExporter(meter metric.Meter, engine *sumanize.Engine) (*Exporter, error) {
	return NewExporterFromSource(meter, engine)
}

// NewExporterFromSource registers the instruments against a custom source.
func NewExporterFromSource(meter metric.Meter, source metricsSource) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &Exporter{
		source:     source,
		counters:   make([]observedCounter, 0, len(internaldefs.CounterDefs)),
		histograms: make([]observedHistogram, 0, len(internaldefs.HistogramDefs)),
	}

	observables := make([]metric.Observable, 0, len(internaldefs.CounterDefs)+len(internaldefs.HistogramDefs)*9+4)

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		exporter.counters = append(exporter.counters, observedCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h := observedHistogram{id: def.ID}
		for i := 0; i < len(internaldefs.HistogramBoundSuffix); i++ {
			name := def.Name + "_bucket_le_" + internaldefs.HistogramBoundSuffix[i]
			ins, err := meter.Int64ObservableGauge(name, metric.WithDescription("Cumulative histogram bucket count."))
			if err != nil {
				return nil, fmt.Errorf("create histogram bucket gauge %s: %w", name, err)
			}
			h.buckets[i] = ins
			observables = append(observables, ins)
		}
		countName := def.Name + "_count"
		countIns, err := meter.Int64ObservableGauge(countName, metric.WithDescription("Histogram total sample count."))
		if err != nil {
			return nil, fmt.Errorf("create histogram count gauge %s: %w", countName, err)
		}
		h.count = countIns
		observables = append(observables, countIns)
		exporter.histograms = append(exporter.histograms, h)
	}

	queueCounters := []struct {
		name string
		help string
		dst  *metric.Int64ObservableCounter
	}{
		{"sumanize_audit_dropped_total", "Dropped audit events due to dispatcher backpressure.", &exporter.auditDropped},
		{"sumanize_usage_sync_dropped_total", "Usage records dropped under queue backpressure.", &exporter.syncDropped},
		{"sumanize_usage_sync_retries_total", "Usage-sync redelivery attempts.", &exporter.syncRetries},
		{"sumanize_usage_sync_failed_total", "Usage records that exhausted their delivery attempts.", &exporter.syncFailed},
	}
	for _, qc := range queueCounters {
		ins, err := meter.Int64ObservableCounter(qc.name, metric.WithDescription(qc.help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", qc.name, err)
		}
		*qc.dst = ins
		observables = append(observables, ins)
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		snapshot := exporter.source.MetricsSnapshot()
		for _, c := range exporter.counters {
			observer.ObserveInt64(c.instrument, int64(snapshot.Counters[c.id]))
		}
		for _, h := range exporter.histograms {
			nonCumulative := internaldefs.NormalizeBuckets(snapshot.Histograms[h.id])
			cumulative := internaldefs.CumulativeBuckets(nonCumulative)
			for i := 0; i < len(cumulative); i++ {
				observer.ObserveInt64(h.buckets[i], int64(cumulative[i]))
			}
			observer.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
		}
		observer.ObserveInt64(exporter.auditDropped, int64(exporter.source.AuditDropped()))
		observer.ObserveInt64(exporter.syncDropped, int64(exporter.source.SyncDropped()))
		observer.ObserveInt64(exporter.syncRetries, int64(exporter.source.SyncRetries()))
		observer.ObserveInt64(exporter.syncFailed, int64(exporter.source.SyncFailed()))
		return nil
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
