// Package otel bridges sumanize metrics into OpenTelemetry observable
// instruments. Counters and cumulative histogram buckets are observed from
// engine snapshots on each collection cycle; nothing is pushed.
//
// # What this package must NOT do
//
//   - Own a MeterProvider; the caller supplies the meter.
//   - Mutate engine state.
package otel
