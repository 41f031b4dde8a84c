// Package prometheus renders sumanize metrics in Prometheus text exposition
// format without depending on a client library.
//
// [NewExporter] accepts a [sumanize.Engine] and exposes an [net/http.Handler]
// serving all counters and the authorize latency histogram. Counter names
// are prefixed sumanize_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the
//     Handler.
//   - Mutate engine state.
package prometheus
