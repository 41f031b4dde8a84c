// Package internaldefs exposes stable metric name definitions shared by the
// exporter implementations.
//
// Counter and histogram definitions live here so that the Prometheus and
// OTel exporters emit identical metric names and bucket boundaries.
//
// # What this package must NOT do
//
//   - Import sumanize or any exporter package.
//   - Perform I/O.
package internaldefs
