package internaldefs

import (
	"github.com/sumanize/sumanize"
)

// CounterDef binds a core metric ID to its exported name.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   sumanize.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram ID to its exported name.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   sumanize.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: sumanize.MetricAuthorizeAllowed, Name: "sumanize_authorize_allowed_total", Help: "Requests allowed by the authorization gate."},
	{ID: sumanize.MetricAuthorizeDenied, Name: "sumanize_authorize_denied_total", Help: "Requests denied by the authorization gate."},
	{ID: sumanize.MetricLoginSuccess, Name: "sumanize_login_success_total", Help: "Successful login attempts."},
	{ID: sumanize.MetricLoginFailure, Name: "sumanize_login_failure_total", Help: "Failed login attempts."},
	{ID: sumanize.MetricLogout, Name: "sumanize_logout_total", Help: "Completed logout operations."},
	{ID: sumanize.MetricCacheUnavailable, Name: "sumanize_cache_unavailable_total", Help: "Session cache infrastructure failures."},
	{ID: sumanize.MetricUsageAllowed, Name: "sumanize_usage_allowed_total", Help: "Summarization calls within the daily budget."},
	{ID: sumanize.MetricUsageDenied, Name: "sumanize_usage_denied_total", Help: "Summarization calls rejected over budget."},
	{ID: sumanize.MetricUsageSyncEnqueued, Name: "sumanize_usage_sync_enqueued_total", Help: "Usage records handed to the sync queue."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: sumanize.MetricAuthorizeLatency, Name: "sumanize_authorize_latency_seconds", Help: "Authorization gate latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, Prometheus "le"
// label form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus histograms expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
