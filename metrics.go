package prefs

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

var (
	decodeFailuresTotal = metrics.NewCounter("prefs_decode_failures_total")
	readBatchesTotal    = metrics.NewCounter(`prefs_batches_total{kind="read"}`)
	writeBatchesTotal   = metrics.NewCounter(`prefs_batches_total{kind="write"}`)
	editBatchesTotal    = metrics.NewCounter(`prefs_batches_total{kind="edit"}`)
)

// countDecodeFailure records a degrade-to-default event. This is the only
// externally visible trace of a decode failure.
func countDecodeFailure(key string) {
	decodeFailuresTotal.Inc()
	metrics.GetOrCreateCounter(fmt.Sprintf(`prefs_field_decode_failures_total{key=%q}`, key)).Inc()
}
