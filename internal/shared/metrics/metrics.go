package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	dispatchStartedTotal   atomic.Uint64
	dispatchSucceededTotal atomic.Uint64
	dispatchFailedTotal    atomic.Uint64
	callbackReceivedTotal  atomic.Uint64
	callbackRejectedTotal  atomic.Uint64

	dispatchDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000})
)

// IncDispatchStarted increments the dispatch attempts counter.
func IncDispatchStarted() {
	dispatchStartedTotal.Add(1)
}

// IncDispatchSucceeded increments the successful dispatch counter.
func IncDispatchSucceeded() {
	dispatchSucceededTotal.Add(1)
}

// IncDispatchFailed increments the failed dispatch counter.
func IncDispatchFailed() {
	dispatchFailedTotal.Add(1)
}

// IncCallbackReceived increments the accepted callback counter.
func IncCallbackReceived() {
	callbackReceivedTotal.Add(1)
}

// IncCallbackRejected increments the rejected callback counter.
func IncCallbackRejected() {
	callbackRejectedTotal.Add(1)
}

// ObserveDispatchDurationMs records a webhook dispatch duration in milliseconds.
func ObserveDispatchDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	dispatchDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "dispatch_started_total", "Total webhook dispatches started", dispatchStartedTotal.Load())
	writeCounter(&buf, "dispatch_succeeded_total", "Total webhook dispatches acknowledged", dispatchSucceededTotal.Load())
	writeCounter(&buf, "dispatch_failed_total", "Total webhook dispatches failed", dispatchFailedTotal.Load())
	writeCounter(&buf, "callback_received_total", "Total processing callbacks accepted", callbackReceivedTotal.Load())
	writeCounter(&buf, "callback_rejected_total", "Total processing callbacks rejected", callbackRejectedTotal.Load())
	writeHistogram(&buf, "dispatch_duration_ms", "Webhook dispatch duration in milliseconds", dispatchDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
