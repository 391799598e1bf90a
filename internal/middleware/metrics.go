package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application counters
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	ScrapesTotal       uint64
	ItemsIngested      uint64
	BatchesTotal       uint64
	ItemsProcessed     uint64
	ItemsFailed        uint64
	InsightsGenerated  uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementScrapes increments the scrape-run counter
func IncrementScrapes() {
	atomic.AddUint64(&globalMetrics.ScrapesTotal, 1)
}

// AddItemsIngested adds newly stored corpus items
func AddItemsIngested(n int) {
	atomic.AddUint64(&globalMetrics.ItemsIngested, uint64(n))
}

// IncrementBatches increments the classification batch counter
func IncrementBatches() {
	atomic.AddUint64(&globalMetrics.BatchesTotal, 1)
}

// IncrementItemsProcessed increments the processed item counter
func IncrementItemsProcessed() {
	atomic.AddUint64(&globalMetrics.ItemsProcessed, 1)
}

// IncrementItemsFailed increments the failed item counter
func IncrementItemsFailed() {
	atomic.AddUint64(&globalMetrics.ItemsFailed, 1)
}

// IncrementInsights increments the insight snapshot counter
func IncrementInsights() {
	atomic.AddUint64(&globalMetrics.InsightsGenerated, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"scrapes_total":        atomic.LoadUint64(&globalMetrics.ScrapesTotal),
		"items_ingested":       atomic.LoadUint64(&globalMetrics.ItemsIngested),
		"batches_total":        atomic.LoadUint64(&globalMetrics.BatchesTotal),
		"items_processed":      atomic.LoadUint64(&globalMetrics.ItemsProcessed),
		"items_failed":         atomic.LoadUint64(&globalMetrics.ItemsFailed),
		"insights_generated":   atomic.LoadUint64(&globalMetrics.InsightsGenerated),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
