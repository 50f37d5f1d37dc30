package routelog

import (
	"net/http"
	"time"
)

// Metrics holds metrics captured around a handler call.
type Metrics struct {
	// Code is the first http response code passed to the WriteHeader func of
	// the ResponseWriter. If no such call is made, a default code of 200 is
	// assumed instead.
	Code  int
	Start time.Time
	End   time.Time
	// Duration is the time it took to execute the handler.
	Duration time.Duration
	// Written is the number of body bytes the handler wrote. They are still
	// buffered when the metrics are taken.
	Written int64
	// Completed is false when the handler panicked.
	Completed bool
}

// CaptureMetrics runs hnd with the capture writer w and returns the metrics it captured.
func CaptureMetrics(hnd http.Handler, w *CachingResponseWriter, r *http.Request) *Metrics {
	m := &Metrics{}
	CaptureMetricsFn(m, w, func(ww http.ResponseWriter) { hnd.ServeHTTP(ww, r) })

	return m
}

// CaptureMetricsFn wraps fn with timing and fills m from w once fn returns or panics,
// so m can be read from a deferred function of the caller.
func CaptureMetricsFn(m *Metrics, w *CachingResponseWriter, fn func(http.ResponseWriter)) {
	m.Start = time.Now()

	defer func() {
		m.End = time.Now()
		m.Duration = m.End.Sub(m.Start)
		m.Code = w.Status()
		m.Written = int64(w.ContentSize())
	}()

	fn(w)
	m.Completed = true
}
