package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"merchantcleanup/internal/metrics"
)

func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func readSummaryCount(t *testing.T, v *prometheus.SummaryVec, labels ...string) uint64 {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	return m.GetSummary().GetSampleCount()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend("job", ""); err == nil {
		t.Fatalf("NewBackend with empty URL: error = nil, want non-nil")
	}

	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if b.jobName != "merchant_cleanup" {
		t.Fatalf("jobName = %q, want merchant_cleanup", b.jobName)
	}

	b, err = NewBackend("nightly", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if b.jobName != "nightly" {
		t.Fatalf("jobName = %q, want nightly", b.jobName)
	}
}

func TestRoutesMetricsByName(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("cleanup", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "read", "status": "success"})
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "read", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 12, metrics.Labels{"kind": "statements"})
	b.IncCounter("unknown_metric", 10, metrics.Labels{"foo": "bar"})
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.25, metrics.Labels{"step": "write", "status": "failure"})
	b.ObserveHistogram("unknown_histogram", 1, nil)

	if got := readCounterValue(t, b.stepCounter.WithLabelValues("read", "success")); got != 2 {
		t.Fatalf("step counter = %v, want 2", got)
	}
	if got := readCounterValue(t, b.recordCounter.WithLabelValues("statements")); got != 12 {
		t.Fatalf("record counter = %v, want 12", got)
	}
	if got := readSummaryCount(t, b.stepDuration, "write", "failure"); got != 1 {
		t.Fatalf("step duration samples = %d, want 1", got)
	}
}

func TestZeroBackendIsSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "s", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 1, metrics.Labels{"kind": "rows"})
	b.ObserveHistogram(metrics.StepDurationSeconds, 1, metrics.Labels{"step": "s", "status": "success"})
}

func TestFlushPushesToGateway(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	b, err := NewBackend("merchant_cleanup", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter(metrics.RecordsTotal, 3, metrics.Labels{"kind": "unique_ids"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut {
		t.Fatalf("method = %s, want PUT", method)
	}
	if path != "/metrics/job/merchant_cleanup" {
		t.Fatalf("path = %s, want /metrics/job/merchant_cleanup", path)
	}
	if !strings.Contains(body, metrics.RecordsTotal) {
		t.Fatalf("pushed body does not mention %s", metrics.RecordsTotal)
	}
}
