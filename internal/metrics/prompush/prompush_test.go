package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/esscova/ecommerce-data-pipeline/internal/metrics"
)

func TestNewBackendRequiresGatewayURL(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend("job", ""); err == nil {
		t.Fatal("NewBackend() error = nil, want missing-URL failure")
	}
}

func readCounter(t *testing.T, b *Backend, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := b.reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	metric:
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return 0
}

func TestIncCounterRoutesByMetricName(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("test", "http://gateway.invalid:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter("pipeline_stage_total", 1, metrics.Labels{"stage": "extract", "status": "success"})
	b.IncCounter("pipeline_stage_total", 1, metrics.Labels{"stage": "extract", "status": "success"})
	b.IncCounter("pipeline_records_total", 42, metrics.Labels{"kind": "loaded"})
	b.IncCounter("unknown_metric", 7, nil) // ignored

	if got := readCounter(t, b, "pipeline_stage_total", map[string]string{"stage": "extract", "status": "success"}); got != 2 {
		t.Errorf("stage counter = %v, want 2", got)
	}
	if got := readCounter(t, b, "pipeline_records_total", map[string]string{"kind": "loaded"}); got != 42 {
		t.Errorf("record counter = %v, want 42", got)
	}
}

func TestObserveDuration(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("test", "http://gateway.invalid:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.ObserveDuration("pipeline_stage_duration_seconds", 1.5, metrics.Labels{"stage": "transform", "status": "success"})
	b.ObserveDuration("pipeline_stage_duration_seconds", 0.5, metrics.Labels{"stage": "transform", "status": "success"})
	b.ObserveDuration("other_metric", 9, nil) // ignored

	families, err := b.reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var summary *dto.Summary
	for _, fam := range families {
		if fam.GetName() == "pipeline_stage_duration_seconds" {
			summary = fam.GetMetric()[0].GetSummary()
		}
	}
	if summary == nil {
		t.Fatal("duration summary not gathered")
	}
	if summary.GetSampleCount() != 2 {
		t.Errorf("sample count = %d, want 2", summary.GetSampleCount())
	}
	if summary.GetSampleSum() != 2.0 {
		t.Errorf("sample sum = %v, want 2.0", summary.GetSampleSum())
	}
}

func TestFlushPushesToGateway(t *testing.T) {
	t.Parallel()

	type pushInfo struct {
		method string
		path   string
		body   int
	}
	reqCh := make(chan pushInfo, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushInfo{method: r.Method, path: r.URL.Path, body: len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("etl-run", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter("pipeline_stage_total", 1, metrics.Labels{"stage": "extract", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got pushInfo
	select {
	case got = <-reqCh:
	default:
		t.Fatal("Flush() sent no request to the gateway")
	}
	if !strings.Contains(got.path, "etl-run") {
		t.Errorf("push path = %q, want it to carry the job name", got.path)
	}
	if got.body == 0 {
		t.Error("push body is empty")
	}
}
