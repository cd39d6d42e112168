package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("%s metric not found", name)
	return 0
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordStorageOp_IncrementsCounter はストレージ操作カウンタが増加することを検証する。
func TestRecordStorageOp_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStorageOp("remote", "create_task")
	c.RecordStorageOp("remote", "create_task")
	c.RecordStorageOp("local", "create_task")

	if got := counterValue(t, reg, "planman_storage_ops_total"); got != 3 {
		t.Errorf("storage_ops_total = %v, want 3", got)
	}
}

// TestRecordStorageOp_SeparatesLabels はバックエンドと操作のラベルが
// 独立に集計されることを検証する。
func TestRecordStorageOp_SeparatesLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStorageOp("remote", "create_task")
	c.RecordStorageOp("remote", "create_task")
	c.RecordStorageOp("local", "list_tasks")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "planman_storage_ops_total" {
			found = true
			if len(mf.GetMetric()) != 2 {
				t.Fatalf("expected 2 label combinations, got %d", len(mf.GetMetric()))
			}
			for _, m := range mf.GetMetric() {
				var backend string
				for _, l := range m.GetLabel() {
					if l.GetName() == "backend" {
						backend = l.GetValue()
					}
				}
				val := m.GetCounter().GetValue()
				switch backend {
				case "remote":
					if val != 2 {
						t.Errorf("storage_ops_total{backend=remote} = %v, want 2", val)
					}
				case "local":
					if val != 1 {
						t.Errorf("storage_ops_total{backend=local} = %v, want 1", val)
					}
				default:
					t.Errorf("unexpected backend label: %s", backend)
				}
			}
		}
	}
	if !found {
		t.Error("planman_storage_ops_total metric not found")
	}
}

// TestRecordStorageError_IncrementsCounter はストレージ失敗カウンタが増加することを検証する。
func TestRecordStorageError_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStorageError("remote", "update_task")

	if got := counterValue(t, reg, "planman_storage_errors_total"); got != 1 {
		t.Errorf("storage_errors_total = %v, want 1", got)
	}
}

// TestRecordFallback_IncrementsCounter はフォールバックカウンタが増加することを検証する。
func TestRecordFallback_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFallback("create_task")
	c.RecordFallback("create_task")
	c.RecordFallback("list_tasks")

	if got := counterValue(t, reg, "planman_remote_fallback_total"); got != 3 {
		t.Errorf("remote_fallback_total = %v, want 3", got)
	}
}

// TestRecordAIRequest_IncrementsCounter はAI呼び出しカウンタが結果別に増加することを検証する。
func TestRecordAIRequest_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAIRequest("extract_task", "success")
	c.RecordAIRequest("extract_task", "parse_failed")

	if got := counterValue(t, reg, "planman_ai_requests_total"); got != 2 {
		t.Errorf("ai_requests_total = %v, want 2", got)
	}
}

// TestRecordAILatency_ObservesHistogram はAIレイテンシのヒストグラムに値が記録されることを検証する。
func TestRecordAILatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAILatency(100 * time.Millisecond)
	c.RecordAILatency(2 * time.Second)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "planman_ai_latency_seconds" {
			found = true
			h := mf.GetMetric()[0].GetHistogram()
			if h.GetSampleCount() != 2 {
				t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
			}
			// 合計は0.1 + 2.0 = 2.1秒
			if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
				t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
			}
		}
	}
	if !found {
		t.Error("planman_ai_latency_seconds metric not found")
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStorageOp("local", "create_task")
	c.RecordStorageError("remote", "create_task")
	c.RecordFallback("create_task")
	c.RecordAIRequest("extract_task", "success")
	c.RecordAILatency(500 * time.Millisecond)

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"planman_storage_ops_total",
		"planman_storage_errors_total",
		"planman_remote_fallback_total",
		"planman_ai_requests_total",
		"planman_ai_latency_seconds",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordFallback("create_task")
	c2.RecordFallback("create_task")
	c2.RecordFallback("create_task")

	if got := counterValue(t, reg1, "planman_remote_fallback_total"); got != 1 {
		t.Errorf("reg1 fallback = %v, want 1", got)
	}
	if got := counterValue(t, reg2, "planman_remote_fallback_total"); got != 2 {
		t.Errorf("reg2 fallback = %v, want 2", got)
	}
}

// TestNopCollector_ImplementsInterface はNopCollectorが呼び出してもパニックしないことを検証する。
func TestNopCollector_ImplementsInterface(t *testing.T) {
	var c MetricsCollector = NopCollector{}

	c.RecordStorageOp("local", "create_task")
	c.RecordStorageError("remote", "create_task")
	c.RecordFallback("create_task")
	c.RecordAIRequest("extract_task", "success")
	c.RecordAILatency(time.Second)
}
