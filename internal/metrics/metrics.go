// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// dataservice層とAIクライアントから利用する。
type MetricsCollector interface {
	RecordStorageOp(backend string, operation string)
	RecordStorageError(backend string, operation string)
	RecordFallback(operation string)
	RecordAIRequest(operation string, outcome string)
	RecordAILatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	storageOps    *prometheus.CounterVec
	storageErrors *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	aiRequests    *prometheus.CounterVec
	aiLatency     prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planman_storage_ops_total",
			Help: "バックエンド・操作別のストレージ操作数",
		}, []string{"backend", "operation"}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planman_storage_errors_total",
			Help: "バックエンド・操作別のストレージ操作失敗数",
		}, []string{"backend", "operation"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planman_remote_fallback_total",
			Help: "リモート失敗によりローカルストアへフォールバックした操作数",
		}, []string{"operation"}),
		aiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planman_ai_requests_total",
			Help: "操作・結果別のAIコラボレータ呼び出し数",
		}, []string{"operation", "outcome"}),
		aiLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planman_ai_latency_seconds",
			Help:    "AIコラボレータ呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.storageOps,
		c.storageErrors,
		c.fallbacks,
		c.aiRequests,
		c.aiLatency,
	)

	return c
}

// RecordStorageOp はストレージ操作を記録する。
func (c *Collector) RecordStorageOp(backend, operation string) {
	c.storageOps.WithLabelValues(backend, operation).Inc()
}

// RecordStorageError はストレージ操作の失敗を記録する。
func (c *Collector) RecordStorageError(backend, operation string) {
	c.storageErrors.WithLabelValues(backend, operation).Inc()
}

// RecordFallback はローカルストアへのフォールバックを記録する。
func (c *Collector) RecordFallback(operation string) {
	c.fallbacks.WithLabelValues(operation).Inc()
}

// RecordAIRequest はAIコラボレータ呼び出しを記録する。
func (c *Collector) RecordAIRequest(operation, outcome string) {
	c.aiRequests.WithLabelValues(operation, outcome).Inc()
}

// RecordAILatency はAI呼び出しのレイテンシを記録する。
func (c *Collector) RecordAILatency(duration time.Duration) {
	c.aiLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector実装。テスト用。
type NopCollector struct{}

// RecordStorageOp は何もしない。
func (NopCollector) RecordStorageOp(backend, operation string) {}

// RecordStorageError は何もしない。
func (NopCollector) RecordStorageError(backend, operation string) {}

// RecordFallback は何もしない。
func (NopCollector) RecordFallback(operation string) {}

// RecordAIRequest は何もしない。
func (NopCollector) RecordAIRequest(operation, outcome string) {}

// RecordAILatency は何もしない。
func (NopCollector) RecordAILatency(duration time.Duration) {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
