package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 参加リクエストの受付結果（outcome: confirmed, pending, conflict, lock_failed, error）
	ParticipationRequestsTotal *prometheus.CounterVec

	// 主催者による審査件数（status: CONFIRMED, REJECTED）
	RequestDecisionsTotal *prometheus.CounterVec

	// 枠あふれによるカスケード却下の総数
	CascadeRejectionsTotal prometheus.Counter

	// 公開されたイベントの総数
	EventsPublishedTotal prometheus.Counter

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ParticipationRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "participation_requests_total",
				Help: "Total number of participation request submissions",
			},
			[]string{"outcome"},
		),
		RequestDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "request_decisions_total",
				Help: "Total number of organizer decisions on participation requests",
			},
			[]string{"status"},
		),
		CascadeRejectionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cascade_rejections_total",
				Help: "Total number of pending requests auto-rejected when an event became full",
			},
		),
		EventsPublishedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "events_published_total",
				Help: "Total number of published events",
			},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ParticipationRequestsTotal,
		m.RequestDecisionsTotal,
		m.CascadeRejectionsTotal,
		m.EventsPublishedTotal,
		m.DistributedLockDuration,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
