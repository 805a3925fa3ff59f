// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやワーカーから利用する。
type MetricsCollector interface {
	RecordSignUpSuccess()
	RecordSignUpFailure(reason string)
	RecordLoginSuccess()
	RecordLoginFailure(reason string)
	RecordTodoOperation(operation string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSessionsPurged(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signUpSuccess  prometheus.Counter
	signUpFail     *prometheus.CounterVec
	loginSuccess   prometheus.Counter
	loginFail      *prometheus.CounterVec
	todoOps        *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	sessionsPurged prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signUpSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoman_signup_success_total",
			Help: "サインアップ成功の合計数",
		}),
		signUpFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoman_signup_fail_total",
			Help: "サインアップ失敗の合計数（理由別）",
		}, []string{"reason"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoman_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoman_login_fail_total",
			Help: "ログイン失敗の合計数（理由別）",
		}, []string{"reason"}),
		todoOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoman_todo_operations_total",
			Help: "Todo操作の合計数（操作種別）",
		}, []string{"operation"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "todoman_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoman_sessions_purged_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.signUpSuccess,
		c.signUpFail,
		c.loginSuccess,
		c.loginFail,
		c.todoOps,
		c.httpStatus,
		c.requestLatency,
		c.sessionsPurged,
	)

	return c
}

// RecordSignUpSuccess はサインアップ成功を記録する。
func (c *Collector) RecordSignUpSuccess() {
	c.signUpSuccess.Inc()
}

// RecordSignUpFailure はサインアップ失敗を理由付きで記録する。
func (c *Collector) RecordSignUpFailure(reason string) {
	c.signUpFail.WithLabelValues(reason).Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を理由付きで記録する。
func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFail.WithLabelValues(reason).Inc()
}

// RecordTodoOperation はTodo操作（add/list/update/delete）を記録する。
func (c *Collector) RecordTodoOperation(operation string) {
	c.todoOps.WithLabelValues(operation).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSessionsPurged はクリーンアップで削除されたセッション数を記録する。
func (c *Collector) RecordSessionsPurged(count int) {
	c.sessionsPurged.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
