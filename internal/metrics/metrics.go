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
// 認証サービスとミドルウェアから利用する。
type MetricsCollector interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordFederationLogin(created bool)
	RecordFederationFailure(stage string)
	RecordFederationLatency(duration time.Duration)
	RecordTokenRejected(reason string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations     prometheus.Counter
	loginSuccess      prometheus.Counter
	loginFail         prometheus.Counter
	federationLogin   *prometheus.CounterVec
	federationFail    *prometheus.CounterVec
	federationLatency prometheus.Histogram
	tokenRejected     *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kawase_registrations_total",
			Help: "ユーザー登録成功の合計数",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kawase_login_success_total",
			Help: "パスワードログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kawase_login_fail_total",
			Help: "パスワードログイン失敗の合計数",
		}),
		federationLogin: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kawase_federation_login_total",
			Help: "Google連携ログイン成功の合計数（result: new / existing）",
		}, []string{"result"}),
		federationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kawase_federation_fail_total",
			Help: "Google連携失敗の合計数（stage: exchange / profile）",
		}, []string{"stage"}),
		federationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kawase_federation_latency_seconds",
			Help:    "Googleエンドポイント呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		tokenRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kawase_token_rejected_total",
			Help: "トークン検証拒否の合計数（reason: missing / bad_scheme / malformed / bad_signature / expired）",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kawase_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.registrations,
		c.loginSuccess,
		c.loginFail,
		c.federationLogin,
		c.federationFail,
		c.federationLatency,
		c.tokenRejected,
		c.httpStatus,
	)

	return c
}

// RecordRegistration はユーザー登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLoginSuccess はパスワードログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はパスワードログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordFederationLogin はGoogle連携ログイン成功を記録する。
// createdは新規ユーザーが作成された場合にtrue。
func (c *Collector) RecordFederationLogin(created bool) {
	result := "existing"
	if created {
		result = "new"
	}
	c.federationLogin.WithLabelValues(result).Inc()
}

// RecordFederationFailure はGoogle連携の失敗を段階別に記録する。
func (c *Collector) RecordFederationFailure(stage string) {
	c.federationFail.WithLabelValues(stage).Inc()
}

// RecordFederationLatency はGoogleエンドポイント呼び出しのレイテンシを記録する。
func (c *Collector) RecordFederationLatency(duration time.Duration) {
	c.federationLatency.Observe(duration.Seconds())
}

// RecordTokenRejected はトークン検証拒否を理由別に記録する。
func (c *Collector) RecordTokenRejected(reason string) {
	c.tokenRejected.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
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

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
