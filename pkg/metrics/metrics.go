// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用和系统指标.
//
// Example:
//
//	import "github.com/soumik183/instavault/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.UploadsTotal.WithLabelValues(accountID, "ok").Inc()
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soumik183/instavault/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// UploadsTotal 上传计数，按目标账号与结果区分.
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_uploads_total",
			Help: "Total number of object uploads by target account and outcome",
		},
		[]string{"account", "outcome"},
	)

	// UploadBytes 按账号累计上传字节数.
	UploadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_upload_bytes_total",
			Help: "Total bytes uploaded by target account",
		},
		[]string{"account"},
	)

	// DownloadsTotal 下载计数.
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_downloads_total",
			Help: "Total number of object downloads by account",
		},
		[]string{"account"},
	)

	// ProbeFailures 账号探测失败计数.
	ProbeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_probe_failures_total",
			Help: "Total number of failed account probes",
		},
		[]string{"account"},
	)

	// LiveAccounts 当前连接池中存活账号数量.
	LiveAccounts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vault_live_accounts",
			Help: "Number of live accounts in the pool",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// 注册标准收集器
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 注册自定义指标
	registry.MustRegister(
		RequestCounter, RequestDuration,
		UploadsTotal, UploadBytes, DownloadsTotal,
		ProbeFailures, LiveAccounts,
	)

	return nil
}

// StartMetricsServer 启动Metrics HTTP服务器.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
