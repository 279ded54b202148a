package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// 补全服务调用延迟（毫秒）
	CompletionCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "completion_call_latency_ms",
			Help:    "Text-completion service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"purpose", "status"},
	)

	// 上游代理调用延迟（毫秒）：scholar / sendgrid / storage
	UpstreamCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_call_latency_ms",
			Help:    "Third-party proxy call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		},
		[]string{"upstream", "status"},
	)

	// 数据库慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"statement"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 解析降级计数：LLM 输出不符合语法时使用默认值
	ParseFallbackCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parse_fallback_count",
			Help: "Total number of parsed fields that fell back to a placeholder",
		},
		[]string{"grammar", "field"},
	)

	// 生成记录计数
	GenerationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_count",
			Help: "Total number of generated records",
		},
		[]string{"kind"}, // kind: idea, elaboration, roadmap, section, format, convert
	)

	// 提醒投递计数
	ReminderDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_dispatch_count",
			Help: "Total number of reminders dispatched",
		},
		[]string{"status"}, // status: published, sent, failed, dlq
	)

	// 会话计时器提醒计数
	TimerAlertCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timer_alert_count",
			Help: "Total number of session timer alerts fired",
		},
		[]string{"kind"}, // kind: break, focus
	)
)

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordCompletionLatency 记录补全调用延迟
func RecordCompletionLatency(purpose, status string, duration time.Duration) {
	CompletionCallLatency.WithLabelValues(purpose, status).Observe(float64(duration.Milliseconds()))
}

// RecordUpstreamLatency 记录上游代理调用延迟
func RecordUpstreamLatency(upstream, status string, duration time.Duration) {
	UpstreamCallLatency.WithLabelValues(upstream, status).Observe(float64(duration.Milliseconds()))
}

// IncrementSlowQuery 记录慢查询
func IncrementSlowQuery(statement string, _ time.Duration) {
	SlowQueryCount.WithLabelValues(statement).Inc()
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementParseFallback 增加解析降级计数
func IncrementParseFallback(grammar, field string) {
	ParseFallbackCount.WithLabelValues(grammar, field).Inc()
}

// IncrementGeneration 增加生成计数
func IncrementGeneration(kind string) {
	GenerationCount.WithLabelValues(kind).Inc()
}

// IncrementReminderDispatch 增加提醒投递计数
func IncrementReminderDispatch(status string) {
	ReminderDispatchCount.WithLabelValues(status).Inc()
}

// IncrementTimerAlert 增加计时器提醒计数
func IncrementTimerAlert(kind string) {
	TimerAlertCount.WithLabelValues(kind).Inc()
}
