package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	UDPDatagrams prometheus.Counter
	UDPBytes     prometheus.Counter
	UDPThrottled prometheus.Counter
	DecodeTotal  *prometheus.CounterVec // labels: result=ok|length_error|parity_error
	StateChanges prometheus.Counter
	SendTotal    *prometheus.CounterVec // labels: result=ok|error
	OnAirGauge   prometheus.Gauge       // 当前在播地址数
	AddressGauge prometheus.Gauge       // 已知地址数
	SinkErrors   *prometheus.CounterVec // labels: sink=redis|db
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		UDPDatagrams: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "udp_datagrams_total",
			Help: "Total datagrams received over UDP.",
		}),
		UDPBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "udp_bytes_received_total",
			Help: "Total bytes received over UDP.",
		}),
		UDPThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "udp_datagrams_throttled_total",
			Help: "Datagrams dropped by the inbound rate limiter.",
		}),
		DecodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsl_decode_total",
			Help: "TSL 3.1 decode attempts by outcome.",
		}, []string{"result"}),
		StateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tally_state_changes_total",
			Help: "Tally state updates that changed a field.",
		}),
		SendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsl_send_total",
			Help: "Outbound TSL packets by outcome.",
		}, []string{"result"}),
		OnAirGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tally_on_air_count",
			Help: "Current number of addresses with any tally lit.",
		}),
		AddressGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tally_known_addresses",
			Help: "Current number of addresses with known state.",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_sink_errors_total",
			Help: "Event sink failures by sink.",
		}, []string{"sink"}),
	}
	reg.MustRegister(m.UDPDatagrams, m.UDPBytes, m.UDPThrottled, m.DecodeTotal,
		m.StateChanges, m.SendTotal, m.OnAirGauge, m.AddressGauge, m.SinkErrors)
	return m
}
