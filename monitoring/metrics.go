package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Config holds the monitoring settings.
type Config struct {
	Namespace  string
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Logger     *zap.Logger
}

// DefaultConfig returns a config backed by a fresh registry and a no-op
// logger.
func DefaultConfig() Config {
	reg := prometheus.NewRegistry()
	return Config{
		Namespace:  "arrow_message",
		Registerer: reg,
		Gatherer:   reg,
		Logger:     zap.NewNop(),
	}
}

// Metrics holds the Prometheus metrics of codec operations.
type Metrics struct {
	// Codec metrics
	EncodeTotal    *prometheus.CounterVec
	DecodeTotal    *prometheus.CounterVec
	EncodeDuration *prometheus.HistogramVec
	DecodeDuration *prometheus.HistogramVec
	EncodedRows    *prometheus.HistogramVec

	// Interchange metrics
	IPCBytes *prometheus.HistogramVec
	Messages *prometheus.CounterVec
}

// NewMetrics creates and registers metrics under namespace on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EncodeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_total",
			Help:      "Total encode calls by codec and status",
		}, []string{"codec", "status"}),
		DecodeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_total",
			Help:      "Total decode calls by codec and status",
		}, []string{"codec", "status"}),
		EncodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Encode latency by codec",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"codec"}),
		DecodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      "Decode latency by codec",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"codec"}),
		EncodedRows: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encoded_rows",
			Help:      "Rows of the top level array produced per encode",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}, []string{"codec"}),

		IPCBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ipc_bytes",
			Help:      "Size of IPC payloads by direction",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		}, []string{"direction"}),
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ipc_messages_total",
			Help:      "Messages carried in IPC payloads by direction",
		}, []string{"direction"}),
	}
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// RecordEncode records one encode call.
func (m *Metrics) RecordEncode(codec string, rows int, duration time.Duration, err error) {
	m.EncodeTotal.WithLabelValues(codec, status(err)).Inc()
	m.EncodeDuration.WithLabelValues(codec).Observe(duration.Seconds())
	if err == nil {
		m.EncodedRows.WithLabelValues(codec).Observe(float64(rows))
	}
}

// RecordDecode records one decode call.
func (m *Metrics) RecordDecode(codec string, duration time.Duration, err error) {
	m.DecodeTotal.WithLabelValues(codec, status(err)).Inc()
	m.DecodeDuration.WithLabelValues(codec).Observe(duration.Seconds())
}

// RecordIPC records one IPC payload carrying messages in direction
// ("write" or "read").
func (m *Metrics) RecordIPC(direction string, size, messages int) {
	m.IPCBytes.WithLabelValues(direction).Observe(float64(size))
	m.Messages.WithLabelValues(direction).Add(float64(messages))
}

// MetricsServer runs an HTTP server exposing /metrics endpoint.
type MetricsServer struct {
	server *http.Server
}

// NewMetricsServer creates a new metrics server on the given address serving
// the metrics of o.
func NewMetricsServer(addr string, o *Observer) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", o.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return &MetricsServer{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Handler returns the server's HTTP handler.
func (s *MetricsServer) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the metrics server (blocking).
func (s *MetricsServer) Start() error {
	return s.server.ListenAndServe()
}

// StartAsync starts the metrics server in a goroutine.
func (s *MetricsServer) StartAsync() {
	go func() {
		_ = s.server.ListenAndServe()
	}()
}

// Stop gracefully stops the metrics server.
func (s *MetricsServer) Stop() error {
	return s.server.Close()
}

func handlerFor(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
