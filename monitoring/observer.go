package monitoring

import (
	"net/http"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/VanDung-dev/arrow-message/errors"
	"github.com/VanDung-dev/arrow-message/message"
)

// Observer records codec activity as metrics and logs.
type Observer struct {
	metrics  *Metrics
	logger   *zap.Logger
	gatherer prometheus.Gatherer
}

// NewObserver creates an Observer from cfg. Zero fields fall back to
// DefaultConfig.
func NewObserver(cfg Config) *Observer {
	def := DefaultConfig()
	if cfg.Namespace == "" {
		cfg.Namespace = def.Namespace
	}
	if cfg.Registerer == nil {
		cfg.Registerer, cfg.Gatherer = def.Registerer, def.Gatherer
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	if cfg.Gatherer == nil {
		if g, ok := cfg.Registerer.(prometheus.Gatherer); ok {
			cfg.Gatherer = g
		}
	}

	return &Observer{
		metrics:  NewMetrics(cfg.Namespace, cfg.Registerer),
		logger:   cfg.Logger,
		gatherer: cfg.Gatherer,
	}
}

// Metrics returns the observer's metrics.
func (o *Observer) Metrics() *Metrics { return o.metrics }

// Logger returns the observer's logger.
func (o *Observer) Logger() *zap.Logger { return o.logger }

// Handler exposes the observer's metrics in the Prometheus text format.
func (o *Observer) Handler() http.Handler {
	return handlerFor(o.gatherer)
}

// ObserveEncode records an encode of codec that produced arr.
func (o *Observer) ObserveEncode(codec string, start time.Time, arr arrow.Array, err error) {
	rows := 0
	if arr != nil {
		rows = arr.Len()
	}
	o.metrics.RecordEncode(codec, rows, time.Since(start), err)
	if err != nil {
		o.logger.Warn("encode failed",
			zap.String("codec", codec),
			zap.String("kind", string(errors.KindOf(err))),
			zap.Error(err))
	}
}

// ObserveDecode records a decode of codec.
func (o *Observer) ObserveDecode(codec string, start time.Time, err error) {
	o.metrics.RecordDecode(codec, time.Since(start), err)
	if err != nil {
		o.logger.Warn("decode failed",
			zap.String("codec", codec),
			zap.String("kind", string(errors.KindOf(err))),
			zap.Error(err))
	}
}

// ObserveIPC records an IPC payload.
func (o *Observer) ObserveIPC(direction string, size, messages int) {
	o.metrics.RecordIPC(direction, size, messages)
	o.logger.Debug("ipc payload",
		zap.String("direction", direction),
		zap.Int("bytes", size),
		zap.Int("messages", messages))
}

type instrumented[T any] struct {
	name  string
	codec message.Codec[T]
	obs   *Observer
}

// Instrument wraps codec so every call is recorded by o under name. The
// wrapped codec encodes and decodes exactly like codec.
func Instrument[T any](name string, codec message.Codec[T], o *Observer) message.Codec[T] {
	if o == nil {
		return codec
	}
	return instrumented[T]{name: name, codec: codec, obs: o}
}

func (c instrumented[T]) Field(name string) arrow.Field {
	return c.codec.Field(name)
}

func (c instrumented[T]) Encode(mem memory.Allocator, v T) (arrow.Array, error) {
	start := time.Now()
	arr, err := c.codec.Encode(mem, v)
	c.obs.ObserveEncode(c.name, start, arr, err)
	return arr, err
}

func (c instrumented[T]) Decode(arr arrow.Array) (T, error) {
	start := time.Now()
	v, err := c.codec.Decode(arr)
	c.obs.ObserveDecode(c.name, start, err)
	return v, err
}
