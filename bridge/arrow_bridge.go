package bridge

import (
	"context"
	"runtime"

	arrowlib "github.com/apache/arrow-go/v18/arrow"
	"golang.org/x/sync/errgroup"

	"github.com/VanDung-dev/arrow-message/arrow"
	"github.com/VanDung-dev/arrow-message/errors"
	"github.com/VanDung-dev/arrow-message/message"
	"github.com/VanDung-dev/arrow-message/monitoring"
)

// IPC directions reported to the observer.
const (
	DirectionWrite = "write"
	DirectionRead  = "read"
)

// Config holds bridge configuration.
type Config struct {
	// Workers bounds the goroutines used by MarshalAll and UnmarshalAll.
	Workers int
	IPC     arrow.IPCConfig
	// Observer records payload sizes. Optional.
	Observer *monitoring.Observer
}

// DefaultConfig returns default bridge configuration.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.GOMAXPROCS(0),
		IPC:     arrow.DefaultIPCConfig(),
	}
}

// Bridge serializes encoded messages to IPC bytes and back. It holds no
// mutable state and is safe for concurrent use.
type Bridge struct {
	cfg    Config
	writer *arrow.IPCWriter
}

// New creates a Bridge from cfg.
func New(cfg Config) (*Bridge, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	w, err := arrow.NewIPCWriterWithConfig(cfg.IPC)
	if err != nil {
		return nil, err
	}
	if cfg.IPC.Allocator == nil {
		cfg.IPC.Allocator = arrow.DefaultIPCConfig().Allocator
	}
	return &Bridge{cfg: cfg, writer: w}, nil
}

func (b *Bridge) observe(direction string, size, messages int) {
	if b.cfg.Observer != nil {
		b.cfg.Observer.ObserveIPC(direction, size, messages)
	}
}

// Marshal encodes v with codec and serializes it under the field name.
func Marshal[T any](b *Bridge, codec message.Codec[T], name string, v T) ([]byte, error) {
	arr, err := codec.Encode(b.cfg.IPC.Allocator, v)
	if err != nil {
		return nil, err
	}
	defer arr.Release()

	out, err := b.writer.SerializeArray(codec.Field(name), arr)
	if err != nil {
		return nil, err
	}
	b.observe(DirectionWrite, len(out), 1)
	return out, nil
}

// Unmarshal reads one message written by Marshal and decodes it with codec.
// The payload must carry the layout codec describes.
func Unmarshal[T any](b *Bridge, codec message.Codec[T], data []byte) (T, error) {
	var zero T

	field, arr, err := b.writer.DeserializeArray(data)
	if err != nil {
		return zero, err
	}
	defer arr.Release()
	b.observe(DirectionRead, len(data), 1)

	v, err := decodeChecked(codec, field, arr)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// MarshalAll encodes vs concurrently and serializes them, in order, into one
// IPC stream. The first failure cancels the remaining encodes.
func MarshalAll[T any](ctx context.Context, b *Bridge, codec message.Codec[T], name string, vs []T) ([]byte, error) {
	arrs := make([]arrowlib.Array, len(vs))
	defer func() {
		for _, a := range arrs {
			if a != nil {
				a.Release()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)

	for i := range vs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			arr, err := codec.Encode(b.cfg.IPC.Allocator, vs[i])
			if err != nil {
				return errors.WithPath(err, name)
			}
			arrs[i] = arr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out, err := b.writer.SerializeArrays(codec.Field(name), arrs)
	if err != nil {
		return nil, err
	}
	b.observe(DirectionWrite, len(out), len(vs))
	return out, nil
}

// UnmarshalAll decodes every message of a stream written by MarshalAll.
func UnmarshalAll[T any](ctx context.Context, b *Bridge, codec message.Codec[T], data []byte) ([]T, error) {
	field, arrs, err := b.writer.DeserializeArrays(data)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, a := range arrs {
			a.Release()
		}
	}()
	b.observe(DirectionRead, len(data), len(arrs))

	out := make([]T, len(arrs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)

	for i := range arrs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := decodeChecked(codec, field, arrs[i])
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeChecked[T any](codec message.Codec[T], field arrowlib.Field, arr arrowlib.Array) (T, error) {
	var zero T
	if err := message.CheckSchema(arr, codec.Field(field.Name)); err != nil {
		return zero, errors.WithPath(err, field.Name)
	}
	v, err := codec.Decode(arr)
	if err != nil {
		return zero, errors.WithPath(err, field.Name)
	}
	return v, nil
}
