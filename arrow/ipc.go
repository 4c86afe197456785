package arrow

import (
	"bytes"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/VanDung-dev/arrow-message/errors"
)

// Compression selects the IPC body codec.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionZstd Compression = "zstd"
)

// IPCConfig holds the IPC stream settings.
type IPCConfig struct {
	Allocator   memory.Allocator
	Compression Compression
}

// DefaultIPCConfig returns uncompressed streams on the default allocator.
func DefaultIPCConfig() IPCConfig {
	return IPCConfig{
		Allocator:   memory.DefaultAllocator,
		Compression: CompressionNone,
	}
}

// IPCWriter writes encoded messages to the Arrow IPC stream format.
type IPCWriter struct {
	allocator   memory.Allocator
	compression Compression
}

// NewIPCWriter creates a new IPCWriter with DefaultIPCConfig.
func NewIPCWriter() *IPCWriter {
	w, _ := NewIPCWriterWithConfig(DefaultIPCConfig())
	return w
}

// NewIPCWriterWithConfig creates an IPCWriter from cfg.
func NewIPCWriterWithConfig(cfg IPCConfig) (*IPCWriter, error) {
	switch cfg.Compression {
	case "", CompressionNone, CompressionLZ4, CompressionZstd:
	default:
		return nil, errors.Parse(errors.PhaseIPC, string(cfg.Compression), "Compression")
	}
	if cfg.Allocator == nil {
		cfg.Allocator = memory.DefaultAllocator
	}
	return &IPCWriter{
		allocator:   cfg.Allocator,
		compression: cfg.Compression,
	}, nil
}

func (w *IPCWriter) writerOptions(schema *arrow.Schema) []ipc.Option {
	opts := []ipc.Option{ipc.WithSchema(schema), ipc.WithAllocator(w.allocator)}
	switch w.compression {
	case CompressionLZ4:
		opts = append(opts, ipc.WithLZ4())
	case CompressionZstd:
		opts = append(opts, ipc.WithZstd())
	}
	return opts
}

// SerializeToIPC serializes an Arrow Record to IPC bytes.
func (w *IPCWriter) SerializeToIPC(record arrow.Record) ([]byte, error) {
	return w.SerializeMultipleToIPC([]arrow.Record{record})
}

// DeserializeFromIPC deserializes the first record of IPC bytes.
func (w *IPCWriter) DeserializeFromIPC(data []byte) (arrow.Record, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(w.allocator))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Release()

	if !reader.Next() {
		if reader.Err() != nil {
			return nil, reader.Err()
		}
		return nil, fmt.Errorf("no records in IPC data")
	}

	record := reader.Record()
	record.Retain() // Retain the record to prevent it from being released

	return record, nil
}

// SerializeMultipleToIPC serializes records sharing one schema to IPC bytes.
func (w *IPCWriter) SerializeMultipleToIPC(records []arrow.Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to serialize")
	}

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, w.writerOptions(records[0].Schema())...)
	defer writer.Close()

	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	return buf.Bytes(), nil
}

// DeserializeAllFromIPC deserializes IPC bytes to all Arrow Records.
func (w *IPCWriter) DeserializeAllFromIPC(data []byte) ([]arrow.Record, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(w.allocator))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Release()

	var records []arrow.Record
	for reader.Next() {
		record := reader.Record()
		record.Retain()
		records = append(records, record)
	}

	if reader.Err() != nil {
		// Release any records we've already retained
		for _, r := range records {
			r.Release()
		}
		return nil, reader.Err()
	}

	return records, nil
}

// SerializeArray writes one encoded message as a single column record whose
// schema is field. The field carries the names a reader needs to decode it.
func (w *IPCWriter) SerializeArray(field arrow.Field, arr arrow.Array) ([]byte, error) {
	return w.SerializeArrays(field, []arrow.Array{arr})
}

// SerializeArrays writes several messages of the same field, one record each.
func (w *IPCWriter) SerializeArrays(field arrow.Field, arrs []arrow.Array) ([]byte, error) {
	schema := arrow.NewSchema([]arrow.Field{field}, nil)

	records := make([]arrow.Record, 0, len(arrs))
	defer func() {
		for _, r := range records {
			r.Release()
		}
	}()

	for i, arr := range arrs {
		if !arrow.TypeEqual(field.Type, arr.DataType()) {
			return nil, errors.New(errors.PhaseIPC, errors.KindTypeMismatch).
				Path(field.Name).
				ArrowType(arr.DataType().String()).
				Detail("message %d does not match field type %s", i, field.Type).
				Build()
		}
		records = append(records, array.NewRecord(schema, []arrow.Array{arr}, int64(arr.Len())))
	}
	if len(records) == 0 {
		return w.emptyStream(schema)
	}
	return w.SerializeMultipleToIPC(records)
}

// emptyStream writes a stream holding only schema.
func (w *IPCWriter) emptyStream(schema *arrow.Schema) ([]byte, error) {
	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, w.writerOptions(schema)...)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeArray reads the first message written by SerializeArray. The
// returned array is owned by the caller.
func (w *IPCWriter) DeserializeArray(data []byte) (arrow.Field, arrow.Array, error) {
	record, err := w.DeserializeFromIPC(data)
	if err != nil {
		return arrow.Field{}, nil, err
	}
	defer record.Release()

	return messageColumn(record)
}

// DeserializeArrays reads every message written by SerializeArrays.
func (w *IPCWriter) DeserializeArrays(data []byte) (arrow.Field, []arrow.Array, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(w.allocator))
	if err != nil {
		return arrow.Field{}, nil, fmt.Errorf("failed to create reader: %w", err)
	}
	schema := reader.Schema()
	reader.Release()
	if schema.NumFields() != 1 {
		return arrow.Field{}, nil, errors.SchemaMismatch(errors.PhaseIPC,
			"expected 1 column, got %d", schema.NumFields())
	}
	field := schema.Field(0)

	records, err := w.DeserializeAllFromIPC(data)
	if err != nil {
		return arrow.Field{}, nil, err
	}
	defer func() {
		for _, r := range records {
			r.Release()
		}
	}()

	arrs := make([]arrow.Array, 0, len(records))
	for _, record := range records {
		_, arr, err := messageColumn(record)
		if err != nil {
			for _, a := range arrs {
				a.Release()
			}
			return arrow.Field{}, nil, err
		}
		arrs = append(arrs, arr)
	}
	return field, arrs, nil
}

func messageColumn(record arrow.Record) (arrow.Field, arrow.Array, error) {
	if record.NumCols() != 1 {
		return arrow.Field{}, nil, errors.SchemaMismatch(errors.PhaseIPC,
			"expected 1 column, got %d", record.NumCols())
	}
	col := record.Column(0)
	col.Retain()
	return record.Schema().Field(0), col, nil
}
