package bench

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor is a lossless byte compressor used to measure
// compressed-payload ratios. Implementations must satisfy
// Decompress(Compress(b)) == b.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// DefaultCompressors returns the comparison set: gzip, zstd, snappy and
// lz4.
func DefaultCompressors() ([]Compressor, error) {
	zstdCompressor, err := NewZstdCompressor()
	if err != nil {
		return nil, err
	}
	return []Compressor{
		NewGzipCompressor(),
		zstdCompressor,
		NewSnappyCompressor(),
		NewLZ4Compressor(),
	}, nil
}

// gzip

type gzipCompressor struct{}

// NewGzipCompressor creates a gzip compressor at the default level.
func NewGzipCompressor() Compressor { return &gzipCompressor{} }

func (c *gzipCompressor) Name() string { return "gzip" }

func (c *gzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *gzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// zstd

type zstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstdCompressor creates a zstd compressor with a shared
// encoder/decoder pair (EncodeAll/DecodeAll are safe for concurrent
// use).
func NewZstdCompressor() (Compressor, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &zstdCompressor{enc: enc, dec: dec}, nil
}

func (c *zstdCompressor) Name() string { return "zstd" }

func (c *zstdCompressor) Compress(data []byte) ([]byte, error) {
	return c.enc.EncodeAll(data, nil), nil
}

func (c *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	return c.dec.DecodeAll(data, nil)
}

// snappy

type snappyCompressor struct{}

// NewSnappyCompressor creates a snappy block-format compressor.
func NewSnappyCompressor() Compressor { return &snappyCompressor{} }

func (c *snappyCompressor) Name() string { return "snappy" }

func (c *snappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (c *snappyCompressor) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

// lz4

type lz4Compressor struct{}

// NewLZ4Compressor creates an lz4 frame-format compressor.
func NewLZ4Compressor() Compressor { return &lz4Compressor{} }

func (c *lz4Compressor) Name() string { return "lz4" }

func (c *lz4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *lz4Compressor) Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	return io.ReadAll(r)
}
