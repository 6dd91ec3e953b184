package frame

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ZstdEncoding is the registry name of the built-in zstd codec.
const ZstdEncoding = "zstd"

// zstdCodec compresses the raw byte representation of a plane with zstd.
// It serves as the reference implementation of the external-codec contract
// for encapsulated frame encoding.
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func mustNewZstdCodec() *zstdCodec {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return &zstdCodec{enc: enc, dec: dec}
}

func (c *zstdCodec) Name() string {
	return ZstdEncoding
}

func (c *zstdCodec) Encode(samples []uint16, rows, cols int, f Format) ([]byte, error) {
	raw, err := encodeRaw(samples, f)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, nil), nil
}

func (c *zstdCodec) Decode(data []byte, rows, cols int, f Format) ([]uint16, error) {
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return decodeRaw(raw, rows*cols*f.SamplesPerPixel, f)
}

func init() {
	Register(mustNewZstdCodec())
}
