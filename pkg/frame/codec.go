// Package frame converts 2D pixel sample planes to and from their stored
// byte representation. Uncompressed planes are flattened row-major and
// either bit packed (single-bit samples) or written one element per
// allocated unit in little-endian byte order. Compressed planes are
// delegated to a named codec registered with this package.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"dicomseg/internal/bitpack"
)

// Photometric interpretation values relevant to segmentation objects and
// to the color special case handled by external codecs.
const (
	PhotometricMonochrome2 = "MONOCHROME2"
	PhotometricRGB         = "RGB"
	PhotometricYBRFull422  = "YBR_FULL_422"
)

// Pixel representation values.
const (
	RepresentationUnsigned       = 0
	RepresentationTwosComplement = 1
)

// Planar configuration values. PlanarUnspecified marks a format without a
// planar configuration, which is only legal for single-sample pixels.
const (
	PlanarUnspecified = -1
	PlanarInterleaved = 0
	PlanarSeparate    = 1
)

var (
	// ErrUnsupportedEncoding indicates an encoding scheme or scheme/format
	// combination this package cannot handle.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrInvalidFrameSize indicates a plane whose sample count does not fit
	// the chosen encoding, e.g. bit packing a plane that is not a multiple
	// of 8 samples.
	ErrInvalidFrameSize = errors.New("invalid frame size")

	// ErrArity indicates a multi-plane array passed to an encoding that
	// operates on exactly one plane at a time.
	ErrArity = errors.New("invalid number of planes")
)

// Format describes how pixel samples of a frame are laid out and
// interpreted.
type Format struct {
	// BitsAllocated is the number of bits allocated per sample (1, 8 or 16).
	BitsAllocated int

	// BitsStored is the number of bits actually used per sample.
	BitsStored int

	// SamplesPerPixel is the number of (color) samples per pixel.
	SamplesPerPixel int

	// PhotometricInterpretation describes the intended interpretation of
	// the samples, e.g. MONOCHROME2 or RGB.
	PhotometricInterpretation string

	// PixelRepresentation is RepresentationUnsigned or
	// RepresentationTwosComplement.
	PixelRepresentation int

	// PlanarConfiguration describes whether color samples are interleaved
	// by pixel or stored plane by plane. Required when SamplesPerPixel > 1.
	PlanarConfiguration int
}

// Validate checks the internal consistency of the format.
func (f Format) Validate() error {
	if f.BitsAllocated != 1 && f.BitsAllocated != 8 && f.BitsAllocated != 16 {
		return fmt.Errorf("%w: bits allocated must be 1, 8 or 16, got %d",
			ErrUnsupportedEncoding, f.BitsAllocated)
	}
	if f.BitsStored <= 0 || f.BitsStored > f.BitsAllocated {
		return fmt.Errorf("%w: bits stored %d exceeds bits allocated %d",
			ErrUnsupportedEncoding, f.BitsStored, f.BitsAllocated)
	}
	if f.SamplesPerPixel < 1 {
		return fmt.Errorf("%w: samples per pixel must be positive, got %d",
			ErrUnsupportedEncoding, f.SamplesPerPixel)
	}
	if f.SamplesPerPixel > 1 && f.PlanarConfiguration == PlanarUnspecified {
		return fmt.Errorf("%w: planar configuration is required for color frames",
			ErrUnsupportedEncoding)
	}
	return nil
}

// bytesPerSample returns the allocated byte width of one sample for
// byte-aligned formats.
func (f Format) bytesPerSample() int {
	return f.BitsAllocated / 8
}

// EncodeFrames encodes one or more sample planes into a byte string.
//
// The samples slice holds planes*rows*cols*SamplesPerPixel values in
// row-major order. An empty encoding name selects the raw scheme: samples
// are flattened and bit packed when BitsAllocated is 1, otherwise written
// one element per allocated unit. Any other encoding name selects the
// registered codec of that name, which accepts exactly one plane per call.
func EncodeFrames(samples []uint16, planes, rows, cols int, f Format, encoding string) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	want := planes * rows * cols * f.SamplesPerPixel
	if planes < 1 || len(samples) != want {
		return nil, fmt.Errorf("%w: got %d samples for %d plane(s) of %dx%dx%d",
			ErrInvalidFrameSize, len(samples), planes, rows, cols, f.SamplesPerPixel)
	}
	// A single bit-packed plane pads its final byte with zero bits. Several
	// planes share one bit stream, so each must end on a byte boundary or
	// the planes cannot be concatenated independently.
	if f.BitsAllocated == 1 && planes > 1 && (rows*cols*f.SamplesPerPixel)%8 != 0 {
		return nil, fmt.Errorf("%w: %dx%d planes cannot be bit packed frame by frame",
			ErrInvalidFrameSize, rows, cols)
	}

	if encoding == "" {
		return encodeRaw(samples, f)
	}

	codec, err := Lookup(encoding)
	if err != nil {
		return nil, err
	}
	if planes != 1 {
		return nil, fmt.Errorf("%w: codec %q encodes a single plane per call, got %d planes",
			ErrArity, encoding, planes)
	}
	return codec.Encode(samples, rows, cols, f)
}

// DecodeFrame decodes the byte string of a single frame back into its
// sample values. It is the exact inverse of EncodeFrames applied to one
// plane.
//
// When the stored photometric interpretation is RGB but the codec natively
// assumes a luma/chroma transform, decoding is routed through the codec's
// transform-free path so colors are not transformed twice. This is a
// codec-specific workaround, not a general rule.
func DecodeFrame(data []byte, rows, cols int, f Format, encoding string) ([]uint16, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if encoding == "" {
		return decodeRaw(data, rows*cols*f.SamplesPerPixel, f)
	}

	codec, err := Lookup(encoding)
	if err != nil {
		return nil, err
	}
	if f.PhotometricInterpretation == PhotometricRGB {
		if rd, ok := codec.(ChromaTransformDecoder); ok && rd.AssumesChromaTransform() {
			return rd.DecodeWithoutColorTransform(data, rows, cols, f)
		}
	}
	return codec.Decode(data, rows, cols, f)
}

func encodeRaw(samples []uint16, f Format) ([]byte, error) {
	if f.BitsAllocated == 1 {
		if rem := len(samples) % 8; rem != 0 {
			samples = append(append([]uint16{}, samples...), make([]uint16, 8-rem)...)
		}
		packed, err := bitpack.Pack(samples)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrameSize, err)
		}
		return packed, nil
	}
	width := f.bytesPerSample()
	data := make([]byte, len(samples)*width)
	for i, s := range samples {
		if width == 1 {
			data[i] = byte(s)
		} else {
			binary.LittleEndian.PutUint16(data[i*2:], s)
		}
	}
	return data, nil
}

func decodeRaw(data []byte, want int, f Format) ([]uint16, error) {
	if f.BitsAllocated == 1 {
		packed := (want + 7) / 8
		if len(data) != packed {
			return nil, fmt.Errorf("%w: got %d bytes, expected %d bit-packed bytes",
				ErrInvalidFrameSize, len(data), packed)
		}
		return bitpack.Unpack(data)[:want], nil
	}
	width := f.bytesPerSample()
	if len(data) != want*width {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d",
			ErrInvalidFrameSize, len(data), want*width)
	}
	samples := make([]uint16, want)
	for i := range samples {
		if width == 1 {
			samples[i] = uint16(data[i])
		} else {
			samples[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
	}
	return samples, nil
}
