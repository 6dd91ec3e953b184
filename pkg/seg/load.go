package seg

import (
	"fmt"

	"dicomseg/pkg/dimension"
	"dicomseg/pkg/frame"
)

// Encoded is the stored form of a segmentation object: the frame byte
// sequence plus the metadata needed to interpret and index it.
type Encoded struct {
	Rows, Cols int

	Type               Type
	FractionalType     FractionalType
	MaxFractionalValue int

	// Encoding names the registered codec the frame items were encoded
	// with. Empty means the raw non-encapsulated scheme.
	Encoding string

	CoordinateSystem dimension.CoordinateSystem

	// SegmentDescriptions are the descriptors in segment number order,
	// numbered contiguously from 1.
	SegmentDescriptions []SegmentDescriptor

	// Frames are the per-frame metadata records in stored frame order.
	Frames []FrameInfo

	// SourceInstanceUIDs are the referenced source instance identifiers in
	// their fixed order. Frame source references must resolve against this
	// list.
	SourceInstanceUIDs []string

	// PixelData is the raw concatenated frame byte sequence for the
	// non-encapsulated scheme. FrameItems are the per-frame blobs for an
	// encapsulated encoding; exactly one of the two is set.
	PixelData  []byte
	FrameItems [][]byte
}

// FromEncoded reconstructs a segmentation object from its stored form.
// The frame lookup table is rebuilt in full and every frame source
// reference is checked against the known source instances.
//
// The reconstructed object answers all queries. Further AddSegments
// calls require explicit plane positions since the full source image
// metadata is not part of the stored form.
func FromEncoded(enc *Encoded) (*Segmentation, error) {
	if enc.Rows < 1 || enc.Cols < 1 {
		return nil, fmt.Errorf("%w: stored object must declare positive dimensions", ErrInvalidShape)
	}
	switch enc.Type {
	case Binary, Fractional:
	default:
		return nil, fmt.Errorf("%w: unknown segmentation type %q", ErrDescriptor, enc.Type)
	}
	fracType := enc.FractionalType
	if fracType == "" {
		fracType = Probability
	}
	maxFractional := enc.MaxFractionalValue
	if maxFractional == 0 {
		maxFractional = DefaultMaxFractionalValue
	}
	if maxFractional < 1 || maxFractional > 255 {
		return nil, fmt.Errorf(
			"%w: maximum fractional value %d must not exceed the image bit depth",
			ErrDescriptor, maxFractional)
	}

	encapsulated := enc.Encoding != ""
	if encapsulated {
		if _, err := frame.Lookup(enc.Encoding); err != nil {
			return nil, err
		}
		if len(enc.FrameItems) != len(enc.Frames) {
			return nil, fmt.Errorf("%w: %d frame items for %d frames",
				frame.ErrInvalidFrameSize, len(enc.FrameItems), len(enc.Frames))
		}
	}

	for i, d := range enc.SegmentDescriptions {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Number != i+1 {
			return nil, fmt.Errorf(
				"%w: descriptor %d is numbered %d", ErrSegmentNumbering, i, d.Number)
		}
	}
	for i, f := range enc.Frames {
		if f.SegmentNumber < 1 || f.SegmentNumber > len(enc.SegmentDescriptions) {
			return nil, fmt.Errorf("%w: frame %d references segment %d",
				ErrUnknownSegment, i+1, f.SegmentNumber)
		}
	}

	coord := enc.CoordinateSystem
	if coord == "" {
		coord = dimension.Patient
	}
	dimIndex, err := dimension.New(coord)
	if err != nil {
		return nil, err
	}

	s := &Segmentation{
		rows:          enc.Rows,
		cols:          enc.Cols,
		segType:       enc.Type,
		fracType:      fracType,
		maxFractional: maxFractional,
		encoding:      enc.Encoding,
		encapsulated:  encapsulated,
		sourceUIDs:    append([]string(nil), enc.SourceInstanceUIDs...),
		coord:         coord,
		dimIndex:      dimIndex,
		descriptors:   append([]SegmentDescriptor(nil), enc.SegmentDescriptions...),
		frames:        append([]FrameInfo(nil), enc.Frames...),
	}
	if encapsulated {
		s.frameItems = make([][]byte, len(enc.FrameItems))
		for i, item := range enc.FrameItems {
			s.frameItems[i] = append([]byte(nil), item...)
		}
	} else {
		expected := s.expectedPixelBytes(len(s.frames))
		if padded := expected + expected%2; len(enc.PixelData) != expected && len(enc.PixelData) != padded {
			return nil, fmt.Errorf("%w: got %d pixel data bytes, expected %d for %d frames",
				frame.ErrInvalidFrameSize, len(enc.PixelData), expected, len(s.frames))
		}
		s.pixelData = append([]byte(nil), enc.PixelData...)
	}

	lut, err := buildFrameLUT(s.frames, s.sourceUIDs)
	if err != nil {
		return nil, err
	}
	s.lut = lut
	s.locations = summariseLocations(s.frames)
	return s, nil
}
