// Package seg implements the multi-frame raster segmentation object: it
// encodes stacks of per-segment mask planes into a packed frame sequence,
// maintains per-frame metadata and a derived frame lookup table, and
// reconstructs dense pixel arrays for arbitrary segment and source-frame
// selections.
//
// A Segmentation is exclusively owned by its creator. Concurrent
// AddSegments calls are not supported and must be serialized by the
// caller; read-only queries may run concurrently with each other but not
// with a mutation.
package seg

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/floats"

	"dicomseg/internal/bitpack"
	"dicomseg/pkg/dimension"
	"dicomseg/pkg/frame"
)

// Type distinguishes binary masks from fractional occupancy or
// probability masks. It determines the allocated bit depth of the stored
// frames.
type Type string

const (
	Binary     Type = "BINARY"
	Fractional Type = "FRACTIONAL"
)

// FractionalType states how fractional sample values are to be
// interpreted.
type FractionalType string

const (
	Probability FractionalType = "PROBABILITY"
	Occupancy   FractionalType = "OCCUPANCY"
)

// DefaultMaxFractionalValue is the stored sample value representing a
// fraction of 1.
const DefaultMaxFractionalValue = 255

// Params configures a new segmentation object.
type Params struct {
	// SourceImages are the images the segmentation is derived from: either
	// one multi-frame image or a series of single-frame images from the
	// same study and series with identical dimensions.
	SourceImages []SourceImage

	// Type selects binary or fractional segmentation.
	Type Type

	// FractionalType defaults to Probability.
	FractionalType FractionalType

	// MaxFractionalValue is the stored value representing a fraction of 1.
	// Zero defaults to DefaultMaxFractionalValue. Must not exceed 255.
	MaxFractionalValue int

	// Encoding names a registered frame codec for encapsulated per-frame
	// encoding. Empty selects the raw scheme. Binary segmentations are
	// incompatible with encapsulated encoding since their frames are bit
	// packed across byte boundaries.
	Encoding string

	// PlaneOrientation optionally overrides the plane orientation
	// inherited from the source images (six direction cosines).
	PlaneOrientation []float64

	// PixelMeasures optionally overrides the pixel measures inherited from
	// the source images.
	PixelMeasures *PixelMeasures
}

// FrameInfo is the per-frame metadata record of one stored plane, in
// append order.
type FrameInfo struct {
	// SegmentNumber is the segment the frame belongs to.
	SegmentNumber int

	// DimensionIndexValues are the 1-based per-axis index values of the
	// frame, ordered per the dimension index (segment number first).
	DimensionIndexValues []int

	// Position is the spatial position of the plane.
	Position dimension.PlanePosition

	// HasSource reports whether a single source frame reference could be
	// determined for this frame. When false the remaining source fields
	// are meaningless.
	HasSource bool

	// SourceSOPInstanceUID and SourceSOPClassUID reference the source
	// image the frame was derived from. SourceFrameNumber is the 1-based
	// frame number within a multi-frame source, or 0 for single-frame
	// sources.
	SourceSOPInstanceUID string
	SourceSOPClassUID    string
	SourceFrameNumber    int

	// LocationsPreserved reports whether the frame occupies the exact
	// spatial location of its source plane. Loaded objects may leave this
	// unknown.
	LocationsPreserved PreservationState
}

// PreservationState records whether a frame's spatial location matches
// that of its source plane.
type PreservationState int

const (
	PreservationUnknown PreservationState = iota
	PreservationYes
	PreservationNo
)

func (p PreservationState) String() string {
	switch p {
	case PreservationYes:
		return "YES"
	case PreservationNo:
		return "NO"
	default:
		return "UNKNOWN"
	}
}

// locationsState summarises spatial-locations-preserved across all frames.
type locationsState int

const (
	locationsUnknown locationsState = iota
	locationsYes
	locationsNo
)

// Segmentation is a multi-frame segmentation object under construction or
// loaded from stored frame metadata.
type Segmentation struct {
	rows, cols    int
	segType       Type
	fracType      FractionalType
	maxFractional int
	encoding      string
	encapsulated  bool

	sources    []SourceImage
	sourceUIDs []string
	coord      dimension.CoordinateSystem
	dimIndex   *dimension.Index

	orientation    []float64
	srcOrientation []float64
	measures       PixelMeasures

	descriptors []SegmentDescriptor
	frames      []FrameInfo

	// pixelData holds the raw concatenated frame bytes for non-encapsulated
	// encoding (including the trailing pad byte keeping its length even).
	// frameItems holds the per-frame encoded blobs for encapsulated
	// encoding.
	pixelData  []byte
	frameItems [][]byte

	lut       *frameLUT
	locations locationsState
}

// New creates an empty segmentation object derived from the given source
// images. Segments are added with AddSegments.
func New(params *Params) (*Segmentation, error) {
	if len(params.SourceImages) == 0 {
		return nil, fmt.Errorf("%w: at least one source image is required", ErrSourceImage)
	}
	first := params.SourceImages[0]
	for _, img := range params.SourceImages[1:] {
		if img.StudyInstanceUID != first.StudyInstanceUID ||
			img.SeriesInstanceUID != first.SeriesInstanceUID ||
			img.Rows != first.Rows || img.Columns != first.Columns {
			return nil, fmt.Errorf(
				"%w: source images must share study, series and dimensions", ErrSourceImage)
		}
	}
	if first.multiframe() && len(params.SourceImages) > 1 {
		return nil, fmt.Errorf(
			"%w: only one source image may be provided when images are multi-frame", ErrSourceImage)
	}
	if first.Rows < 1 || first.Columns < 1 {
		return nil, fmt.Errorf("%w: source images must declare positive dimensions", ErrSourceImage)
	}

	switch params.Type {
	case Binary, Fractional:
	default:
		return nil, fmt.Errorf("%w: unknown segmentation type %q", ErrDescriptor, params.Type)
	}
	fracType := params.FractionalType
	if fracType == "" {
		fracType = Probability
	}
	switch fracType {
	case Probability, Occupancy:
	default:
		return nil, fmt.Errorf("%w: unknown fractional type %q", ErrDescriptor, fracType)
	}
	maxFractional := params.MaxFractionalValue
	if maxFractional == 0 {
		maxFractional = DefaultMaxFractionalValue
	}
	if maxFractional < 1 || maxFractional > 255 {
		return nil, fmt.Errorf(
			"%w: maximum fractional value %d must not exceed the image bit depth",
			ErrDescriptor, maxFractional)
	}

	encapsulated := params.Encoding != ""
	if encapsulated {
		if _, err := frame.Lookup(params.Encoding); err != nil {
			return nil, err
		}
		if params.Type == Binary {
			return nil, fmt.Errorf(
				"%w: encoding %q is not compatible with the BINARY segmentation type",
				frame.ErrUnsupportedEncoding, params.Encoding)
		}
	}

	dimIndex, err := dimension.New(first.coordinateSystem())
	if err != nil {
		return nil, err
	}

	orientation := params.PlaneOrientation
	if orientation == nil {
		orientation = first.Orientation
	}
	measures := measuresFromSource(first)
	if params.PixelMeasures != nil {
		measures = *params.PixelMeasures
	}

	sourceUIDs := make([]string, len(params.SourceImages))
	for i, img := range params.SourceImages {
		sourceUIDs[i] = img.SOPInstanceUID
	}

	s := &Segmentation{
		rows:           first.Rows,
		cols:           first.Columns,
		segType:        params.Type,
		fracType:       fracType,
		maxFractional:  maxFractional,
		encoding:       params.Encoding,
		encapsulated:   encapsulated,
		sources:        params.SourceImages,
		sourceUIDs:     sourceUIDs,
		coord:          first.coordinateSystem(),
		dimIndex:       dimIndex,
		orientation:    orientation,
		srcOrientation: first.Orientation,
		measures:       measures,
		locations:      locationsUnknown,
	}
	s.lut = emptyLUT(sourceUIDs)
	return s, nil
}

// format returns the pixel format of the stored frames.
func (s *Segmentation) format() frame.Format {
	bits := 8
	if s.segType == Binary {
		bits = 1
	}
	return frame.Format{
		BitsAllocated:             bits,
		BitsStored:                bits,
		SamplesPerPixel:           1,
		PhotometricInterpretation: frame.PhotometricMonochrome2,
		PixelRepresentation:       frame.RepresentationUnsigned,
		PlanarConfiguration:       frame.PlanarUnspecified,
	}
}

// Rows returns the fixed plane height of the object.
func (s *Segmentation) Rows() int { return s.rows }

// Cols returns the fixed plane width of the object.
func (s *Segmentation) Cols() int { return s.cols }

// SegmentationType returns the object's segmentation type.
func (s *Segmentation) SegmentationType() Type { return s.segType }

// SegmentationFractionalType returns how fractional values are
// interpreted. It is meaningful for fractional objects only.
func (s *Segmentation) SegmentationFractionalType() FractionalType { return s.fracType }

// MaxFractionalValue returns the stored sample value representing a
// fraction of 1.
func (s *Segmentation) MaxFractionalValue() int { return s.maxFractional }

// CoordinateSystem returns the coordinate system fixed at creation.
func (s *Segmentation) CoordinateSystem() dimension.CoordinateSystem { return s.coord }

// DimensionIndex returns the dimension index of the object.
func (s *Segmentation) DimensionIndex() *dimension.Index { return s.dimIndex }

// NumberOfSegments returns the number of segments.
func (s *Segmentation) NumberOfSegments() int { return len(s.descriptors) }

// NumberOfFrames returns the number of stored frames.
func (s *Segmentation) NumberOfFrames() int { return len(s.frames) }

// SegmentDescriptions returns the descriptors in segment number order.
func (s *Segmentation) SegmentDescriptions() []SegmentDescriptor {
	out := make([]SegmentDescriptor, len(s.descriptors))
	copy(out, s.descriptors)
	return out
}

// DescriptorFor returns the descriptor of the given segment number.
func (s *Segmentation) DescriptorFor(segmentNumber int) (SegmentDescriptor, error) {
	if segmentNumber < 1 || segmentNumber > len(s.descriptors) {
		return SegmentDescriptor{}, fmt.Errorf("%w: %d", ErrUnknownSegment, segmentNumber)
	}
	return s.descriptors[segmentNumber-1], nil
}

// SearchSegments returns the numbers of all segments matching the filter,
// in segment number order.
func (s *Segmentation) SearchSegments(filter SegmentFilter) []int {
	var matches []int
	for _, d := range s.descriptors {
		if filter.matches(d) {
			matches = append(matches, d.Number)
		}
	}
	return matches
}

// AllTrackingIDs returns the distinct tracking identifiers referenced by
// the segment descriptors.
func (s *Segmentation) AllTrackingIDs() []string {
	return distinctStrings(s.descriptors, func(d SegmentDescriptor) string { return d.TrackingID })
}

// AllTrackingUIDs returns the distinct tracking unique identifiers
// referenced by the segment descriptors.
func (s *Segmentation) AllTrackingUIDs() []string {
	return distinctStrings(s.descriptors, func(d SegmentDescriptor) string { return d.TrackingUID })
}

// AllPropertyCategories returns the distinct property category codes of
// the segment descriptors, in first-appearance order.
func (s *Segmentation) AllPropertyCategories() []Code {
	return distinctCodes(s.descriptors, func(d SegmentDescriptor) Code { return d.PropertyCategory })
}

// AllPropertyTypes returns the distinct property type codes of the
// segment descriptors, in first-appearance order.
func (s *Segmentation) AllPropertyTypes() []Code {
	return distinctCodes(s.descriptors, func(d SegmentDescriptor) Code { return d.PropertyType })
}

func distinctCodes(descs []SegmentDescriptor, get func(SegmentDescriptor) Code) []Code {
	var out []Code
	for _, d := range descs {
		c := get(d)
		if c.IsZero() {
			continue
		}
		seen := false
		for _, have := range out {
			if have.Equal(c) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, c)
		}
	}
	return out
}

func distinctStrings(descs []SegmentDescriptor, get func(SegmentDescriptor) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range descs {
		v := get(d)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// PerFrameInfo returns the per-frame metadata records in append order,
// which matches stored frame order exactly.
func (s *Segmentation) PerFrameInfo() []FrameInfo {
	out := make([]FrameInfo, len(s.frames))
	copy(out, s.frames)
	return out
}

// SourceInstanceUIDs returns the known source instance identifiers in
// their fixed order.
func (s *Segmentation) SourceInstanceUIDs() []string {
	out := make([]string, len(s.sourceUIDs))
	copy(out, s.sourceUIDs)
	return out
}

// PixelData returns the finalized raw frame byte sequence for
// non-encapsulated encoding, including the trailing pad byte if present.
func (s *Segmentation) PixelData() []byte {
	out := make([]byte, len(s.pixelData))
	copy(out, s.pixelData)
	return out
}

// FrameItems returns the encapsulated per-frame byte blobs in stored
// frame order, or nil for non-encapsulated encoding.
func (s *Segmentation) FrameItems() [][]byte {
	if s.frameItems == nil {
		return nil
	}
	out := make([][]byte, len(s.frameItems))
	for i, item := range s.frameItems {
		out[i] = append([]byte(nil), item...)
	}
	return out
}

// AddSegments adds one or more segments to the segmentation. The call is
// all-or-nothing: on error the object is left unchanged. After a
// successful call the frame lookup table is rebuilt in full.
//
// Descriptor numbers must be contiguous ascending by one and continue
// from the highest existing segment number (or start at 1). Plane
// positions default to the per-plane positions of the source images when
// not supplied.
func (s *Segmentation) AddSegments(
	arr *PixelArray,
	descriptors []SegmentDescriptor,
	positions []dimension.PlanePosition,
) error {
	if arr == nil {
		return fmt.Errorf("%w: pixel array is nil", ErrInvalidShape)
	}
	if arr.Rows() != s.rows || arr.Cols() != s.cols {
		return fmt.Errorf("%w: got %dx%d planes, segmentation is %dx%d",
			ErrDimensionMismatch, arr.Rows(), arr.Cols(), s.rows, s.cols)
	}

	if len(descriptors) == 0 {
		return fmt.Errorf("%w: at least one segment descriptor is required", ErrSegmentNumbering)
	}
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	next := len(s.descriptors) + 1
	if descriptors[0].Number != next {
		return fmt.Errorf(
			"%w: expected the first descriptor to be numbered %d, got %d",
			ErrSegmentNumbering, next, descriptors[0].Number)
	}
	for i := 1; i < len(descriptors); i++ {
		if descriptors[i].Number != descriptors[i-1].Number+1 {
			return fmt.Errorf(
				"%w: descriptors must be sorted by segment number and increase by 1 (found %d after %d)",
				ErrSegmentNumbering, descriptors[i].Number, descriptors[i-1].Number)
		}
	}
	for _, d := range descriptors {
		if d.Number <= len(s.descriptors) {
			return fmt.Errorf("%w: segment %d", ErrDuplicateSegment, d.Number)
		}
	}

	targets, maxValue, err := s.classify(arr, descriptors)
	if err != nil {
		return err
	}

	positions, err = s.resolvePositions(arr, positions)
	if err != nil {
		return err
	}
	planeSort, err := s.dimIndex.PlaneOrder(positions)
	if err != nil {
		return err
	}
	preserved := s.spatialLocationsPreserved(positions)

	// Stage all new frames and their encoded bytes before committing.
	var (
		newFrames    []FrameInfo
		newItems     [][]byte
		framewiseBuf []byte
		fullSamples  []uint16
	)
	framewise := s.framewiseEncoding()
	if !framewise && !s.encapsulated && len(s.frames) > 0 {
		fullSamples = s.allStoredSamples()
	}

	for di, desc := range descriptors {
		target := targets[di]
		var retained []int
		for _, j := range planeSort.Order {
			if arr.planeEmpty(j, target) {
				log.Printf("skip empty plane %d of segment #%d", j, desc.Number)
				continue
			}
			retained = append(retained, j)

			indexValues := []int{desc.Number}
			for axis := 0; axis < s.dimIndex.NumAxes(); axis++ {
				rank, err := planeSort.Rank(j, axis)
				if err != nil {
					return fmt.Errorf("could not determine position of plane %d: %w", j, err)
				}
				indexValues = append(indexValues, rank)
			}

			info := FrameInfo{
				SegmentNumber:        desc.Number,
				DimensionIndexValues: indexValues,
				Position:             positions[j],
			}
			if preserved {
				info.HasSource = true
				info.LocationsPreserved = PreservationYes
				if s.sources[0].multiframe() {
					info.SourceSOPInstanceUID = s.sources[0].SOPInstanceUID
					info.SourceSOPClassUID = s.sources[0].SOPClassUID
					info.SourceFrameNumber = j + 1
				} else {
					info.SourceSOPInstanceUID = s.sources[j].SOPInstanceUID
					info.SourceSOPClassUID = s.sources[j].SOPClassUID
				}
			}
			newFrames = append(newFrames, info)
		}

		for _, j := range retained {
			samples := arr.planeSamples(j, target, maxValue)
			switch {
			case s.encapsulated:
				item, err := frame.EncodeFrames(samples, 1, s.rows, s.cols, s.format(), s.encoding)
				if err != nil {
					return err
				}
				newItems = append(newItems, item)
			case framewise:
				data, err := frame.EncodeFrames(samples, 1, s.rows, s.cols, s.format(), "")
				if err != nil {
					return err
				}
				framewiseBuf = append(framewiseBuf, data...)
			default:
				fullSamples = append(fullSamples, samples...)
			}
		}
	}
	if !preserved && len(newFrames) > 0 {
		log.Printf("spatial locations not preserved")
	}

	// Assemble the new byte sequence.
	var (
		pixelData  []byte
		frameItems [][]byte
	)
	switch {
	case s.encapsulated:
		frameItems = append(append([][]byte(nil), s.frameItems...), newItems...)
	case framewise:
		// The stored buffer keeps an even length with a trailing pad byte.
		// Remove it before appending and re-add it after.
		existing := s.pixelData
		if expected := s.expectedPixelBytes(len(s.frames)); len(existing) == expected+1 {
			existing = existing[:expected]
		}
		pixelData = append(append([]byte(nil), existing...), framewiseBuf...)
	default:
		packed, err := bitpack.Pack(padSamples(fullSamples))
		if err != nil {
			return fmt.Errorf("%w: %v", frame.ErrInvalidFrameSize, err)
		}
		pixelData = packed
	}
	if !s.encapsulated && len(pixelData)%2 == 1 {
		pixelData = append(pixelData, 0x00)
	}

	allFrames := append(append([]FrameInfo(nil), s.frames...), newFrames...)
	lut, err := buildFrameLUT(allFrames, s.sourceUIDs)
	if err != nil {
		return err
	}

	// Commit.
	s.descriptors = append(s.descriptors, descriptors...)
	s.frames = allFrames
	s.pixelData = pixelData
	s.frameItems = frameItems
	s.lut = lut
	s.locations = summariseLocations(allFrames)
	return nil
}

// classify resolves the per-descriptor classification targets for the
// pixel array and the value a full fraction maps to.
func (s *Segmentation) classify(arr *PixelArray, descriptors []SegmentDescriptor) ([]uint16, int, error) {
	described := make(map[uint16]bool, len(descriptors))
	for _, d := range descriptors {
		described[uint16(d.Number)] = true
	}

	switch arr.Kind() {
	case KindBoolean, KindLabel:
		present := arr.distinctPositiveLabels()
		// A binary mask with a single descriptor encodes that descriptor's
		// segment regardless of its number.
		if len(present) == 1 && present[0] == 1 && len(descriptors) == 1 {
			targets := []uint16{1}
			return targets, 1, nil
		}
		var undescribed []uint16
		for _, v := range present {
			if !described[v] {
				undescribed = append(undescribed, v)
			}
		}
		if len(undescribed) > 0 {
			return nil, 0, fmt.Errorf("%w: values %v lack descriptions",
				ErrUndescribedSegment, undescribed)
		}
		targets := make([]uint16, len(descriptors))
		for i, d := range descriptors {
			targets[i] = uint16(d.Number)
		}
		return targets, 1, nil

	case KindFraction:
		min, max, nonBinary := arr.fractionBounds()
		if min < 0 || max > 1 {
			return nil, 0, fmt.Errorf("%w: found values in [%g, %g]", ErrFractionRange, min, max)
		}
		if len(descriptors) != 1 {
			return nil, 0, fmt.Errorf("%w: got %d descriptors", ErrTooManyDescriptors, len(descriptors))
		}
		maxValue := s.maxFractional
		if s.segType == Binary {
			if nonBinary {
				return nil, 0, ErrNonBinaryFraction
			}
			maxValue = 1
		}
		return []uint16{0}, maxValue, nil

	default:
		return nil, 0, fmt.Errorf("%w: unsupported pixel kind %v", ErrInvalidShape, arr.Kind())
	}
}

// resolvePositions applies the default plane positions derived from the
// source images when none are supplied.
func (s *Segmentation) resolvePositions(
	arr *PixelArray,
	positions []dimension.PlanePosition,
) ([]dimension.PlanePosition, error) {
	if positions == nil {
		source, err := sourcePlanePositions(s.sources)
		if err != nil {
			return nil, err
		}
		if arr.Planes() != len(source) {
			return nil, fmt.Errorf(
				"%w: pixel array has %d planes, source images provide %d positions",
				ErrPlaneCountMismatch, arr.Planes(), len(source))
		}
		return source, nil
	}
	if arr.Planes() != len(positions) {
		return nil, fmt.Errorf("%w: pixel array has %d planes, got %d positions",
			ErrPlaneCountMismatch, arr.Planes(), len(positions))
	}
	return positions, nil
}

// spatialLocationsPreserved reports whether every plane being added
// occupies the exact position and orientation of its source plane. A
// single mismatch anywhere degrades the whole call.
func (s *Segmentation) spatialLocationsPreserved(positions []dimension.PlanePosition) bool {
	source, err := sourcePlanePositions(s.sources)
	if err != nil || len(positions) != len(source) {
		return false
	}
	for i := range positions {
		if !positions[i].Equal(source[i]) {
			return false
		}
	}
	if len(s.orientation) != len(s.srcOrientation) {
		return false
	}
	return floats.Equal(s.orientation, s.srcOrientation)
}

// framewiseEncoding reports whether newly encoded frames can be appended
// directly to the stored byte sequence. This requires a non-encapsulated
// encoding and byte-aligned frames; binary frames whose size is not a
// multiple of 8 samples must be repacked across frame boundaries instead.
func (s *Segmentation) framewiseEncoding() bool {
	if s.encapsulated {
		return false
	}
	if s.segType == Fractional {
		return true
	}
	if (s.rows*s.cols)%8 == 0 {
		return true
	}
	log.Printf("pixel data needs to be re-encoded for binary bit packing; " +
		"consider the FRACTIONAL segmentation type")
	return false
}

// expectedPixelBytes returns the unpadded byte length of the stored
// sequence holding the given number of frames.
func (s *Segmentation) expectedPixelBytes(frames int) int {
	samples := frames * s.rows * s.cols
	if s.segType == Binary {
		return (samples + 7) / 8
	}
	return samples
}

// allStoredSamples decodes the full stored sequence into a flat sample
// buffer, dropping pad bits and the trailing pad byte.
func (s *Segmentation) allStoredSamples() []uint16 {
	total := len(s.frames) * s.rows * s.cols
	data := s.pixelData
	if expected := s.expectedPixelBytes(len(s.frames)); len(data) == expected+1 {
		data = data[:expected]
	}
	if s.segType == Binary {
		return bitpack.Unpack(data)[:total]
	}
	samples := make([]uint16, total)
	for i := range samples {
		samples[i] = uint16(data[i])
	}
	return samples
}

// padSamples pads a binary sample buffer with zeros to a multiple of 8
// so it can be bit packed.
func padSamples(samples []uint16) []uint16 {
	if rem := len(samples) % 8; rem != 0 {
		samples = append(samples, make([]uint16, 8-rem)...)
	}
	return samples
}

// FramePlane decodes the samples of the stored frame with the given
// 1-based number.
func (s *Segmentation) FramePlane(frameNumber int) ([]uint16, error) {
	if frameNumber < 1 || frameNumber > len(s.frames) {
		return nil, fmt.Errorf("%w: frame %d of %d", ErrFrameRange, frameNumber, len(s.frames))
	}
	if s.encapsulated {
		return frame.DecodeFrame(s.frameItems[frameNumber-1], s.rows, s.cols, s.format(), s.encoding)
	}
	n := s.rows * s.cols
	all := s.allStoredSamples()
	return all[(frameNumber-1)*n : frameNumber*n], nil
}

func summariseLocations(frames []FrameInfo) locationsState {
	if len(frames) == 0 {
		return locationsUnknown
	}
	allYes := true
	for _, f := range frames {
		if f.HasSource && f.LocationsPreserved == PreservationNo {
			return locationsNo
		}
		if !f.HasSource || f.LocationsPreserved != PreservationYes {
			allYes = false
		}
	}
	if allYes {
		return locationsYes
	}
	return locationsUnknown
}
