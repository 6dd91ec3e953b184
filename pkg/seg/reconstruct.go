package seg

import "fmt"

// Pixels is a dense reconstructed pixel array of shape
// (Frames, Rows, Cols, Segments) stored row-major.
type Pixels struct {
	Frames   int
	Rows     int
	Cols     int
	Segments int
	Data     []uint16
}

func newPixels(frames, rows, cols, segments int) *Pixels {
	return &Pixels{
		Frames:   frames,
		Rows:     rows,
		Cols:     cols,
		Segments: segments,
		Data:     make([]uint16, frames*rows*cols*segments),
	}
}

func (p *Pixels) index(frame, row, col, segment int) int {
	return ((frame*p.Rows+row)*p.Cols+col)*p.Segments + segment
}

// At returns the sample at the given output frame, pixel and segment
// channel.
func (p *Pixels) At(frame, row, col, segment int) uint16 {
	return p.Data[p.index(frame, row, col, segment)]
}

// QueryOptions adjusts the behavior of the source-indexed pixel queries.
type QueryOptions struct {
	// AssertLocationsPreserved overrides, at the caller's own risk, the
	// refusal to index by source frame when the object does not guarantee
	// that spatial locations were preserved. It has no effect when the
	// object positively records that locations were not preserved.
	AssertLocationsPreserved bool

	// ErrorOnMissing turns queries for source instances or frames without
	// stored frames into errors instead of empty output rows.
	ErrorOnMissing bool
}

// ReconstructFrames builds a dense pixel array from a matrix of stored
// frame numbers. Rows of the matrix become output frames and columns
// output segment channels; entries are 1-based frame numbers or NoFrame
// for cells that stay empty. segmentNumbers gives the segment of each
// column.
//
// With combine set, the non-overlapping binary segments are collapsed
// into a single label map: each segment's plane is scaled by its original
// segment number, or by its 1-based rank in segmentNumbers when relabel
// is set, and the channels are merged by element-wise maximum.
func (s *Segmentation) ReconstructFrames(
	frameMatrix [][]int,
	segmentNumbers []int,
	combine bool,
	relabel bool,
) (*Pixels, error) {
	if combine && s.segType != Binary {
		return nil, ErrCombineNotSupported
	}
	if len(segmentNumbers) == 0 {
		return nil, fmt.Errorf("%w: segment numbers may not be empty", ErrUnknownSegment)
	}
	for _, n := range segmentNumbers {
		if n < 1 || n > len(s.descriptors) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSegment, n)
		}
	}
	for r, row := range frameMatrix {
		if len(row) != len(segmentNumbers) {
			return nil, fmt.Errorf(
				"%w: row %d has %d entries for %d segments",
				ErrFrameRange, r, len(row), len(segmentNumbers))
		}
		for _, n := range row {
			if n != NoFrame && (n < 1 || n > len(s.frames)) {
				return nil, fmt.Errorf("%w: frame matrix entry %d (have %d frames)",
					ErrFrameRange, n, len(s.frames))
			}
		}
	}

	out := newPixels(len(frameMatrix), s.rows, s.cols, len(segmentNumbers))
	for r, row := range frameMatrix {
		for c, frameNum := range row {
			if frameNum == NoFrame {
				continue
			}
			plane, err := s.FramePlane(frameNum)
			if err != nil {
				return nil, err
			}
			for i, v := range plane {
				out.Data[out.index(r, i/s.cols, i%s.cols, c)] = v
			}
		}
	}

	if !combine {
		return out, nil
	}
	return s.combineSegments(out, segmentNumbers, relabel)
}

// combineSegments collapses the segment channels of a binary
// reconstruction into a single label map, rejecting overlapping segments.
func (s *Segmentation) combineSegments(px *Pixels, segmentNumbers []int, relabel bool) (*Pixels, error) {
	values := make([]uint16, len(segmentNumbers))
	for i, n := range segmentNumbers {
		if relabel {
			values[i] = uint16(i + 1)
		} else {
			values[i] = uint16(n)
		}
	}

	out := newPixels(px.Frames, px.Rows, px.Cols, 1)
	pixels := px.Frames * px.Rows * px.Cols
	for p := 0; p < pixels; p++ {
		var sum, max uint16
		for c := 0; c < px.Segments; c++ {
			v := px.Data[p*px.Segments+c]
			sum += v
			if scaled := v * values[c]; scaled > max {
				max = scaled
			}
		}
		if sum > 1 {
			return nil, fmt.Errorf(
				"%w: segments %v share pixel %d", ErrOverlap, segmentNumbers, p)
		}
		out.Data[p] = max
	}
	return out, nil
}

// requireSourceIndexing enforces the preconditions of the source-frame
// query path: spatial locations must be known preserved (or asserted by
// the caller) and every frame must reference a single source identity.
func (s *Segmentation) requireSourceIndexing(opts QueryOptions) error {
	switch s.locations {
	case locationsNo:
		return fmt.Errorf(
			"%w: the object records that spatial locations were not preserved",
			ErrIndexingUnavailable)
	case locationsUnknown:
		if !opts.AssertLocationsPreserved {
			return fmt.Errorf(
				"%w: the object does not guarantee that spatial locations were preserved; "+
					"set AssertLocationsPreserved to override at your own risk",
				ErrIndexingUnavailable)
		}
	}
	return s.lut.requireSingleSource()
}

// PixelsBySource reconstructs the segmentation of the given source
// instances. Rows of the output correspond to sourceUIDs and channels to
// segmentNumbers (all segments when nil).
func (s *Segmentation) PixelsBySource(
	sourceUIDs []string,
	segmentNumbers []int,
	combine bool,
	relabel bool,
	opts QueryOptions,
) (*Pixels, error) {
	if err := s.requireSourceIndexing(opts); err != nil {
		return nil, err
	}
	if len(sourceUIDs) == 0 {
		return nil, fmt.Errorf("%w: source instances may not be empty", ErrUnknownSource)
	}
	if segmentNumbers == nil {
		segmentNumbers = s.allSegmentNumbers()
	}
	matrix, err := s.Resolve(sourceUIDs, segmentNumbers, opts.ErrorOnMissing)
	if err != nil {
		return nil, err
	}
	return s.ReconstructFrames(matrix, segmentNumbers, combine, relabel)
}

// PixelsBySourceFrames reconstructs the segmentation of the given frames
// of a single multi-frame source instance.
func (s *Segmentation) PixelsBySourceFrames(
	sourceUID string,
	sourceFrameNumbers []int,
	segmentNumbers []int,
	combine bool,
	relabel bool,
	opts QueryOptions,
) (*Pixels, error) {
	if err := s.requireSourceIndexing(opts); err != nil {
		return nil, err
	}
	if len(sourceFrameNumbers) == 0 {
		return nil, fmt.Errorf("%w: source frame numbers may not be empty", ErrFrameRange)
	}
	if segmentNumbers == nil {
		segmentNumbers = s.allSegmentNumbers()
	}
	matrix, err := s.ResolveFrames(sourceUID, sourceFrameNumbers, segmentNumbers, opts.ErrorOnMissing)
	if err != nil {
		return nil, err
	}
	return s.ReconstructFrames(matrix, segmentNumbers, combine, relabel)
}

func (s *Segmentation) allSegmentNumbers() []int {
	numbers := make([]int, len(s.descriptors))
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}
