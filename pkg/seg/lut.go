package seg

import "fmt"

// noFrameRef marks a lookup table entry without a source frame number.
const noFrameRef = -1

// NoFrame is the sentinel returned by Resolve for source/segment pairs
// that have no stored frame and are treated as empty.
const NoFrame = -1

// lutRow maps one stored frame to its segment number, the index of its
// source instance in the fixed source order, and its source frame number.
type lutRow struct {
	segment     int
	sourceIdx   int
	sourceFrame int
}

// frameLUT is the derived lookup table with exactly one row per stored
// frame. It is rebuilt in full whenever segments are added or an existing
// object is loaded, never patched incrementally.
//
// All queries are linear scans over the rows. Frame counts are small
// enough in practice that no sub-linear indexing is provided.
type frameLUT struct {
	rows       []lutRow
	sourceUIDs []string
	sourceIdx  map[string]int

	// singleSource reports that every frame resolved to exactly one
	// distinct source identity. When false the source-frame query path is
	// disabled for the whole object.
	singleSource bool
}

func emptyLUT(sourceUIDs []string) *frameLUT {
	idx := make(map[string]int, len(sourceUIDs))
	for i, uid := range sourceUIDs {
		idx[uid] = i
	}
	return &frameLUT{sourceUIDs: sourceUIDs, sourceIdx: idx, singleSource: true}
}

// buildFrameLUT derives the lookup table from the full frame metadata
// collection. A frame referencing a source instance outside the known
// source set is a fatal integrity error.
func buildFrameLUT(frames []FrameInfo, sourceUIDs []string) (*frameLUT, error) {
	lut := emptyLUT(sourceUIDs)
	lut.rows = make([]lutRow, len(frames))
	for i, f := range frames {
		row := lutRow{segment: f.SegmentNumber, sourceIdx: noFrameRef, sourceFrame: noFrameRef}
		if !f.HasSource {
			lut.singleSource = false
		} else {
			idx, ok := lut.sourceIdx[f.SourceSOPInstanceUID]
			if !ok {
				return nil, fmt.Errorf("%w: frame %d references %q",
					ErrDanglingReference, i+1, f.SourceSOPInstanceUID)
			}
			row.sourceIdx = idx
			if f.SourceFrameNumber > 0 {
				row.sourceFrame = f.SourceFrameNumber
			}
		}
		lut.rows[i] = row
	}
	return lut, nil
}

func (l *frameLUT) sourceIndex(uid string) (int, error) {
	idx, ok := l.sourceIdx[uid]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSource, uid)
	}
	return idx, nil
}

func (l *frameLUT) requireSingleSource() error {
	if !l.singleSource {
		return fmt.Errorf(
			"%w: some frames reference zero or multiple source identities", ErrIndexingUnavailable)
	}
	return nil
}

// FramesForSource returns the 1-based numbers of all frames derived from
// the given source instance. An unknown source instance is an error; a
// known instance without frames yields an empty result.
func (s *Segmentation) FramesForSource(sourceUID string) ([]int, error) {
	if err := s.lut.requireSingleSource(); err != nil {
		return nil, err
	}
	idx, err := s.lut.sourceIndex(sourceUID)
	if err != nil {
		return nil, err
	}
	var frames []int
	for i, row := range s.lut.rows {
		if row.sourceIdx == idx {
			frames = append(frames, i+1)
		}
	}
	return frames, nil
}

// SegmentsForSource returns the numbers of all segments with at least one
// frame derived from the given source instance.
func (s *Segmentation) SegmentsForSource(sourceUID string) ([]int, error) {
	if err := s.lut.requireSingleSource(); err != nil {
		return nil, err
	}
	idx, err := s.lut.sourceIndex(sourceUID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var segments []int
	for _, row := range s.lut.rows {
		if row.sourceIdx == idx && !seen[row.segment] {
			seen[row.segment] = true
			segments = append(segments, row.segment)
		}
	}
	return segments, nil
}

// FramesForSegment returns the 1-based numbers of all frames belonging to
// the given segment.
func (s *Segmentation) FramesForSegment(segmentNumber int) ([]int, error) {
	if segmentNumber < 1 || segmentNumber > len(s.descriptors) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSegment, segmentNumber)
	}
	var frames []int
	for i, row := range s.lut.rows {
		if row.segment == segmentNumber {
			frames = append(frames, i+1)
		}
	}
	return frames, nil
}

// SourcesForSegment returns the distinct source instance identifiers the
// given segment's frames were derived from.
func (s *Segmentation) SourcesForSegment(segmentNumber int) ([]string, error) {
	if segmentNumber < 1 || segmentNumber > len(s.descriptors) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSegment, segmentNumber)
	}
	if err := s.lut.requireSingleSource(); err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var uids []string
	for _, row := range s.lut.rows {
		if row.segment == segmentNumber && row.sourceIdx >= 0 && !seen[row.sourceIdx] {
			seen[row.sourceIdx] = true
			uids = append(uids, s.lut.sourceUIDs[row.sourceIdx])
		}
	}
	return uids, nil
}

// Resolve returns, for each (source instance, segment) pair, the 1-based
// number of the stored frame holding that combination, or NoFrame when no
// such frame exists. Source instances outside the known source set are an
// error unless errorOnMissing is false, in which case their rows stay
// empty.
func (s *Segmentation) Resolve(
	sourceUIDs []string,
	segmentNumbers []int,
	errorOnMissing bool,
) ([][]int, error) {
	if err := s.lut.requireSingleSource(); err != nil {
		return nil, err
	}
	for _, n := range segmentNumbers {
		if n < 1 || n > len(s.descriptors) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSegment, n)
		}
	}

	// Ambiguous (source, segment) pairs make the query meaningless and
	// indicate a malformed object.
	type key struct{ source, segment int }
	byKey := make(map[key]int, len(s.lut.rows))
	for i, row := range s.lut.rows {
		k := key{row.sourceIdx, row.segment}
		if _, dup := byKey[k]; dup {
			return nil, fmt.Errorf(
				"%w: source %q and segment %d map to multiple frames",
				ErrNonUniqueIndex, s.lut.sourceUIDs[row.sourceIdx], row.segment)
		}
		byKey[k] = i + 1
	}

	matrix := make([][]int, len(sourceUIDs))
	for r, uid := range sourceUIDs {
		matrix[r] = make([]int, len(segmentNumbers))
		for c := range matrix[r] {
			matrix[r][c] = NoFrame
		}
		idx, err := s.lut.sourceIndex(uid)
		if err != nil {
			if errorOnMissing {
				return nil, err
			}
			continue
		}
		for c, segNum := range segmentNumbers {
			if n, ok := byKey[key{idx, segNum}]; ok {
				matrix[r][c] = n
			}
		}
	}
	return matrix, nil
}

// ResolveFrames is the per-source-frame variant of Resolve for a single
// multi-frame source instance: rows of the result correspond to the given
// source frame numbers.
func (s *Segmentation) ResolveFrames(
	sourceUID string,
	sourceFrameNumbers []int,
	segmentNumbers []int,
	errorOnMissing bool,
) ([][]int, error) {
	if err := s.lut.requireSingleSource(); err != nil {
		return nil, err
	}
	idx, err := s.lut.sourceIndex(sourceUID)
	if err != nil {
		return nil, err
	}
	for _, n := range segmentNumbers {
		if n < 1 || n > len(s.descriptors) {
			return nil, fmt.Errorf("%w: %d", ErrUnknownSegment, n)
		}
	}

	type key struct{ frame, segment int }
	byKey := make(map[key]int)
	known := make(map[int]bool)
	for i, row := range s.lut.rows {
		if row.sourceIdx != idx {
			continue
		}
		k := key{row.sourceFrame, row.segment}
		if _, dup := byKey[k]; dup {
			return nil, fmt.Errorf(
				"%w: source frame %d and segment %d map to multiple frames",
				ErrNonUniqueIndex, row.sourceFrame, row.segment)
		}
		byKey[k] = i + 1
		known[row.sourceFrame] = true
	}

	matrix := make([][]int, len(sourceFrameNumbers))
	for r, frameNum := range sourceFrameNumbers {
		matrix[r] = make([]int, len(segmentNumbers))
		for c := range matrix[r] {
			matrix[r][c] = NoFrame
		}
		if !known[frameNum] {
			if errorOnMissing {
				return nil, fmt.Errorf("%w: source frame %d of %q has no stored frames",
					ErrUnknownSource, frameNum, sourceUID)
			}
			continue
		}
		for c, segNum := range segmentNumbers {
			if n, ok := byKey[key{frameNum, segNum}]; ok {
				matrix[r][c] = n
			}
		}
	}
	return matrix, nil
}
