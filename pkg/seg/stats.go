package seg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SegmentStats holds per-segment coverage statistics computed over the
// stored frames of a segment. They give a quick summary of how much of
// the raster each segment occupies without reconstructing full arrays.
type SegmentStats struct {
	// SegmentNumber identifies the segment the statistics describe.
	SegmentNumber int

	// FrameCount is the number of stored frames carrying the segment.
	// Empty planes are skipped at encoding time, so this counts only
	// planes with at least one non-background pixel.
	FrameCount int

	// MeanCoverage is the mean fraction of pixels set per stored frame,
	// in [0, 1]. For fractional segmentations a pixel counts as set when
	// its stored value is non-zero.
	MeanCoverage float64

	// StdDevCoverage is the sample standard deviation of the per-frame
	// coverage fractions. It is zero when fewer than two frames exist.
	StdDevCoverage float64

	// MinCoverage and MaxCoverage bound the per-frame coverage fractions.
	MinCoverage float64
	MaxCoverage float64
}

// CoverageStats computes coverage statistics for the given segment by
// decoding each of its stored frames.
func (s *Segmentation) CoverageStats(segmentNumber int) (SegmentStats, error) {
	frames, err := s.FramesForSegment(segmentNumber)
	if err != nil {
		return SegmentStats{}, err
	}

	stats := SegmentStats{SegmentNumber: segmentNumber, FrameCount: len(frames)}
	if len(frames) == 0 {
		return stats, nil
	}

	pixels := float64(s.rows * s.cols)
	coverage := make([]float64, len(frames))
	for i, frameNum := range frames {
		plane, err := s.FramePlane(frameNum)
		if err != nil {
			return SegmentStats{}, fmt.Errorf("decoding frame %d: %w", frameNum, err)
		}
		set := 0
		for _, v := range plane {
			if v != 0 {
				set++
			}
		}
		coverage[i] = float64(set) / pixels
	}

	stats.MeanCoverage = stat.Mean(coverage, nil)
	stats.MinCoverage = coverage[0]
	stats.MaxCoverage = coverage[0]
	for _, c := range coverage[1:] {
		stats.MinCoverage = math.Min(stats.MinCoverage, c)
		stats.MaxCoverage = math.Max(stats.MaxCoverage, c)
	}
	if len(coverage) > 1 {
		stats.StdDevCoverage = stat.StdDev(coverage, nil)
	}
	return stats, nil
}
