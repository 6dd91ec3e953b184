package seg

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"dicomseg/pkg/dimension"
	"dicomseg/pkg/frame"
)

// testSources returns a series of n single-frame 2x2 source images
// stacked along the z axis.
func testSources(n int) []SourceImage {
	srcs := make([]SourceImage, n)
	for i := range srcs {
		srcs[i] = SourceImage{
			SOPInstanceUID:    fmt.Sprintf("1.2.826.0.1.3680043.8.498.%d", i+1),
			SOPClassUID:       "1.2.840.10008.5.1.4.1.1.2",
			StudyInstanceUID:  "1.2.826.0.1.3680043.8.498.100",
			SeriesInstanceUID: "1.2.826.0.1.3680043.8.498.101",
			Rows:              2,
			Columns:           2,
			Orientation:       []float64{1, 0, 0, 0, 1, 0},
			ImagePosition:     [3]float64{0, 0, float64(i)},
			PixelSpacing:      [2]float64{0.5, 0.5},
			SliceThickness:    1,
		}
	}
	return srcs
}

// testMultiframeSource returns a single 2x2 source image with n frames.
func testMultiframeSource(n int) SourceImage {
	positions := make([]dimension.PlanePosition, n)
	for i := range positions {
		positions[i] = dimension.NewPatientPosition(0, 0, float64(i))
	}
	return SourceImage{
		SOPInstanceUID:    "1.2.826.0.1.3680043.8.498.200",
		SOPClassUID:       "1.2.840.10008.5.1.4.1.1.4.1",
		StudyInstanceUID:  "1.2.826.0.1.3680043.8.498.100",
		SeriesInstanceUID: "1.2.826.0.1.3680043.8.498.101",
		Rows:              2,
		Columns:           2,
		NumberOfFrames:    n,
		Orientation:       []float64{1, 0, 0, 0, 1, 0},
		FramePositions:    positions,
		PixelSpacing:      [2]float64{0.5, 0.5},
	}
}

func testDescriptor(n int) SegmentDescriptor {
	return SegmentDescriptor{
		Number: n,
		Label:  fmt.Sprintf("tissue %d", n),
		PropertyCategory: Code{
			Value: "91723000", SchemeDesignator: "SCT", Meaning: "Anatomical Structure",
		},
		PropertyType: Code{
			Value: "80891009", SchemeDesignator: "SCT", Meaning: "Heart",
		},
		AlgorithmType: AlgorithmAutomatic,
		AlgorithmName: "watershed",
	}
}

func mustBoolean(t *testing.T, data []bool, planes, rows, cols int) *PixelArray {
	t.Helper()
	arr, err := NewBooleanPixels(data, planes, rows, cols)
	if err != nil {
		t.Fatalf("NewBooleanPixels: %v", err)
	}
	return arr
}

func mustLabels(t *testing.T, data []uint16, planes, rows, cols int) *PixelArray {
	t.Helper()
	arr, err := NewLabelPixels(data, planes, rows, cols)
	if err != nil {
		t.Fatalf("NewLabelPixels: %v", err)
	}
	return arr
}

func TestAddSegmentsBinarySkipsEmptyPlanes(t *testing.T) {
	s, err := New(&Params{SourceImages: testSources(3), Type: Binary})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data := []bool{
		true, false, false, true, // plane 0
		false, false, false, false, // plane 1, empty
		false, true, true, false, // plane 2
	}
	arr := mustBoolean(t, data, 3, 2, 2)
	if err := s.AddSegments(arr, []SegmentDescriptor{testDescriptor(1)}, nil); err != nil {
		t.Fatalf("AddSegments: %v", err)
	}

	if got := s.NumberOfFrames(); got != 2 {
		t.Fatalf("NumberOfFrames = %d, want 2 (empty plane must be skipped)", got)
	}
	if got := s.NumberOfSegments(); got != 1 {
		t.Errorf("NumberOfSegments = %d, want 1", got)
	}

	frames := s.PerFrameInfo()
	wantIndex := [][]int{{1, 1}, {1, 3}}
	for i, f := range frames {
		if f.SegmentNumber != 1 {
			t.Errorf("frame %d: SegmentNumber = %d, want 1", i, f.SegmentNumber)
		}
		if !reflect.DeepEqual(f.DimensionIndexValues, wantIndex[i]) {
			t.Errorf("frame %d: DimensionIndexValues = %v, want %v",
				i, f.DimensionIndexValues, wantIndex[i])
		}
		if !f.HasSource || f.LocationsPreserved != PreservationYes {
			t.Errorf("frame %d: expected a preserved source reference, got %+v", i, f)
		}
	}
	if frames[0].SourceSOPInstanceUID != s.SourceInstanceUIDs()[0] {
		t.Errorf("frame 0 references %q, want first source", frames[0].SourceSOPInstanceUID)
	}
	if frames[1].SourceSOPInstanceUID != s.SourceInstanceUIDs()[2] {
		t.Errorf("frame 1 references %q, want third source", frames[1].SourceSOPInstanceUID)
	}

	// Two 4-sample planes bit pack into one byte, padded to even length.
	want := []byte{0x69, 0x00}
	if got := s.PixelData(); !bytes.Equal(got, want) {
		t.Errorf("PixelData = %#v, want %#v", got, want)
	}
}

func TestAddSegmentsSequentialMatchesBatch(t *testing.T) {
	// Segment 1 on planes 0 and 2, segment 2 on planes 1 and 2, disjoint
	// pixels.
	labels := []uint16{
		1, 0, 0, 0,
		2, 0, 0, 2,
		1, 2, 0, 0,
	}
	seg1 := make([]uint16, len(labels))
	seg2 := make([]uint16, len(labels))
	for i, v := range labels {
		switch v {
		case 1:
			seg1[i] = 1
		case 2:
			seg2[i] = 2
		}
	}

	batch, err := New(&Params{SourceImages: testSources(3), Type: Binary})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = batch.AddSegments(
		mustLabels(t, labels, 3, 2, 2),
		[]SegmentDescriptor{testDescriptor(1), testDescriptor(2)}, nil)
	if err != nil {
		t.Fatalf("batch AddSegments: %v", err)
	}

	sequential, err := New(&Params{SourceImages: testSources(3), Type: Binary})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sequential.AddSegments(mustLabels(t, seg1, 3, 2, 2),
		[]SegmentDescriptor{testDescriptor(1)}, nil); err != nil {
		t.Fatalf("sequential AddSegments #1: %v", err)
	}
	if err := sequential.AddSegments(mustLabels(t, seg2, 3, 2, 2),
		[]SegmentDescriptor{testDescriptor(2)}, nil); err != nil {
		t.Fatalf("sequential AddSegments #2: %v", err)
	}

	if !bytes.Equal(batch.PixelData(), sequential.PixelData()) {
		t.Errorf("pixel data diverges: batch %#v, sequential %#v",
			batch.PixelData(), sequential.PixelData())
	}
	if !reflect.DeepEqual(batch.PerFrameInfo(), sequential.PerFrameInfo()) {
		t.Errorf("frame metadata diverges:\nbatch      %+v\nsequential %+v",
			batch.PerFrameInfo(), sequential.PerFrameInfo())
	}
}

func TestAddSegmentsNumbering(t *testing.T) {
	newSeg := func(t *testing.T) *Segmentation {
		s, err := New(&Params{SourceImages: testSources(1), Type: Binary})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return s
	}
	mask := func(t *testing.T) *PixelArray {
		return mustBoolean(t, []bool{true, false, false, false}, 1, 2, 2)
	}

	t.Run("first segment must be numbered 1", func(t *testing.T) {
		s := newSeg(t)
		err := s.AddSegments(mask(t), []SegmentDescriptor{testDescriptor(2)}, nil)
		if !errors.Is(err, ErrSegmentNumbering) {
			t.Fatalf("got %v, want ErrSegmentNumbering", err)
		}
	})

	t.Run("gap within a batch", func(t *testing.T) {
		s := newSeg(t)
		labels := mustLabels(t, []uint16{1, 3, 0, 0}, 1, 2, 2)
		err := s.AddSegments(labels, []SegmentDescriptor{testDescriptor(1), testDescriptor(3)}, nil)
		if !errors.Is(err, ErrSegmentNumbering) {
			t.Fatalf("got %v, want ErrSegmentNumbering", err)
		}
	})

	t.Run("re-adding an existing number", func(t *testing.T) {
		// Continuation from max+1 is checked first, so re-adding an
		// existing number surfaces as a numbering violation.
		s := newSeg(t)
		if err := s.AddSegments(mask(t), []SegmentDescriptor{testDescriptor(1)}, nil); err != nil {
			t.Fatalf("AddSegments: %v", err)
		}
		err := s.AddSegments(mask(t), []SegmentDescriptor{testDescriptor(1)}, nil)
		if !errors.Is(err, ErrSegmentNumbering) {
			t.Fatalf("got %v, want ErrSegmentNumbering", err)
		}
	})

	t.Run("batch overlapping existing numbers", func(t *testing.T) {
		s := newSeg(t)
		for n := 1; n <= 4; n++ {
			if err := s.AddSegments(mask(t), []SegmentDescriptor{testDescriptor(n)}, nil); err != nil {
				t.Fatalf("AddSegments #%d: %v", n, err)
			}
		}
		labels := mustLabels(t, []uint16{2, 3, 0, 0}, 1, 2, 2)
		err := s.AddSegments(labels, []SegmentDescriptor{testDescriptor(2), testDescriptor(3)}, nil)
		if !errors.Is(err, ErrSegmentNumbering) {
			t.Fatalf("got %v, want ErrSegmentNumbering", err)
		}
	})

	t.Run("failed call leaves the object unchanged", func(t *testing.T) {
		s := newSeg(t)
		if err := s.AddSegments(mask(t), []SegmentDescriptor{testDescriptor(1)}, nil); err != nil {
			t.Fatalf("AddSegments: %v", err)
		}
		before := s.PixelData()
		err := s.AddSegments(mustLabels(t, []uint16{5, 0, 0, 0}, 1, 2, 2),
			[]SegmentDescriptor{testDescriptor(2)}, nil)
		if !errors.Is(err, ErrUndescribedSegment) {
			t.Fatalf("got %v, want ErrUndescribedSegment", err)
		}
		if s.NumberOfFrames() != 1 || s.NumberOfSegments() != 1 {
			t.Errorf("failed call mutated the object: %d frames, %d segments",
				s.NumberOfFrames(), s.NumberOfSegments())
		}
		if !bytes.Equal(before, s.PixelData()) {
			t.Errorf("failed call mutated the pixel data")
		}
	})
}

func TestAddSegmentsUndescribedLabels(t *testing.T) {
	s, err := New(&Params{SourceImages: testSources(1), Type: Binary})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	labels := mustLabels(t, []uint16{1, 3, 0, 0}, 1, 2, 2)
	err = s.AddSegments(labels, []SegmentDescriptor{testDescriptor(1)}, nil)
	if !errors.Is(err, ErrUndescribedSegment) {
		t.Fatalf("got %v, want ErrUndescribedSegment", err)
	}
}

func TestAddSegmentsPlaneCountMismatch(t *testing.T) {
	s, err := New(&Params{SourceImages: testSources(3), Type: Binary})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	arr := mustBoolean(t, []bool{true, false, false, false}, 1, 2, 2)

	if err := s.AddSegments(arr, []SegmentDescriptor{testDescriptor(1)}, nil); !errors.Is(err, ErrPlaneCountMismatch) {
		t.Errorf("default positions: got %v, want ErrPlaneCountMismatch", err)
	}

	positions := []dimension.PlanePosition{
		dimension.NewPatientPosition(0, 0, 0),
		dimension.NewPatientPosition(0, 0, 1),
	}
	if err := s.AddSegments(arr, []SegmentDescriptor{testDescriptor(1)}, positions); !errors.Is(err, ErrPlaneCountMismatch) {
		t.Errorf("explicit positions: got %v, want ErrPlaneCountMismatch", err)
	}
}

func TestAddSegmentsFractionalValidation(t *testing.T) {
	newFractional := func(t *testing.T) *Segmentation {
		s, err := New(&Params{SourceImages: testSources(1), Type: Fractional})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return s
	}

	t.Run("out of range", func(t *testing.T) {
		s := newFractional(t)
		arr, err := NewFractionPixels([]float64{0, 0.5, 1.5, 0}, 1, 2, 2)
		if err != nil {
			t.Fatalf("NewFractionPixels: %v", err)
		}
		if err := s.AddSegments(arr, []SegmentDescriptor{testDescriptor(1)}, nil); !errors.Is(err, ErrFractionRange) {
			t.Fatalf("got %v, want ErrFractionRange", err)
		}
	})

	t.Run("multiple descriptors", func(t *testing.T) {
		s := newFractional(t)
		arr, err := NewFractionPixels([]float64{0, 0.5, 1, 0}, 1, 2, 2)
		if err != nil {
			t.Fatalf("NewFractionPixels: %v", err)
		}
		descs := []SegmentDescriptor{testDescriptor(1), testDescriptor(2)}
		if err := s.AddSegments(arr, descs, nil); !errors.Is(err, ErrTooManyDescriptors) {
			t.Fatalf("got %v, want ErrTooManyDescriptors", err)
		}
	})

	t.Run("binary rejects intermediate fractions", func(t *testing.T) {
		s, err := New(&Params{SourceImages: testSources(1), Type: Binary})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		arr, err := NewFractionPixels([]float64{0, 0.5, 1, 0}, 1, 2, 2)
		if err != nil {
			t.Fatalf("NewFractionPixels: %v", err)
		}
		if err := s.AddSegments(arr, []SegmentDescriptor{testDescriptor(1)}, nil); !errors.Is(err, ErrNonBinaryFraction) {
			t.Fatalf("got %v, want ErrNonBinaryFraction", err)
		}
	})
}

func TestFractionalScaling(t *testing.T) {
	s, err := New(&Params{SourceImages: testSources(1), Type: Fractional})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	arr, err := NewFractionPixels([]float64{0, 0.25, 0.5, 1}, 1, 2, 2)
	if err != nil {
		t.Fatalf("NewFractionPixels: %v", err)
	}
	if err := s.AddSegments(arr, []SegmentDescriptor{testDescriptor(1)}, nil); err != nil {
		t.Fatalf("AddSegments: %v", err)
	}

	plane, err := s.FramePlane(1)
	if err != nil {
		t.Fatalf("FramePlane: %v", err)
	}
	want := []uint16{0, 64, 128, 255}
	if !reflect.DeepEqual(plane, want) {
		t.Errorf("FramePlane = %v, want %v", plane, want)
	}
}

func TestFramePlaneRoundTrip(t *testing.T) {
	s, err := New(&Params{SourceImages: testSources(2), Type: Binary})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []bool{
		true, false, false, true,
		false, true, true, false,
	}
	arr := mustBoolean(t, data, 2, 2, 2)
	if err := s.AddSegments(arr, []SegmentDescriptor{testDescriptor(1)}, nil); err != nil {
		t.Fatalf("AddSegments: %v", err)
	}

	want := [][]uint16{{1, 0, 0, 1}, {0, 1, 1, 0}}
	for i, w := range want {
		plane, err := s.FramePlane(i + 1)
		if err != nil {
			t.Fatalf("FramePlane(%d): %v", i+1, err)
		}
		if !reflect.DeepEqual(plane, w) {
			t.Errorf("FramePlane(%d) = %v, want %v", i+1, plane, w)
		}
	}
	if _, err := s.FramePlane(3); !errors.Is(err, ErrFrameRange) {
		t.Errorf("FramePlane(3): got %v, want ErrFrameRange", err)
	}
	if _, err := s.FramePlane(0); !errors.Is(err, ErrFrameRange) {
		t.Errorf("FramePlane(0): got %v, want ErrFrameRange", err)
	}
}

func TestEncapsulatedEncoding(t *testing.T) {
	s, err := New(&Params{
		SourceImages: testSources(2),
		Type:         Fractional,
		Encoding:     frame.ZstdEncoding,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	arr, err := NewFractionPixels([]float64{
		0, 0.5, 1, 0,
		1, 0, 0, 0.5,
	}, 2, 2, 2)
	if err != nil {
		t.Fatalf("NewFractionPixels: %v", err)
	}
	if err := s.AddSegments(arr, []SegmentDescriptor{testDescriptor(1)}, nil); err != nil {
		t.Fatalf("AddSegments: %v", err)
	}

	items := s.FrameItems()
	if len(items) != 2 {
		t.Fatalf("FrameItems: got %d items, want 2", len(items))
	}
	if len(s.PixelData()) != 0 {
		t.Errorf("encapsulated encoding must not populate PixelData")
	}

	plane, err := s.FramePlane(1)
	if err != nil {
		t.Fatalf("FramePlane: %v", err)
	}
	want := []uint16{0, 128, 255, 0}
	if !reflect.DeepEqual(plane, want) {
		t.Errorf("FramePlane = %v, want %v", plane, want)
	}
}

func TestNewRejectsBinaryEncoding(t *testing.T) {
	_, err := New(&Params{
		SourceImages: testSources(1),
		Type:         Binary,
		Encoding:     frame.ZstdEncoding,
	})
	if !errors.Is(err, frame.ErrUnsupportedEncoding) {
		t.Fatalf("got %v, want ErrUnsupportedEncoding", err)
	}
}

func TestNewSourceValidation(t *testing.T) {
	t.Run("no sources", func(t *testing.T) {
		_, err := New(&Params{Type: Binary})
		if !errors.Is(err, ErrSourceImage) {
			t.Fatalf("got %v, want ErrSourceImage", err)
		}
	})

	t.Run("mismatched dimensions", func(t *testing.T) {
		srcs := testSources(2)
		srcs[1].Rows = 4
		_, err := New(&Params{SourceImages: srcs, Type: Binary})
		if !errors.Is(err, ErrSourceImage) {
			t.Fatalf("got %v, want ErrSourceImage", err)
		}
	})

	t.Run("several multi-frame sources", func(t *testing.T) {
		srcs := []SourceImage{testMultiframeSource(2), testMultiframeSource(2)}
		_, err := New(&Params{SourceImages: srcs, Type: Binary})
		if !errors.Is(err, ErrSourceImage) {
			t.Fatalf("got %v, want ErrSourceImage", err)
		}
	})
}

func TestMultiframeSourceReferences(t *testing.T) {
	src := testMultiframeSource(3)
	s, err := New(&Params{SourceImages: []SourceImage{src}, Type: Binary})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []bool{
		true, false, false, false,
		false, true, false, false,
		false, false, true, false,
	}
	if err := s.AddSegments(mustBoolean(t, data, 3, 2, 2),
		[]SegmentDescriptor{testDescriptor(1)}, nil); err != nil {
		t.Fatalf("AddSegments: %v", err)
	}

	for i, f := range s.PerFrameInfo() {
		if f.SourceSOPInstanceUID != src.SOPInstanceUID {
			t.Errorf("frame %d references %q, want the multi-frame source", i, f.SourceSOPInstanceUID)
		}
		if f.SourceFrameNumber != i+1 {
			t.Errorf("frame %d: SourceFrameNumber = %d, want %d", i, f.SourceFrameNumber, i+1)
		}
	}
}

func TestSearchSegmentsAndTracking(t *testing.T) {
	s, err := New(&Params{SourceImages: testSources(1), Type: Binary})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d1 := testDescriptor(1)
	d1.TrackingID = "lesion-a"
	d1.TrackingUID = "1.2.826.0.1.3680043.8.498.301"
	d2 := testDescriptor(2)
	d2.Label = "background"
	d2.AlgorithmType = AlgorithmManual
	d2.AlgorithmName = ""
	labels := mustLabels(t, []uint16{1, 2, 0, 0}, 1, 2, 2)
	if err := s.AddSegments(labels, []SegmentDescriptor{d1, d2}, nil); err != nil {
		t.Fatalf("AddSegments: %v", err)
	}

	if got := s.SearchSegments(SegmentFilter{Label: "background"}); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("SearchSegments(label) = %v, want [2]", got)
	}
	if got := s.SearchSegments(SegmentFilter{AlgorithmType: AlgorithmAutomatic}); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("SearchSegments(algorithm) = %v, want [1]", got)
	}
	if got := s.SearchSegments(SegmentFilter{TrackingID: "nope"}); got != nil {
		t.Errorf("SearchSegments(unmatched) = %v, want empty", got)
	}
	if got := s.SearchSegments(SegmentFilter{}); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("SearchSegments(all) = %v, want [1 2]", got)
	}

	categories := s.AllPropertyCategories()
	if len(categories) != 1 || categories[0].Value != "91723000" {
		t.Errorf("AllPropertyCategories = %v, want the single shared category", categories)
	}
	types := s.AllPropertyTypes()
	if len(types) != 1 || types[0].Value != "80891009" {
		t.Errorf("AllPropertyTypes = %v, want the single shared type", types)
	}

	if got := s.AllTrackingIDs(); !reflect.DeepEqual(got, []string{"lesion-a"}) {
		t.Errorf("AllTrackingIDs = %v", got)
	}
	if got := s.AllTrackingUIDs(); !reflect.DeepEqual(got, []string{"1.2.826.0.1.3680043.8.498.301"}) {
		t.Errorf("AllTrackingUIDs = %v", got)
	}

	if _, err := s.DescriptorFor(3); !errors.Is(err, ErrUnknownSegment) {
		t.Errorf("DescriptorFor(3): got %v, want ErrUnknownSegment", err)
	}
	d, err := s.DescriptorFor(2)
	if err != nil {
		t.Fatalf("DescriptorFor(2): %v", err)
	}
	if d.Label != "background" {
		t.Errorf("DescriptorFor(2).Label = %q", d.Label)
	}
}

func TestCoverageStats(t *testing.T) {
	s, err := New(&Params{SourceImages: testSources(2), Type: Binary})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []bool{
		true, false, false, false, // coverage 0.25
		true, true, true, false, // coverage 0.75
	}
	if err := s.AddSegments(mustBoolean(t, data, 2, 2, 2),
		[]SegmentDescriptor{testDescriptor(1)}, nil); err != nil {
		t.Fatalf("AddSegments: %v", err)
	}

	stats, err := s.CoverageStats(1)
	if err != nil {
		t.Fatalf("CoverageStats: %v", err)
	}
	if stats.FrameCount != 2 {
		t.Errorf("FrameCount = %d, want 2", stats.FrameCount)
	}
	if math.Abs(stats.MeanCoverage-0.5) > 1e-12 {
		t.Errorf("MeanCoverage = %g, want 0.5", stats.MeanCoverage)
	}
	if stats.MinCoverage != 0.25 || stats.MaxCoverage != 0.75 {
		t.Errorf("coverage bounds = [%g, %g], want [0.25, 0.75]",
			stats.MinCoverage, stats.MaxCoverage)
	}
	if stats.StdDevCoverage == 0 {
		t.Errorf("StdDevCoverage = 0, want positive for two distinct frames")
	}

	if _, err := s.CoverageStats(2); !errors.Is(err, ErrUnknownSegment) {
		t.Errorf("CoverageStats(2): got %v, want ErrUnknownSegment", err)
	}
}
