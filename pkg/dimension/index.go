// Package dimension defines the fixed dimension indices used to order and
// address the planes of a multi-frame segmentation object. Two coordinate
// systems are supported, each with a fixed ordered list of indexed
// attributes: the segment number followed by the spatial position
// attributes of the plane.
package dimension

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrUnknownCoordinateSystem indicates a coordinate system other than
	// Patient or Slide.
	ErrUnknownCoordinateSystem = errors.New("unknown coordinate system")

	// ErrPositionKind indicates a plane position whose coordinate-system
	// kind does not match the index.
	ErrPositionKind = errors.New("plane position kind mismatch")

	// ErrIndexResolution indicates that a plane's attribute value could not
	// be located in the precomputed distinct value set. This is an internal
	// consistency error in the object graph, not a user input error.
	ErrIndexResolution = errors.New("cannot resolve dimension index value")
)

// Attribute describes one indexed axis: a human-readable label and the
// functional group the indexed value is recorded in.
type Attribute struct {
	Label           string
	FunctionalGroup string
}

// Index is the fixed, ordered dimension index of one coordinate system.
type Index struct {
	system CoordinateSystem
	attrs  []Attribute
}

// New returns the dimension index for the given coordinate system.
func New(system CoordinateSystem) (*Index, error) {
	switch system {
	case Patient:
		return &Index{
			system: system,
			attrs: []Attribute{
				{Label: "Segment Number", FunctionalGroup: "Segment Identification"},
				{Label: "Image Position (Patient)", FunctionalGroup: "Plane Position"},
			},
		}, nil
	case Slide:
		// Frames of each segment are organized like a tiled total pixel
		// matrix: first along the row dimension (column offsets left to
		// right), then along the column dimension (row offsets top to
		// bottom). To reproduce that raster scan through a lexicographic
		// sort, the axis labeled "Column Position" indexes the row-position
		// attribute and vice versa.
		return &Index{
			system: system,
			attrs: []Attribute{
				{Label: "Segment Number", FunctionalGroup: "Segment Identification"},
				{Label: "Column Position In Total Image Pixel Matrix", FunctionalGroup: "Plane Position (Slide)"},
				{Label: "Row Position In Total Image Pixel Matrix", FunctionalGroup: "Plane Position (Slide)"},
				{Label: "X Offset In Slide Coordinate System", FunctionalGroup: "Plane Position (Slide)"},
				{Label: "Y Offset In Slide Coordinate System", FunctionalGroup: "Plane Position (Slide)"},
				{Label: "Z Offset In Slide Coordinate System", FunctionalGroup: "Plane Position (Slide)"},
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCoordinateSystem, system)
	}
}

// CoordinateSystem returns the coordinate system of the index.
func (idx *Index) CoordinateSystem() CoordinateSystem {
	return idx.system
}

// Attributes returns the ordered indexed attributes, beginning with the
// segment number.
func (idx *Index) Attributes() []Attribute {
	attrs := make([]Attribute, len(idx.attrs))
	copy(attrs, idx.attrs)
	return attrs
}

// NumAxes returns the number of positional axes, i.e. the indexed
// attributes excluding the segment number.
func (idx *Index) NumAxes() int {
	return len(idx.attrs) - 1
}

// axisValues extracts the per-axis attribute vectors of one plane position,
// in the order of the index's positional axes. For the patient system the
// single axis value is the full 3D image position, compared as a vector.
func (idx *Index) axisValues(p PlanePosition) [][]float64 {
	if idx.system == Patient {
		return [][]float64{{p.ImagePosition[0], p.ImagePosition[1], p.ImagePosition[2]}}
	}
	return [][]float64{
		{float64(p.RowPosition)},
		{float64(p.ColumnPosition)},
		{p.XOffset},
		{p.YOffset},
		{p.ZOffset},
	}
}

// PlaneSort holds the indexed attribute values of a set of planes, the
// distinct value set of each axis and the stable spatial sort order of
// the planes.
type PlaneSort struct {
	// Order is the sort permutation: Order[i] is the original index of the
	// plane at sorted position i. The sort is lexicographic over the full
	// per-plane value vectors with ties broken by original input order, so
	// duplicate positions keep their relative order.
	Order []int

	values   [][][]float64 // values[plane][axis]
	distinct [][][]float64 // distinct[axis][rank], sorted ascending
}

// PlaneOrder computes the indexed attribute values of the given planes,
// the distinct value set per axis and the stable spatial sort permutation.
func (idx *Index) PlaneOrder(positions []PlanePosition) (*PlaneSort, error) {
	values := make([][][]float64, len(positions))
	for i, p := range positions {
		if p.Kind != idx.system {
			return nil, fmt.Errorf("%w: plane %d is %q, index is %q",
				ErrPositionKind, i, p.Kind, idx.system)
		}
		values[i] = idx.axisValues(p)
	}

	distinct := make([][][]float64, idx.NumAxes())
	for axis := range distinct {
		for _, planeValues := range values {
			v := planeValues[axis]
			found := false
			for _, d := range distinct[axis] {
				if floats.Equal(d, v) {
					found = true
					break
				}
			}
			if !found {
				distinct[axis] = append(distinct[axis], v)
			}
		}
		sort.Slice(distinct[axis], func(i, j int) bool {
			return compareVectors(distinct[axis][i], distinct[axis][j]) < 0
		})
	}

	order := make([]int, len(positions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return comparePlanes(values[order[i]], values[order[j]]) < 0
	})

	return &PlaneSort{Order: order, values: values, distinct: distinct}, nil
}

// Values returns the attribute vectors of the given plane in axis order.
func (s *PlaneSort) Values(plane int) [][]float64 {
	return s.values[plane]
}

// Rank returns the 1-based rank of the given plane's value on the given
// axis within the axis's sorted distinct value set.
func (s *PlaneSort) Rank(plane, axis int) (int, error) {
	v := s.values[plane][axis]
	for rank, d := range s.distinct[axis] {
		if floats.Equal(d, v) {
			return rank + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: plane %d axis %d value %v",
		ErrIndexResolution, plane, axis, v)
}

func compareVectors(a, b []float64) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

func comparePlanes(a, b [][]float64) int {
	for axis := range a {
		if c := compareVectors(a[axis], b[axis]); c != 0 {
			return c
		}
	}
	return 0
}
