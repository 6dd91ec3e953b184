package dimension

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// CoordinateSystem identifies the three-dimensional coordinate system that
// plane positions of a segmentation object refer to. It is chosen once at
// object creation from the source image and never changed.
type CoordinateSystem string

const (
	// Patient is the patient-relative coordinate system used by
	// cross-sectional imaging: each plane is addressed by a 3D image
	// position vector.
	Patient CoordinateSystem = "PATIENT"

	// Slide is the slide-relative coordinate system used by tiled
	// microscopy imaging: each plane is addressed by row/column offsets in
	// the total pixel matrix plus physical X/Y/Z offsets.
	Slide CoordinateSystem = "SLIDE"
)

// PlanePosition describes the position of one 2D plane in the coordinate
// system given by Kind. Patient positions use ImagePosition; slide
// positions use the pixel-matrix offsets and the physical offsets.
type PlanePosition struct {
	Kind CoordinateSystem

	// ImagePosition is the X/Y/Z position of the top-left pixel in the
	// patient coordinate system.
	ImagePosition [3]float64

	// RowPosition and ColumnPosition are the 1-based offsets of the
	// top-left pixel of the plane within the total pixel matrix.
	RowPosition    int
	ColumnPosition int

	// XOffset, YOffset and ZOffset are the physical offsets of the plane
	// in the slide coordinate system.
	XOffset float64
	YOffset float64
	ZOffset float64
}

// NewPatientPosition returns a plane position in the patient coordinate
// system.
func NewPatientPosition(x, y, z float64) PlanePosition {
	return PlanePosition{Kind: Patient, ImagePosition: [3]float64{x, y, z}}
}

// NewSlidePosition returns a plane position in the slide coordinate
// system. Row and column are 1-based pixel-matrix offsets.
func NewSlidePosition(row, col int, x, y, z float64) PlanePosition {
	return PlanePosition{
		Kind:           Slide,
		RowPosition:    row,
		ColumnPosition: col,
		XOffset:        x,
		YOffset:        y,
		ZOffset:        z,
	}
}

// Equal reports whether two plane positions describe the same location.
func (p PlanePosition) Equal(other PlanePosition) bool {
	if p.Kind != other.Kind {
		return false
	}
	if p.Kind == Patient {
		return floats.Equal(p.ImagePosition[:], other.ImagePosition[:])
	}
	return p.RowPosition == other.RowPosition &&
		p.ColumnPosition == other.ColumnPosition &&
		p.XOffset == other.XOffset &&
		p.YOffset == other.YOffset &&
		p.ZOffset == other.ZOffset
}

func (p PlanePosition) String() string {
	if p.Kind == Patient {
		return fmt.Sprintf("patient(%g, %g, %g)",
			p.ImagePosition[0], p.ImagePosition[1], p.ImagePosition[2])
	}
	return fmt.Sprintf("slide(r%d c%d, %g, %g, %g)",
		p.RowPosition, p.ColumnPosition, p.XOffset, p.YOffset, p.ZOffset)
}
