package seg

import (
	"fmt"
	"sort"
)

// PixelKind is the closed set of sample interpretations a pixel array can
// carry. The kind is resolved once at the input boundary and dispatched by
// value thereafter.
type PixelKind int

const (
	// KindBoolean marks presence masks: every sample is false or true.
	KindBoolean PixelKind = iota

	// KindLabel marks label maps: every positive sample value names the
	// segment the pixel belongs to.
	KindLabel

	// KindFraction marks fractional masks: every sample is a probability
	// or occupancy fraction in [0, 1].
	KindFraction
)

func (k PixelKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindLabel:
		return "label"
	case KindFraction:
		return "fraction"
	default:
		return fmt.Sprintf("PixelKind(%d)", int(k))
	}
}

// PixelArray is a dense stack of 2D mask planes. Arrays are constructed
// through one of the New*Pixels constructors, which fixes the kind and
// validates the shape.
type PixelArray struct {
	kind      PixelKind
	planes    int
	rows      int
	cols      int
	labels    []uint16
	fractions []float64
}

func validateShape(length, planes, rows, cols int) error {
	if planes < 1 || rows < 1 || cols < 1 {
		return fmt.Errorf("%w: %d plane(s) of %dx%d", ErrInvalidShape, planes, rows, cols)
	}
	if length != planes*rows*cols {
		return fmt.Errorf("%w: %d samples for %d plane(s) of %dx%d",
			ErrInvalidShape, length, planes, rows, cols)
	}
	return nil
}

// NewBooleanPixels wraps a row-major stack of presence masks.
func NewBooleanPixels(data []bool, planes, rows, cols int) (*PixelArray, error) {
	if err := validateShape(len(data), planes, rows, cols); err != nil {
		return nil, err
	}
	labels := make([]uint16, len(data))
	for i, v := range data {
		if v {
			labels[i] = 1
		}
	}
	return &PixelArray{kind: KindBoolean, planes: planes, rows: rows, cols: cols, labels: labels}, nil
}

// NewLabelPixels wraps a row-major stack of label maps.
func NewLabelPixels(data []uint16, planes, rows, cols int) (*PixelArray, error) {
	if err := validateShape(len(data), planes, rows, cols); err != nil {
		return nil, err
	}
	labels := make([]uint16, len(data))
	copy(labels, data)
	return &PixelArray{kind: KindLabel, planes: planes, rows: rows, cols: cols, labels: labels}, nil
}

// NewFractionPixels wraps a row-major stack of fractional masks.
func NewFractionPixels(data []float64, planes, rows, cols int) (*PixelArray, error) {
	if err := validateShape(len(data), planes, rows, cols); err != nil {
		return nil, err
	}
	fractions := make([]float64, len(data))
	copy(fractions, data)
	return &PixelArray{kind: KindFraction, planes: planes, rows: rows, cols: cols, fractions: fractions}, nil
}

// Kind returns the sample interpretation of the array.
func (a *PixelArray) Kind() PixelKind { return a.kind }

// Planes returns the number of 2D planes in the stack.
func (a *PixelArray) Planes() int { return a.planes }

// Rows returns the plane height in pixels.
func (a *PixelArray) Rows() int { return a.rows }

// Cols returns the plane width in pixels.
func (a *PixelArray) Cols() int { return a.cols }

// distinctPositiveLabels returns the sorted distinct positive values of a
// boolean or label array.
func (a *PixelArray) distinctPositiveLabels() []uint16 {
	seen := make(map[uint16]bool)
	for _, v := range a.labels {
		if v > 0 {
			seen[v] = true
		}
	}
	values := make([]uint16, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return values
}

// fractionBounds returns the minimum and maximum fraction values and
// whether any value is strictly between 0 and 1.
func (a *PixelArray) fractionBounds() (min, max float64, nonBinary bool) {
	if len(a.fractions) == 0 {
		return 0, 0, false
	}
	min, max = a.fractions[0], a.fractions[0]
	for _, v := range a.fractions {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		if v > 0 && v < 1 {
			nonBinary = true
		}
	}
	return min, max, nonBinary
}

// planeSamples extracts the samples of one plane after classification
// against a segment: label values are turned into a binary mask by
// equality against target, fractions are scaled to [0, maxValue] and
// rounded to the nearest integer.
func (a *PixelArray) planeSamples(plane int, target uint16, maxValue int) []uint16 {
	n := a.rows * a.cols
	out := make([]uint16, n)
	base := plane * n
	if a.kind == KindFraction {
		for i := 0; i < n; i++ {
			out[i] = uint16(a.fractions[base+i]*float64(maxValue) + 0.5)
		}
		return out
	}
	for i := 0; i < n; i++ {
		if a.labels[base+i] == target {
			out[i] = 1
		}
	}
	return out
}

// planeEmpty reports whether a plane contributes no positive sample for
// the given classification target.
func (a *PixelArray) planeEmpty(plane int, target uint16) bool {
	n := a.rows * a.cols
	base := plane * n
	if a.kind == KindFraction {
		for i := 0; i < n; i++ {
			if a.fractions[base+i] > 0 {
				return false
			}
		}
		return true
	}
	for i := 0; i < n; i++ {
		if a.labels[base+i] == target && target != 0 {
			return false
		}
	}
	return true
}
