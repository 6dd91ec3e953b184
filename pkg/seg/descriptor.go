package seg

import "fmt"

// Code is an opaque coded concept value drawn from an external vocabulary.
// The core treats codes as value objects with equality comparison only;
// vocabulary validation belongs to the surrounding object model.
type Code struct {
	Value            string
	SchemeDesignator string
	Meaning          string
	SchemeVersion    string
}

// Equal reports whether two codes denote the same concept. The meaning is
// descriptive and does not participate in identity.
func (c Code) Equal(other Code) bool {
	return c.Value == other.Value &&
		c.SchemeDesignator == other.SchemeDesignator &&
		c.SchemeVersion == other.SchemeVersion
}

// IsZero reports whether the code is unset.
func (c Code) IsZero() bool {
	return c == Code{}
}

// AlgorithmType describes how a segment was produced.
type AlgorithmType string

const (
	AlgorithmAutomatic     AlgorithmType = "AUTOMATIC"
	AlgorithmSemiautomatic AlgorithmType = "SEMIAUTOMATIC"
	AlgorithmManual        AlgorithmType = "MANUAL"
)

// SegmentDescriptor describes one segment of a segmentation object. It is
// created when the segment is first added and immutable thereafter.
type SegmentDescriptor struct {
	// Number is the positive segment number. Numbers are dense and
	// contiguous starting at 1 within a segmentation object.
	Number int

	// Label is a human-readable name of the segment.
	Label string

	// PropertyCategory and PropertyType classify what the segment
	// represents.
	PropertyCategory Code
	PropertyType     Code

	// AlgorithmType states how the segment was produced. AlgorithmName
	// identifies the algorithm and is required unless the type is MANUAL.
	AlgorithmType AlgorithmType
	AlgorithmName string

	// TrackingID and TrackingUID identify the segment across objects.
	// Both must be provided together or not at all.
	TrackingID  string
	TrackingUID string

	// AnatomicRegions and AnatomicStructures locate the segment
	// anatomically.
	AnatomicRegions    []Code
	AnatomicStructures []Code
}

// Validate checks the descriptor's internal consistency.
func (d SegmentDescriptor) Validate() error {
	if d.Number < 1 {
		return fmt.Errorf("%w: segment number must be positive, got %d", ErrDescriptor, d.Number)
	}
	switch d.AlgorithmType {
	case AlgorithmAutomatic, AlgorithmSemiautomatic, AlgorithmManual:
	default:
		return fmt.Errorf("%w: unknown algorithm type %q", ErrDescriptor, d.AlgorithmType)
	}
	if d.AlgorithmType != AlgorithmManual && d.AlgorithmName == "" {
		return fmt.Errorf("%w: algorithm name is required unless the algorithm type is MANUAL",
			ErrDescriptor)
	}
	if (d.TrackingID == "") != (d.TrackingUID == "") {
		return fmt.Errorf("%w: tracking ID and tracking UID must both be provided", ErrDescriptor)
	}
	return nil
}

// SegmentFilter selects segments by any combination of criteria. Zero
// fields do not filter.
type SegmentFilter struct {
	Label            string
	PropertyCategory Code
	PropertyType     Code
	AlgorithmType    AlgorithmType
	TrackingID       string
	TrackingUID      string
}

func (f SegmentFilter) matches(d SegmentDescriptor) bool {
	if f.Label != "" && d.Label != f.Label {
		return false
	}
	if !f.PropertyCategory.IsZero() && !d.PropertyCategory.Equal(f.PropertyCategory) {
		return false
	}
	if !f.PropertyType.IsZero() && !d.PropertyType.Equal(f.PropertyType) {
		return false
	}
	if f.AlgorithmType != "" && d.AlgorithmType != f.AlgorithmType {
		return false
	}
	if f.TrackingID != "" && d.TrackingID != f.TrackingID {
		return false
	}
	if f.TrackingUID != "" && d.TrackingUID != f.TrackingUID {
		return false
	}
	return true
}
