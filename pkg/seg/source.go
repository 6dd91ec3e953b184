package seg

import (
	"fmt"

	"dicomseg/pkg/dimension"
)

// SourceImage describes one image a segmentation was derived from. It is
// the narrow interface to the surrounding object model: parsing the actual
// image container is out of scope.
type SourceImage struct {
	SOPInstanceUID      string
	SOPClassUID         string
	StudyInstanceUID    string
	SeriesInstanceUID   string
	FrameOfReferenceUID string

	Rows    int
	Columns int

	// NumberOfFrames is greater than 1 for multi-frame images. Zero is
	// treated as a single-frame image.
	NumberOfFrames int

	// CoordinateSystem is the coordinate system the image's plane
	// positions refer to. Empty defaults to Patient.
	CoordinateSystem dimension.CoordinateSystem

	// Orientation holds the six direction cosines of the image planes.
	Orientation []float64

	// ImagePosition is the position of a single-frame image in the
	// patient coordinate system.
	ImagePosition [3]float64

	// FramePositions holds the per-frame plane positions of a multi-frame
	// image, in frame order.
	FramePositions []dimension.PlanePosition

	// Pixel measures.
	PixelSpacing         [2]float64
	SliceThickness       float64
	SpacingBetweenSlices float64
}

func (s SourceImage) multiframe() bool {
	return s.NumberOfFrames > 1
}

func (s SourceImage) coordinateSystem() dimension.CoordinateSystem {
	if s.CoordinateSystem == "" {
		return dimension.Patient
	}
	return s.CoordinateSystem
}

// sourcePlanePositions derives the default one-per-source-plane positions:
// the per-frame positions of a single multi-frame image, or one position
// per image for a series of single-frame images (patient system only).
// Objects loaded from their stored form carry no source images and cannot
// provide default positions.
func sourcePlanePositions(images []SourceImage) ([]dimension.PlanePosition, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no source image metadata available", ErrSourceImage)
	}
	if images[0].multiframe() {
		if len(images[0].FramePositions) != images[0].NumberOfFrames {
			return nil, fmt.Errorf("%w: multi-frame source declares %d frames but carries %d positions",
				ErrSourceImage, images[0].NumberOfFrames, len(images[0].FramePositions))
		}
		return images[0].FramePositions, nil
	}
	positions := make([]dimension.PlanePosition, len(images))
	for i, img := range images {
		if img.coordinateSystem() != dimension.Patient {
			return nil, fmt.Errorf("%w: series of single-frame images requires the patient coordinate system",
				ErrSourceImage)
		}
		positions[i] = dimension.NewPatientPosition(
			img.ImagePosition[0], img.ImagePosition[1], img.ImagePosition[2])
	}
	return positions, nil
}

// PixelMeasures describes the physical spacing of the segmentation's
// pixels.
type PixelMeasures struct {
	PixelSpacing         [2]float64
	SliceThickness       float64
	SpacingBetweenSlices float64
}

func measuresFromSource(src SourceImage) PixelMeasures {
	return PixelMeasures{
		PixelSpacing:         src.PixelSpacing,
		SliceThickness:       src.SliceThickness,
		SpacingBetweenSlices: src.SpacingBetweenSlices,
	}
}
