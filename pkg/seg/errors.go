package seg

import "errors"

// Input validation errors. These are rejected before any mutation: a
// failed AddSegments call leaves the object unchanged.
var (
	// ErrInvalidShape indicates a pixel array that is not a single plane or
	// a stack of planes of the declared dimensions.
	ErrInvalidShape = errors.New("invalid pixel array shape")

	// ErrDimensionMismatch indicates plane dimensions that do not match the
	// object's fixed rows and columns.
	ErrDimensionMismatch = errors.New("pixel array dimensions do not match segmentation")

	// ErrSegmentNumbering indicates descriptor numbers that are not
	// contiguous ascending by one, or that do not continue from the
	// existing segments.
	ErrSegmentNumbering = errors.New("invalid segment numbering")

	// ErrDuplicateSegment indicates a descriptor whose number is already
	// present in the segmentation.
	ErrDuplicateSegment = errors.New("segment already exists")

	// ErrUndescribedSegment indicates pixel values that belong to segments
	// without a descriptor in the current call.
	ErrUndescribedSegment = errors.New("pixel array contains undescribed segments")

	// ErrTooManyDescriptors indicates more than one descriptor supplied
	// with a fractional pixel array.
	ErrTooManyDescriptors = errors.New("fractional pixel arrays encode a single segment")

	// ErrFractionRange indicates fractional pixel values outside [0, 1].
	ErrFractionRange = errors.New("fractional pixel values must lie in [0, 1]")

	// ErrNonBinaryFraction indicates fractional pixel values other than 0.0
	// and 1.0 in a binary segmentation.
	ErrNonBinaryFraction = errors.New("binary segmentations require fraction values of exactly 0 or 1")

	// ErrPlaneCountMismatch indicates a plane position count that does not
	// match the number of planes in the pixel array.
	ErrPlaneCountMismatch = errors.New("plane position count does not match pixel array")

	// ErrDescriptor indicates an invalid segment descriptor.
	ErrDescriptor = errors.New("invalid segment descriptor")

	// ErrSourceImage indicates invalid or inconsistent source image
	// descriptors.
	ErrSourceImage = errors.New("invalid source images")
)

// Integrity and query errors.
var (
	// ErrIndexingUnavailable indicates that the source-frame query path is
	// disabled, either because some frames reference zero or multiple
	// source identities or because spatial locations are not guaranteed
	// preserved.
	ErrIndexingUnavailable = errors.New("indexing by source frame is not available")

	// ErrDanglingReference indicates a frame referencing a source instance
	// that is not part of the known source set. This signals a malformed
	// object graph.
	ErrDanglingReference = errors.New("frame references unknown source instance")

	// ErrNonUniqueIndex indicates lookup table rows whose source/segment
	// pairs are not unique, which makes resolve queries ambiguous.
	ErrNonUniqueIndex = errors.New("source and segment do not uniquely identify frames")

	// ErrUnknownSource indicates a query for a source instance outside the
	// known source set.
	ErrUnknownSource = errors.New("unknown source instance")

	// ErrUnknownSegment indicates a query for a segment number outside the
	// valid segment range.
	ErrUnknownSegment = errors.New("unknown segment number")

	// ErrFrameRange indicates a frame number outside the stored frame
	// range.
	ErrFrameRange = errors.New("frame number out of range")

	// ErrCombineNotSupported indicates a combine request on a segmentation
	// that is not binary.
	ErrCombineNotSupported = errors.New("combining segments requires a binary segmentation")

	// ErrOverlap indicates segments that share a positive pixel and
	// therefore cannot be combined into a label map.
	ErrOverlap = errors.New("segments overlap and cannot be combined")
)
