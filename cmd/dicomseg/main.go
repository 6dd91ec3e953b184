package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"dicomseg/pkg/config"
	"dicomseg/pkg/seg"
)

func main() {
	// Parse command line arguments
	inputPath := flag.String("input", "", "Raw 8-bit label map volume file (plane-major order)")
	outputPath := flag.String("output", "segmentation.bin", "Output pixel data filename")
	configPath := flag.String("config", "dicomseg.yaml", "Configuration file path")
	rows := flag.Int("rows", 0, "Number of rows per plane")
	cols := flag.Int("cols", 0, "Number of columns per plane")
	planes := flag.Int("planes", 0, "Number of planes in the volume")
	segType := flag.String("type", "", "Segmentation type: BINARY or FRACTIONAL (default: from config)")
	encoding := flag.String("encoding", "", "Frame encoding for encapsulated output (default: from config)")
	sliceGap := flag.Float64("gap", 1.0, "Inter-plane gap in mm")
	flag.Parse()

	// Validate inputs
	if *inputPath == "" || *rows < 1 || *cols < 1 || *planes < 1 {
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration, command line flags take precedence
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *segType != "" {
		cfg.Segmentation.Type = *segType
	}
	if *encoding != "" {
		cfg.Segmentation.Encoding = *encoding
	}

	fmt.Println("================================")
	fmt.Println("MULTI-FRAME SEGMENTATION ENCODER")
	fmt.Println("================================")

	// Read the label map volume
	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Failed to read input volume: %v", err)
	}
	if expected := *planes * *rows * *cols; len(data) != expected {
		log.Fatalf("Input volume holds %d samples, expected %d (%dx%dx%d)",
			len(data), expected, *planes, *rows, *cols)
	}
	labels := make([]uint16, len(data))
	maxLabel := 0
	for i, b := range data {
		labels[i] = uint16(b)
		if int(b) > maxLabel {
			maxLabel = int(b)
		}
	}
	if maxLabel == 0 {
		log.Fatalf("Input volume contains no labeled pixels")
	}
	arr, err := seg.NewLabelPixels(labels, *planes, *rows, *cols)
	if err != nil {
		log.Fatalf("Invalid label map volume: %v", err)
	}

	// Synthesize one source image per plane, stacked along the z axis
	sources := make([]seg.SourceImage, *planes)
	for i := range sources {
		sources[i] = seg.SourceImage{
			SOPInstanceUID:    fmt.Sprintf("2.25.%d.%d", time.Now().Unix(), i+1),
			SOPClassUID:       "1.2.840.10008.5.1.4.1.1.4",
			StudyInstanceUID:  "2.25.1",
			SeriesInstanceUID: "2.25.2",
			Rows:              *rows,
			Columns:           *cols,
			Orientation:       []float64{1, 0, 0, 0, 1, 0},
			ImagePosition:     [3]float64{0, 0, float64(i) * *sliceGap},
			SliceThickness:    *sliceGap,
		}
	}

	descriptors := make([]seg.SegmentDescriptor, maxLabel)
	for i := range descriptors {
		descriptors[i] = seg.SegmentDescriptor{
			Number:        i + 1,
			Label:         fmt.Sprintf("label %d", i+1),
			AlgorithmType: seg.AlgorithmManual,
		}
	}

	params := &seg.Params{
		SourceImages:       sources,
		Type:               seg.Type(cfg.Segmentation.Type),
		FractionalType:     seg.FractionalType(cfg.Segmentation.FractionalType),
		MaxFractionalValue: cfg.Segmentation.MaxFractionalValue,
		Encoding:           cfg.Segmentation.Encoding,
	}
	segmentation, err := seg.New(params)
	if err != nil {
		log.Fatalf("Failed to create segmentation: %v", err)
	}

	fmt.Printf("Encoding %d planes of %dx%d with %d segments...\n",
		*planes, *rows, *cols, maxLabel)
	startTime := time.Now()
	if err := segmentation.AddSegments(arr, descriptors, nil); err != nil {
		log.Fatalf("Encoding failed: %v", err)
	}
	encodingTime := time.Since(startTime)

	fmt.Printf("\nEncoding completed in %.3f seconds\n", encodingTime.Seconds())
	fmt.Printf("Stored frames: %d\n\n", segmentation.NumberOfFrames())

	fmt.Printf("Per-segment coverage:\n")
	fmt.Printf("=====================\n")
	for n := 1; n <= segmentation.NumberOfSegments(); n++ {
		stats, err := segmentation.CoverageStats(n)
		if err != nil {
			log.Fatalf("Failed to compute coverage of segment %d: %v", n, err)
		}
		fmt.Printf("Segment %d: %d frames, mean coverage %.4f (min %.4f, max %.4f, stddev %.4f)\n",
			n, stats.FrameCount, stats.MeanCoverage,
			stats.MinCoverage, stats.MaxCoverage, stats.StdDevCoverage)
	}

	// Write the encoded frame bytes
	var out []byte
	if items := segmentation.FrameItems(); items != nil {
		for _, item := range items {
			out = append(out, item...)
		}
	} else {
		out = segmentation.PixelData()
	}
	if err := os.WriteFile(*outputPath, out, 0644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	fmt.Printf("\nEncoded pixel data saved to: %s (%d bytes)\n", *outputPath, len(out))
}
