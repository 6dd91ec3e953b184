// Package bitpack provides LSB-first bit packing for single-bit pixel
// samples, matching the DICOM convention for 1-bit segmentation pixel data:
// bit 0 of the first byte holds the first sample.
package bitpack

import "fmt"

// Pack packs the given samples eight to a byte, least significant bit first.
// Every sample must be 0 or 1 and the sample count must be a multiple of 8.
func Pack(samples []uint16) ([]byte, error) {
	if len(samples)%8 != 0 {
		return nil, fmt.Errorf("cannot bit pack %d samples: not a multiple of 8", len(samples))
	}
	packed := make([]byte, len(samples)/8)
	for i, s := range samples {
		if s > 1 {
			return nil, fmt.Errorf("sample %d has value %d: single-bit samples must be 0 or 1", i, s)
		}
		if s == 1 {
			packed[i/8] |= 1 << uint(i%8)
		}
	}
	return packed, nil
}

// Unpack expands packed bytes back into one sample per bit, least
// significant bit first. It is the exact inverse of Pack.
func Unpack(packed []byte) []uint16 {
	samples := make([]uint16, len(packed)*8)
	for i := range samples {
		samples[i] = uint16((packed[i/8] >> uint(i%8)) & 1)
	}
	return samples
}
