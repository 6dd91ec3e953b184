package frame

import (
	"fmt"
	"sort"
	"sync"
)

// Codec compresses and decompresses the raw samples of a single plane.
// Implementations must be side-effect free and Decode must be the exact
// inverse of Encode.
type Codec interface {
	// Name returns the identifier the codec is registered under.
	Name() string

	// Encode converts the raw samples of one plane into an opaque byte blob.
	Encode(samples []uint16, rows, cols int, f Format) ([]byte, error)

	// Decode converts a byte blob produced by Encode back into samples.
	Decode(data []byte, rows, cols int, f Format) ([]uint16, error)
}

// ChromaTransformDecoder is implemented by codecs that natively assume a
// luma/chroma color transform during decoding. DecodeFrame uses it to
// suppress the implicit transform for frames stored with photometric
// interpretation RGB.
type ChromaTransformDecoder interface {
	AssumesChromaTransform() bool
	DecodeWithoutColorTransform(data []byte, rows, cols int, f Format) ([]uint16, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Codec)
)

// Register makes a codec available to EncodeFrames and DecodeFrame under
// its name. Registering a second codec with the same name replaces the
// first.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Name()] = c
}

// Lookup returns the codec registered under the given name.
func Lookup(name string) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: no codec registered under %q", ErrUnsupportedEncoding, name)
	}
	return c, nil
}

// Encodings returns the names of all registered codecs in sorted order.
func Encodings() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
