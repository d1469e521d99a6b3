package assets

import (
	"bytes"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageInfo describes an embedded image without decoding its pixels.
// Texture decoding itself is a downstream concern; the pipeline only
// reports what it found so the host can size and route the data.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// ProbeImage reads just the header of an embedded png, jpeg or webp buffer.
func ProbeImage(data []byte) (*ImageInfo, bool) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	return &ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, true
}
