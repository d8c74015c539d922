package media

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"time"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension bounds each axis of a processed image. Smaller images are
	// never upscaled.
	MaxDimension = 1280
	// JPEGQuality is the fixed re-encode quality.
	JPEGQuality = 80
)

// Processor re-encodes uploaded images to a bounded resolution and fixed
// quality, producing blobs small enough for the content repository.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Process decodes an image, scales it to fit within MaxDimension per axis
// while preserving aspect ratio, and re-encodes it as JPEG. Corrupt input
// propagates as a decode error.
func (p *Processor) Process(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > MaxDimension || height > MaxDimension {
		scale := float64(MaxDimension) / float64(width)
		if height > width {
			scale = float64(MaxDimension) / float64(height)
		}
		dstW := int(float64(width) * scale)
		dstH := int(float64(height) * scale)
		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename generates a collision-resistant image filename from the current
// time and a random suffix, e.g. 1724668800_a1b2c3d4.jpg.
func Filename() string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%d_%s.jpg", time.Now().Unix(), hex.EncodeToString(suffix))
}
