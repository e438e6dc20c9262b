// Package imageproc normalizes uploaded school photos into bounded JPEGs.
package imageproc

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	// Registers the WebP decoder with image.Decode; imaging covers the rest.
	_ "golang.org/x/image/webp"
)

const (
	MaxWidth    = 1280
	MaxHeight   = 960
	JPEGQuality = 80
)

// Transcoder decodes an image file and writes a normalized JPEG.
type Transcoder interface {
	Transcode(srcPath string, dst io.Writer) error
}

// JPEGTranscoder fits images inside a bounding box and re-encodes them as JPEG.
type JPEGTranscoder struct {
	maxWidth, maxHeight int
	quality             int
}

// NewJPEGTranscoder returns a transcoder using the directory's fixed limits.
func NewJPEGTranscoder() *JPEGTranscoder {
	return &JPEGTranscoder{maxWidth: MaxWidth, maxHeight: MaxHeight, quality: JPEGQuality}
}

// Transcode applies EXIF orientation, shrinks the image to fit the bounding
// box keeping its aspect ratio (smaller images are left at their size) and
// writes it as JPEG.
func (t *JPEGTranscoder) Transcode(srcPath string, dst io.Writer) error {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	img = Fit(img, t.maxWidth, t.maxHeight)

	if err := imaging.Encode(dst, img, imaging.JPEG, imaging.JPEGQuality(t.quality)); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

// Fit scales img down to fit within maxW x maxH. It never upscales.
func Fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// Placeholder renders a solid-colour JPEG of the given size. Used for demo data.
func Placeholder(dst io.Writer, width, height int, c color.Color) error {
	img := imaging.New(width, height, c)
	return imaging.Encode(dst, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
}
