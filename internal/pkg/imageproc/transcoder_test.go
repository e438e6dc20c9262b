package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	p := filepath.Join(t.TempDir(), "src.png")
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return p
}

func transcode(t *testing.T, src string) image.Config {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, NewJPEGTranscoder().Transcode(src, &out))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return cfg
}

func TestTranscodeShrinksWideImage(t *testing.T) {
	cfg := transcode(t, writePNG(t, 2560, 1000))
	require.Equal(t, 1280, cfg.Width)
	require.Equal(t, 500, cfg.Height)
}

func TestTranscodeShrinksTallImage(t *testing.T) {
	cfg := transcode(t, writePNG(t, 600, 1920))
	require.Equal(t, 300, cfg.Width)
	require.Equal(t, 960, cfg.Height)
}

func TestTranscodeNeverUpscales(t *testing.T) {
	cfg := transcode(t, writePNG(t, 320, 200))
	require.Equal(t, 320, cfg.Width)
	require.Equal(t, 200, cfg.Height)
}

// writeOrientedJPEG encodes a w x h JPEG and inserts an EXIF APP1 segment
// right after SOI whose IFD0 holds a single Orientation tag.
func writeOrientedJPEG(t *testing.T, w, h int, orientation uint16) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	raw := buf.Bytes()

	// Big-endian TIFF header with IFD0 at offset 8, one SHORT entry and no
	// next IFD.
	exif := []byte{
		'E', 'x', 'i', 'f', 0, 0,
		'M', 'M', 0, 0x2a, 0, 0, 0, 8,
		0, 1,
		0x01, 0x12, 0, 3, 0, 0, 0, 1, byte(orientation >> 8), byte(orientation), 0, 0,
		0, 0, 0, 0,
	}
	size := len(exif) + 2
	app1 := append([]byte{0xff, 0xe1, byte(size >> 8), byte(size)}, exif...)

	out := append([]byte{}, raw[:2]...)
	out = append(out, app1...)
	out = append(out, raw[2:]...)

	p := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(p, out, 0o600))
	return p
}

func TestTranscodeAppliesExifOrientation(t *testing.T) {
	cases := []struct {
		name         string
		w, h         int
		orientation  uint16
		wantW, wantH int
	}{
		{"upright", 40, 20, 1, 40, 20},
		{"rotated 90 cw", 40, 20, 6, 20, 40},
		{"rotated 270 cw", 40, 20, 8, 20, 40},
		{"rotated 180", 40, 20, 3, 40, 20},
		// Rotation happens before fitting, so the tall result is bounded by height.
		{"rotated then fitted", 2000, 1000, 6, 480, 960},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := transcode(t, writeOrientedJPEG(t, tc.w, tc.h, tc.orientation))
			require.Equal(t, tc.wantW, cfg.Width)
			require.Equal(t, tc.wantH, cfg.Height)
		})
	}
}

func TestTranscodeRejectsNonImage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(p, []byte("definitely not pixels"), 0o600))

	var out bytes.Buffer
	err := NewJPEGTranscoder().Transcode(p, &out)
	require.ErrorContains(t, err, "decode image")
	require.Zero(t, out.Len())
}

func TestPlaceholder(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Placeholder(&out, 64, 48, color.RGBA{G: 120, A: 255}))

	img, err := jpeg.Decode(&out)
	require.NoError(t, err)
	require.Equal(t, 64, img.Bounds().Dx())
	require.Equal(t, 48, img.Bounds().Dy())
}
