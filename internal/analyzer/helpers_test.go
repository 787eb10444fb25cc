package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImage creates a uniformly filled test image
func createTestImage(width, height int, fillColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fillColor)
		}
	}
	return img
}

// fillRect paints the inclusive rectangle [x0,x1] x [y0,y1]
func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// createCheckerboard alternates two red levels in square cells of the given
// size. A cell size of 0 yields a flat low-level image.
func createCheckerboard(size, cell int, low, high uint8) *image.RGBA {
	img := createTestImage(size, size, color.RGBA{low, 0, 0, 255})
	if cell <= 0 {
		return img
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 1 {
				img.SetRGBA(x, y, color.RGBA{high, 0, 0, 255})
			}
		}
	}
	return img
}

// createSplitImage paints the left half of the image with left and the
// right half with right
func createSplitImage(width, height int, left, right color.RGBA) *image.RGBA {
	img := createTestImage(width, height, right)
	fillRect(img, 0, 0, width/2-1, height-1, left)
	return img
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}
	return buf.Bytes()
}

// withEXIFOrientation splices a minimal little-endian EXIF APP1 segment
// carrying only the orientation tag right after the JPEG SOI marker
func withEXIFOrientation(jpegData []byte, orientation uint16) []byte {
	app1 := []byte{
		0xFF, 0xE1, 0x00, 0x22, // APP1, length 34
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00, // TIFF header, IFD0 at 8
		0x01, 0x00, // one entry
		0x12, 0x01, 0x03, 0x00, 0x01, 0x00, 0x00, 0x00, // 0x0112 SHORT x1
		byte(orientation), byte(orientation >> 8), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}

	out := make([]byte, 0, len(jpegData)+len(app1))
	out = append(out, jpegData[:2]...)
	out = append(out, app1...)
	return append(out, jpegData[2:]...)
}
