package analyzer

import (
	"image"
	"image/draw"
)

// PixelBuffer is an immutable width x height grid of 8-bit RGB pixels stored
// row-major, three bytes per pixel
type PixelBuffer struct {
	width  int
	height int
	pix    []uint8
}

// NewPixelBuffer copies img into a new buffer. Alpha is dropped after
// un-premultiplying, so translucent pixels keep their straight color.
func NewPixelBuffer(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
		bounds = nrgba.Bounds()
	}

	buf := newPixelBuffer(width, height)
	for y := 0; y < height; y++ {
		row := nrgba.Pix[nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			buf.pix[i] = row[x*4]
			buf.pix[i+1] = row[x*4+1]
			buf.pix[i+2] = row[x*4+2]
		}
	}
	return buf
}

func newPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height*3),
	}
}

// Width returns the number of columns
func (b *PixelBuffer) Width() int { return b.width }

// Height returns the number of rows
func (b *PixelBuffer) Height() int { return b.height }

// InBounds reports whether (x, y) addresses a pixel of the buffer
func (b *PixelBuffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the RGB triple at (x, y). Callers must stay in bounds.
func (b *PixelBuffer) At(x, y int) (r, g, bl uint8) {
	i := (y*b.width + x) * 3
	return b.pix[i], b.pix[i+1], b.pix[i+2]
}

// Red returns only the red channel at (x, y), or 0 outside the buffer
func (b *PixelBuffer) Red(x, y int) int {
	if !b.InBounds(x, y) {
		return 0
	}
	return int(b.pix[(y*b.width+x)*3])
}

func (b *PixelBuffer) set(x, y int, r, g, bl uint8) {
	i := (y*b.width + x) * 3
	b.pix[i], b.pix[i+1], b.pix[i+2] = r, g, bl
}
