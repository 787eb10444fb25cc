package analyzer

import (
	"io"

	"github.com/rwcarlsen/goexif/exif"
)

// Orientation is the clockwise rotation needed to display an image upright
type Orientation int

const (
	Rotate0   Orientation = 0
	Rotate90  Orientation = 90
	Rotate180 Orientation = 180
	Rotate270 Orientation = 270
)

// EXIF orientation tag values that encode a pure rotation. The mirrored
// variants (2, 4, 5, 7) are treated as upright.
const (
	exifOrientationNormal    = 1
	exifOrientationRotate180 = 3
	exifOrientationRotate90  = 6
	exifOrientationRotate270 = 8
)

// OrientationFromEXIF maps a raw EXIF orientation value to a rotation
func OrientationFromEXIF(value int) Orientation {
	switch value {
	case exifOrientationRotate90:
		return Rotate90
	case exifOrientationRotate180:
		return Rotate180
	case exifOrientationRotate270:
		return Rotate270
	default:
		return Rotate0
	}
}

// ReadOrientation extracts the rotation recorded in the image's EXIF data.
// Streams without EXIF, or with an unreadable orientation tag, are upright.
func ReadOrientation(r io.Reader) Orientation {
	x, err := exif.Decode(r)
	if err != nil {
		return Rotate0
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return Rotate0
	}
	value, err := tag.Int(0)
	if err != nil {
		return Rotate0
	}
	return OrientationFromEXIF(value)
}

// Rotate returns the buffer turned clockwise by o. Rotate0 returns the receiver itself.
func (b *PixelBuffer) Rotate(o Orientation) *PixelBuffer {
	width, height := b.Width(), b.Height()

	var rotated *PixelBuffer
	switch o {
	case Rotate90:
		rotated = newPixelBuffer(height, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, bl := b.At(x, y)
				rotated.set(height-1-y, x, r, g, bl)
			}
		}
	case Rotate180:
		rotated = newPixelBuffer(width, height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, bl := b.At(x, y)
				rotated.set(width-1-x, height-1-y, r, g, bl)
			}
		}
	case Rotate270:
		rotated = newPixelBuffer(height, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, bl := b.At(x, y)
				rotated.set(y, width-1-x, r, g, bl)
			}
		}
	default:
		return b
	}
	return rotated
}
