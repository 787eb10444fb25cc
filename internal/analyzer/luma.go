package analyzer

import "math"

// ITU-R BT.601 luma weights
const (
	lumaRed   = 0.299
	lumaGreen = 0.587
	lumaBlue  = 0.114
)

// Luma converts an 8-bit RGB triple to a grayscale intensity in [0,255]
func Luma(r, g, b uint8) float64 {
	return lumaRed*float64(r) + lumaGreen*float64(g) + lumaBlue*float64(b)
}

// lumaAt is Luma of the pixel at (x, y)
func (b *PixelBuffer) lumaAt(x, y int) float64 {
	return Luma(b.At(x, y))
}

// brightnessAt is the plain mean of the three channels at (x, y)
func (b *PixelBuffer) brightnessAt(x, y int) float64 {
	r, g, bl := b.At(x, y)
	return (float64(r) + float64(g) + float64(bl)) / 3.0
}

// clamp01 limits v to [0,1]; NaN collapses to 0
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
