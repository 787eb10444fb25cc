package analyzer

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PixelUniformity scores how uniform local luminance gradients are across a
// sparse grid. Photographed screens tend to produce consistent gradients, so
// higher values are more screen-like.
func PixelUniformity(buf *PixelBuffer) float64 {
	width, height := buf.Width(), buf.Height()

	var gradients []float64
	for x := 1; x < width-1; x += UniformitySampleStep {
		for y := 1; y < height-1; y += UniformitySampleStep {
			gradients = append(gradients, centralGradient(buf, x, y))
		}
	}

	if len(gradients) == 0 {
		return NeutralUniformity
	}

	gradientVariance := stat.PopVariance(gradients, nil)
	return clamp01(1.0 - gradientVariance/GradientVarianceScale)
}

// centralGradient is the central-difference luma gradient magnitude at (x, y).
// All four neighbours must be in bounds.
func centralGradient(buf *PixelBuffer, x, y int) float64 {
	dx := buf.lumaAt(x+1, y) - buf.lumaAt(x-1, y)
	dy := buf.lumaAt(x, y+1) - buf.lumaAt(x, y-1)
	return math.Sqrt(dx*dx + dy*dy)
}
