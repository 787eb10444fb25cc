package analyzer

import (
	"gonum.org/v1/gonum/stat"
)

// DepthVariance measures how flat the luminance of the central region is.
// A square patch of half-width min(w,h)/4 around the center is sampled every
// DepthSampleStep pixels; the population variance of the samples is scaled by
// DepthVarianceScale. Lower values mean a flatter, more screen-like center.
func DepthVariance(buf *PixelBuffer) float64 {
	width, height := buf.Width(), buf.Height()
	centerX, centerY := width/2, height/2
	radius := min(width, height) / 4

	var luminances []float64
	for x := centerX - radius; x < centerX+radius; x += DepthSampleStep {
		for y := centerY - radius; y < centerY+radius; y += DepthSampleStep {
			if buf.InBounds(x, y) {
				luminances = append(luminances, buf.lumaAt(x, y))
			}
		}
	}

	if len(luminances) == 0 {
		return 0.0
	}

	variance := stat.PopVariance(luminances, nil)
	return clamp01(variance / DepthVarianceScale)
}
