package analyzer

import "math"

// EdgeSharpness is the mean Sobel gradient magnitude over every column and
// every EdgeRowStep-th row, scaled to [0,1]. Re-photographed screens usually
// come out softer than real edges.
//
// Only the red channel feeds the kernels, unlike the other analyzers which
// use luma. Kept as is for compatibility with previously reported values.
func EdgeSharpness(buf *PixelBuffer) float64 {
	width, height := buf.Width(), buf.Height()

	var totalGradient float64
	count := 0
	for x := 1; x < width-1; x++ {
		for y := 1; y < height-1; y += EdgeRowStep {
			gx, gy := sobelRed(buf, x, y)
			totalGradient += math.Sqrt(float64(gx*gx + gy*gy))
			count++
		}
	}

	if count == 0 {
		return 0.0
	}
	return clamp01(totalGradient / float64(count) / EdgeMaxValue)
}

// sobelRed applies the 3x3 Sobel kernels to the red channel around (x, y).
// Neighbours outside the buffer read as 0.
func sobelRed(buf *PixelBuffer, x, y int) (gx, gy int) {
	var p [3][3]int // p[row][col], rows y-1..y+1, cols x-1..x+1
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			p[row][col] = buf.Red(x+col-1, y+row-1)
		}
	}

	gx = -p[0][0] - 2*p[1][0] - p[2][0] + p[0][2] + 2*p[1][2] + p[2][2]
	gy = -p[0][0] - 2*p[0][1] - p[0][2] + p[2][0] + 2*p[2][1] + p[2][2]
	return gx, gy
}
