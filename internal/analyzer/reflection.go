package analyzer

// DetectScreenReflection looks for sustained bright clusters typical of glare
// on a display. A visited point counts as a bright spot only if it is itself
// brighter than BrightCandidateThreshold and its 7x7 neighbourhood averages
// above NeighborhoodThreshold; isolated specular highlights fail the second
// test.
func DetectScreenReflection(buf *PixelBuffer) bool {
	width, height := buf.Width(), buf.Height()

	brightSpots, visited := 0, 0
	for x := 0; x < width; x += ReflectionSampleStep {
		for y := 0; y < height; y += ReflectionSampleStep {
			visited++
			if buf.brightnessAt(x, y) <= BrightCandidateThreshold {
				continue
			}
			if NeighborhoodBrightness(buf, x, y, NeighborhoodRadius) > NeighborhoodThreshold {
				brightSpots++
			}
		}
	}

	return visited > 0 && float64(brightSpots)/float64(visited) > BrightSpotRatio
}

// NeighborhoodBrightness averages channel-mean brightness over the square of
// the given radius around (centerX, centerY), clipped to the buffer.
func NeighborhoodBrightness(buf *PixelBuffer, centerX, centerY, radius int) float64 {
	var total float64
	count := 0
	for x := centerX - radius; x <= centerX+radius; x++ {
		for y := centerY - radius; y <= centerY+radius; y++ {
			if buf.InBounds(x, y) {
				total += buf.brightnessAt(x, y)
				count++
			}
		}
	}

	if count == 0 {
		return 0.0
	}
	return total / float64(count)
}
