package analyzer

// Empirical tuning values. Changing any of them changes the feature values
// reported for the same photograph.
const (
	// SubsampleFactor is the linear downscale applied while loading.
	SubsampleFactor = 4

	DepthSampleStep    = 10
	DepthVarianceScale = 10000.0

	UniformitySampleStep  = 8
	GradientVarianceScale = 2000.0
	// NeutralUniformity is reported when the buffer is too small to sample.
	NeutralUniformity = 0.5

	ReflectionSampleStep     = 5
	BrightCandidateThreshold = 240.0
	NeighborhoodRadius       = 3
	NeighborhoodThreshold    = 220.0
	BrightSpotRatio          = 0.03

	EdgeRowStep  = 5
	EdgeMaxValue = 255.0
)
