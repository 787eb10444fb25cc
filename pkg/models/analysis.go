package models

import "time"

// AnalysisResult holds the four raw screen-detection features extracted from
// one photograph. Numeric fields are always within [0,1].
type AnalysisResult struct {
	DepthVariance            float64 `json:"depthVariance"`
	PixelUniformity          float64 `json:"pixelUniformity"`
	ScreenReflectionDetected bool    `json:"screenReflectionDetected"`
	EdgeSharpness            float64 `json:"edgeSharpness"`
}

// Dimensions is the size of the pixel buffer the features were computed on,
// after subsampling and orientation correction
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ImageAnalysisResponse is what the service hands back to transports
type ImageAnalysisResponse struct {
	RequestID         string    `json:"request_id"`
	Source            string    `json:"source"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`
	Dimensions
	AnalysisResult
}
