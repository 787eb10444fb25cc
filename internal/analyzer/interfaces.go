package analyzer

// ImageAnalyzer extracts screen-detection features from image files
type ImageAnalyzer interface {
	// AnalyzeFile loads the image at path and runs all four analyzers on it
	AnalyzeFile(path string) (AnalysisResult, error)

	// Inspect is AnalyzeFile plus the dimensions of the analyzed buffer
	Inspect(path string) (Inspection, error)

	// AnalyzeBuffer runs all four analyzers on an already loaded buffer
	AnalyzeBuffer(buf *PixelBuffer) AnalysisResult

	// Lifecycle management
	Close() error
}
