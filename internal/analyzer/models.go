package analyzer

import (
	"go-screen-inspector/pkg/models"
)

// AnalysisResult is an alias to the shared models.AnalysisResult so that
// transports can serialize it without importing this package
type AnalysisResult = models.AnalysisResult

// Inspection pairs a result with the size of the buffer it was computed on
type Inspection struct {
	Result AnalysisResult
	Width  int
	Height int
}
