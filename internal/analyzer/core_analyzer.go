package analyzer

import (
	"fmt"
	"sync"
	"time"

	"go-screen-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

// coreAnalyzer implements ImageAnalyzer by loading a PixelBuffer and running
// the four feature analyzers over it
type coreAnalyzer struct {
	options    AnalysisOptions
	workerPool *WorkerPool
}

// NewImageAnalyzer creates an analyzer. Parallel options start a dedicated
// worker pool that lives until Close.
func NewImageAnalyzer(options AnalysisOptions) (ImageAnalyzer, error) {
	if options.MaxWorkers < 0 {
		return nil, fmt.Errorf("max workers must be >= 0 (got %d)", options.MaxWorkers)
	}

	ca := &coreAnalyzer{options: options}
	if options.ParallelAnalyzers {
		ca.workerPool = NewWorkerPool(options.workers())
		ca.workerPool.Start()
	}
	return ca, nil
}

// AnalyzeFile loads the image at path and extracts its features
func (ca *coreAnalyzer) AnalyzeFile(path string) (AnalysisResult, error) {
	inspection, err := ca.Inspect(path)
	if err != nil {
		return AnalysisResult{}, err
	}
	return inspection.Result, nil
}

// Inspect loads the image at path and extracts its features along with the
// analyzed buffer size
func (ca *coreAnalyzer) Inspect(path string) (Inspection, error) {
	start := time.Now()

	buf, err := LoadWithLimit(path, ca.options.maxPixels())
	if err != nil {
		return Inspection{}, err
	}

	logger.WithFields(logrus.Fields{
		"path":   path,
		"width":  buf.Width(),
		"height": buf.Height(),
	}).Debug("Pixel buffer loaded")

	result := ca.AnalyzeBuffer(buf)

	logger.WithFields(logrus.Fields{
		"path":                       path,
		"depth_variance":             result.DepthVariance,
		"pixel_uniformity":           result.PixelUniformity,
		"screen_reflection_detected": result.ScreenReflectionDetected,
		"edge_sharpness":             result.EdgeSharpness,
		"parallel":                   ca.options.ParallelAnalyzers,
		"elapsed_ms":                 time.Since(start).Milliseconds(),
	}).Debug("Feature extraction complete")

	return Inspection{
		Result: result,
		Width:  buf.Width(),
		Height: buf.Height(),
	}, nil
}

// AnalyzeBuffer runs the four analyzers over buf
func (ca *coreAnalyzer) AnalyzeBuffer(buf *PixelBuffer) AnalysisResult {
	if ca.workerPool != nil {
		return ca.analyzeParallel(buf)
	}

	return AnalysisResult{
		DepthVariance:            DepthVariance(buf),
		PixelUniformity:          PixelUniformity(buf),
		ScreenReflectionDetected: DetectScreenReflection(buf),
		EdgeSharpness:            EdgeSharpness(buf),
	}
}

// analyzeParallel runs each analyzer as its own job. Every job writes a
// distinct field, so the only synchronization needed is the join.
func (ca *coreAnalyzer) analyzeParallel(buf *PixelBuffer) AnalysisResult {
	var result AnalysisResult
	var wg sync.WaitGroup
	wg.Add(analyzerCount)

	// A closed pool degrades to running the job on the caller
	submit := func(job func()) {
		if !ca.workerPool.Submit(job) {
			job()
		}
	}

	submit(func() {
		defer wg.Done()
		result.DepthVariance = DepthVariance(buf)
	})
	submit(func() {
		defer wg.Done()
		result.PixelUniformity = PixelUniformity(buf)
	})
	submit(func() {
		defer wg.Done()
		result.ScreenReflectionDetected = DetectScreenReflection(buf)
	})
	submit(func() {
		defer wg.Done()
		result.EdgeSharpness = EdgeSharpness(buf)
	})

	wg.Wait()
	return result
}

// Close releases the worker pool, if any
func (ca *coreAnalyzer) Close() error {
	if ca.workerPool != nil {
		ca.workerPool.Close()
	}
	return nil
}
