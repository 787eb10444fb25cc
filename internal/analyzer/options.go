package analyzer

// AnalysisOptions controls how the four analyzers are scheduled. The
// feature values themselves are identical either way.
type AnalysisOptions struct {
	// ParallelAnalyzers fans the analyzers out on a worker pool instead of
	// running them one after another on the calling goroutine.
	ParallelAnalyzers bool

	// MaxWorkers bounds the pool used for ParallelAnalyzers; 0 means one
	// worker per analyzer.
	MaxWorkers int

	// MaxPixels rejects images whose header claims more pixels than this
	// before any pixel data is decoded; 0 means DefaultMaxPixels.
	MaxPixels int64
}

// DefaultMaxPixels admits any photograph up to 64 megapixels
const DefaultMaxPixels int64 = 64_000_000

// analyzerCount is the number of independent analyzers in the pipeline
const analyzerCount = 4

// DefaultOptions returns the sequential, single-goroutine pipeline
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		ParallelAnalyzers: false,
		MaxWorkers:        0,
	}
}

// ParallelOptions returns options that run the analyzers concurrently
func ParallelOptions() AnalysisOptions {
	return DefaultOptions().WithParallel(0)
}

// WithParallel enables concurrent analyzers on up to workers goroutines
func (opts AnalysisOptions) WithParallel(workers int) AnalysisOptions {
	opts.ParallelAnalyzers = true
	opts.MaxWorkers = workers
	return opts
}

// WithMaxPixels sets the decode limit
func (opts AnalysisOptions) WithMaxPixels(maxPixels int64) AnalysisOptions {
	opts.MaxPixels = maxPixels
	return opts
}

// WithSequential disables concurrent analyzers
func (opts AnalysisOptions) WithSequential() AnalysisOptions {
	opts.ParallelAnalyzers = false
	return opts
}

// workers resolves the effective pool size for parallel mode
func (opts AnalysisOptions) workers() int {
	if opts.MaxWorkers <= 0 || opts.MaxWorkers > analyzerCount {
		return analyzerCount
	}
	return opts.MaxWorkers
}

func (opts AnalysisOptions) maxPixels() int64 {
	if opts.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return opts.MaxPixels
}
