package factory

import (
	"fmt"

	"go-screen-inspector/internal/analyzer"
	"go-screen-inspector/internal/config"
	"go-screen-inspector/internal/storage"
	"go-screen-inspector/pkg/validation"
)

// AnalyzerType represents how the four feature analyzers are scheduled
type AnalyzerType string

const (
	// SequentialAnalyzer runs the analyzers one after another
	SequentialAnalyzer AnalyzerType = "sequential"
	// ParallelAnalyzer fans the analyzers out on a worker pool
	ParallelAnalyzer AnalyzerType = "parallel"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// LocalStorage for local file system only; it has no remote fetcher
	LocalStorage StorageType = "local"
)

// AnalyzerFactory creates image analyzers
type AnalyzerFactory interface {
	CreateAnalyzer(analyzerType AnalyzerType, workers int, maxPixels int64) (analyzer.ImageAnalyzer, error)
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct{}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory() AnalyzerFactory {
	return &analyzerFactory{}
}

// CreateAnalyzer creates an analyzer based on the specified type. maxPixels
// of 0 keeps the analyzer's default decode limit.
func (f *analyzerFactory) CreateAnalyzer(analyzerType AnalyzerType, workers int, maxPixels int64) (analyzer.ImageAnalyzer, error) {
	opts := analyzer.DefaultOptions().WithMaxPixels(maxPixels)
	switch analyzerType {
	case SequentialAnalyzer:
		return analyzer.NewImageAnalyzer(opts)
	case ParallelAnalyzer:
		return analyzer.NewImageAnalyzer(opts.WithParallel(workers))
	default:
		return nil, fmt.Errorf("unsupported analyzer type: %s", analyzerType)
	}
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a storage factory using cfg's fetch limits and
// credentials
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

func (f *storageFactory) fetcherOptions() storage.FetcherOptions {
	return storage.FetcherOptions{
		Timeout:           f.cfg.ImageFetchTimeout,
		MaxBytes:          f.cfg.MaxImageBytes,
		StagingDir:        f.cfg.StagingDir,
		AllowPrivateHosts: f.cfg.AllowPrivateHosts,
	}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.fetcherOptions()), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
		return storage.NewAzureStorage(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.fetcherOptions())
	case LocalStorage:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	AnalyzerFactory AnalyzerFactory
	StorageFactory  StorageFactory
	cfg             *config.Config
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		AnalyzerFactory: NewAnalyzerFactory(),
		StorageFactory:  NewStorageFactory(cfg),
		cfg:             cfg,
	}
}

// Analyzer creates the analyzer selected by PARALLEL_ANALYZERS
func (f *ComponentFactory) Analyzer() (analyzer.ImageAnalyzer, error) {
	analyzerType := SequentialAnalyzer
	if f.cfg.ParallelAnalyzers {
		analyzerType = ParallelAnalyzer
	}
	return f.AnalyzerFactory.CreateAnalyzer(analyzerType, f.cfg.AnalyzerWorkers, f.cfg.MaxImagePixels)
}

// RemoteFetcher creates the fetcher for image_url requests: HTTP, plus
// Azure blob routing when credentials are configured. With REMOTE_SOURCES
// off it returns no fetcher, leaving only local paths.
func (f *ComponentFactory) RemoteFetcher() (storage.ImageFetcher, error) {
	if !f.cfg.RemoteSources {
		return f.StorageFactory.CreateStorage(LocalStorage)
	}

	httpFetcher, err := f.StorageFactory.CreateStorage(HTTPStorage)
	if err != nil {
		return nil, err
	}

	var blobFetcher storage.ImageFetcher
	if f.cfg.AzureEnabled() {
		blobFetcher, err = f.StorageFactory.CreateStorage(AzureStorage)
		if err != nil {
			return nil, err
		}
	}

	return storage.NewSourceResolver(httpFetcher, blobFetcher, f.cfg.AzureStorageAccount), nil
}

// SourceValidator creates the request validator for the configured URL
// policy and path root
func (f *ComponentFactory) SourceValidator() *validation.SourceValidator {
	policy := validation.URLPolicy{
		AllowedHosts:      f.cfg.AllowedImageHosts,
		AllowPrivateHosts: f.cfg.AllowPrivateHosts,
	}
	if f.cfg.AzureEnabled() {
		policy.BlobAccount = f.cfg.AzureStorageAccount
	}
	return validation.NewSourceValidator(validation.NewURLValidatorWithPolicy(policy)).
		WithPathRoot(f.cfg.ImagePathRoot)
}
