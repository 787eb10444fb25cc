package container

import (
	"net/http"

	"go-screen-inspector/internal/analyzer"
	"go-screen-inspector/internal/config"
	"go-screen-inspector/internal/factory"
	"go-screen-inspector/internal/logger"
	"go-screen-inspector/internal/observer"
	"go-screen-inspector/internal/repository"
	"go-screen-inspector/internal/service"
	"go-screen-inspector/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config                *config.Config
	imageAnalyzer         analyzer.ImageAnalyzer
	imageRepository       repository.ImageRepository
	events                *observer.EventPublisher
	metrics               *observer.MetricsObserver
	screenAnalysisService service.ScreenAnalysisService
	handler               http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	// Build dependency graph
	fetcher, err := components.RemoteFetcher()
	if err != nil {
		return nil, err
	}
	imageAnalyzer, err := components.Analyzer()
	if err != nil {
		return nil, err
	}

	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	imageRepository := repository.NewSourceImageRepository(fetcher)
	screenAnalysisService := service.NewScreenAnalysisService(
		imageRepository,
		imageAnalyzer,
		components.SourceValidator(),
		events,
		cfg.AnalysisTimeout,
	)
	handler := transport.NewHandler(screenAnalysisService, metrics, cfg)

	return &Container{
		config:                cfg,
		imageAnalyzer:         imageAnalyzer,
		imageRepository:       imageRepository,
		events:                events,
		metrics:               metrics,
		screenAnalysisService: screenAnalysisService,
		handler:               handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the analysis service
func (c *Container) Service() service.ScreenAnalysisService {
	return c.screenAnalysisService
}

// Close flushes pending events and stops the analyzer's worker pool
func (c *Container) Close() error {
	c.events.Wait()
	return c.imageAnalyzer.Close()
}
