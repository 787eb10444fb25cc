package service

import (
	"context"
	"errors"
	"time"

	"go-screen-inspector/internal/analyzer"
	apperrors "go-screen-inspector/internal/errors"
	"go-screen-inspector/internal/logger"
	"go-screen-inspector/internal/observer"
	"go-screen-inspector/internal/repository"
	"go-screen-inspector/pkg/models"
	"go-screen-inspector/pkg/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ScreenAnalysisService extracts screen re-photograph features for one
// request at a time
type ScreenAnalysisService interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.ImageAnalysisResponse, error)
}

type screenAnalysisService struct {
	imageRepo repository.ImageRepository
	analyzer  analyzer.ImageAnalyzer
	validator *validation.SourceValidator
	events    observer.Subject
	timeout   time.Duration
}

// NewScreenAnalysisService wires the service. A zero timeout leaves the
// caller's context as the only bound.
func NewScreenAnalysisService(
	imageRepository repository.ImageRepository,
	imageAnalyzer analyzer.ImageAnalyzer,
	validator *validation.SourceValidator,
	events observer.Subject,
	timeout time.Duration,
) ScreenAnalysisService {
	if validator == nil {
		validator = validation.NewSourceValidator(nil)
	}
	return &screenAnalysisService{
		imageRepo: imageRepository,
		analyzer:  imageAnalyzer,
		validator: validator,
		events:    events,
		timeout:   timeout,
	}
}

type inspectOutcome struct {
	inspection analyzer.Inspection
	err        error
}

// Analyze validates req, makes its image available locally and runs the
// feature pipeline on it
func (s *screenAnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.ImageAnalysisResponse, error) {
	start := time.Now()
	requestID := uuid.NewString()
	source := req.ImagePath
	if !req.HasPath() {
		source = req.ImageURL
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		RequestID: requestID,
		Source:    source,
	})

	response, err := s.analyze(ctx, requestID, source, req, start)
	if err != nil {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			RequestID:      requestID,
			Source:         source,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
			Metadata:       map[string]interface{}{"code": apperrors.GetCode(err)},
		})
		return nil, err
	}

	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		RequestID:      requestID,
		Source:         source,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata: map[string]interface{}{
			"width":                      response.Width,
			"height":                     response.Height,
			"depth_variance":             response.DepthVariance,
			"pixel_uniformity":           response.PixelUniformity,
			"screen_reflection_detected": response.ScreenReflectionDetected,
			"edge_sharpness":             response.EdgeSharpness,
		},
	})
	return response, nil
}

func (s *screenAnalysisService) analyze(
	ctx context.Context,
	requestID, source string,
	req models.AnalysisRequest,
	start time.Time,
) (*models.ImageAnalysisResponse, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	img, err := s.imageRepo.Open(ctx, req)
	if err != nil {
		if req.HasURL() {
			s.publish(ctx, observer.AnalysisEvent{
				EventType:    observer.ImageFetchFailed,
				RequestID:    requestID,
				Source:       source,
				ErrorMessage: err.Error(),
			})
		}
		return nil, err
	}
	if img.Remote {
		s.publish(ctx, observer.AnalysisEvent{
			EventType:      observer.ImageFetched,
			RequestID:      requestID,
			Source:         source,
			ProcessingTime: time.Since(start),
			Success:        true,
			Metadata:       map[string]interface{}{"bytes": img.Size},
		})
	}

	// The pipeline cannot be interrupted, so on timeout the goroutine is
	// left to finish and release the image on its own
	done := make(chan inspectOutcome, 1)
	go func() {
		inspection, err := s.analyzer.Inspect(img.Path)
		releaseImage(requestID, img)
		done <- inspectOutcome{inspection: inspection, err: err}
	}()

	var outcome inspectOutcome
	select {
	case outcome = <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("analysis timed out", ctx.Err())
		}
		return nil, apperrors.NewInternalError("analysis cancelled", ctx.Err())
	}

	if outcome.err != nil {
		var appErr *apperrors.AppError
		if errors.As(outcome.err, &appErr) {
			return nil, outcome.err
		}
		return nil, apperrors.NewInternalError("analysis failed", outcome.err)
	}

	return &models.ImageAnalysisResponse{
		RequestID:         requestID,
		Source:            source,
		Timestamp:         time.Now().UTC(),
		ProcessingTimeSec: time.Since(start).Seconds(),
		Dimensions: models.Dimensions{
			Width:  outcome.inspection.Width,
			Height: outcome.inspection.Height,
		},
		AnalysisResult: outcome.inspection.Result,
	}, nil
}

func releaseImage(requestID string, img *repository.LocalImage) {
	if err := img.Release(); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       img.Path,
		}).Error("Failed to remove staged image")
	}
}

func (s *screenAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	s.events.NotifyObservers(ctx, event)
}
