package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "go-screen-inspector/internal/errors"
	"go-screen-inspector/internal/storage"
	"go-screen-inspector/pkg/models"
)

// SourceImageRepository serves local paths directly and stages URLs
// through a fetcher
type SourceImageRepository struct {
	fetcher storage.ImageFetcher
}

// NewSourceImageRepository creates a repository. A nil fetcher limits it to
// local paths.
func NewSourceImageRepository(fetcher storage.ImageFetcher) ImageRepository {
	return &SourceImageRepository{
		fetcher: fetcher,
	}
}

// Open resolves req to a local file. req is expected to be validated.
func (r *SourceImageRepository) Open(ctx context.Context, req models.AnalysisRequest) (*LocalImage, error) {
	if !req.HasURL() {
		return &LocalImage{Path: req.ImagePath, Source: req.ImagePath}, nil
	}

	if r.fetcher == nil {
		return nil, apperrors.NewValidationError("image_url is not supported by this server", ErrRemoteSourcesDisabled)
	}

	staged, err := r.fetcher.FetchImage(ctx, req.ImageURL)
	if err != nil {
		return nil, fetchError(ctx, req.ImageURL, err)
	}

	return &LocalImage{
		Path:   staged.Path,
		Source: req.ImageURL,
		Remote: true,
		Size:   staged.Size,
		staged: staged,
	}, nil
}

func fetchError(ctx context.Context, imageURL string, err error) error {
	switch {
	case errors.Is(err, storage.ErrRemoteNotFound):
		return apperrors.NewNotFoundError(fmt.Sprintf("image does not exist at url: %s", imageURL), err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewValidationError("image exceeds maximum size", err)
	case errors.Is(err, storage.ErrPrivateAddress):
		return apperrors.NewValidationError("image_url must point at a public host", err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewTimeoutError("timed out fetching image", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}
