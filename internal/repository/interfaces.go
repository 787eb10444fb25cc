package repository

import (
	"context"

	"go-screen-inspector/internal/storage"
	"go-screen-inspector/pkg/models"
)

// ImageRepository turns an analysis request into a file the analyzer can read
type ImageRepository interface {
	// Open resolves the request's source. Remote images are staged locally;
	// the caller must Release the result.
	Open(ctx context.Context, req models.AnalysisRequest) (*LocalImage, error)
}

// LocalImage is an image file on local disk
type LocalImage struct {
	Path   string
	Source string
	Remote bool
	Size   int64

	staged *storage.StagedImage
}

// Release removes any staged copy. Local sources are never touched.
func (l *LocalImage) Release() error {
	if l == nil || l.staged == nil {
		return nil
	}
	return l.staged.Release()
}
