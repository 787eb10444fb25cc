package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "go-screen-inspector/internal/errors"
	"go-screen-inspector/internal/storage"
	"go-screen-inspector/pkg/models"
)

type stubFetcher struct {
	staged *storage.StagedImage
	err    error
	calls  int
}

func (f *stubFetcher) FetchImage(ctx context.Context, imageURL string) (*storage.StagedImage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.staged, nil
}

func TestOpen_LocalPath(t *testing.T) {
	fetcher := &stubFetcher{}
	repo := NewSourceImageRepository(fetcher)

	img, err := repo.Open(context.Background(), models.AnalysisRequest{ImagePath: "/photos/a.jpg"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.Path != "/photos/a.jpg" || img.Source != "/photos/a.jpg" || img.Remote {
		t.Errorf("Unexpected local image: %+v", img)
	}
	if fetcher.calls != 0 {
		t.Error("Expected local paths not to hit the fetcher")
	}
	if err := img.Release(); err != nil {
		t.Errorf("Expected Release to be a no-op for local files, got %v", err)
	}
}

func TestOpen_RemoteURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staged")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("Failed to write staged file: %v", err)
	}
	fetcher := &stubFetcher{staged: &storage.StagedImage{Path: path, Size: 4}}
	repo := NewSourceImageRepository(fetcher)

	img, err := repo.Open(context.Background(), models.AnalysisRequest{ImageURL: "https://example.com/a.jpg"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.Path != path || !img.Remote || img.Source != "https://example.com/a.jpg" || img.Size != 4 {
		t.Errorf("Unexpected remote image: %+v", img)
	}

	if err := img.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected staged file to be removed")
	}
}

func TestOpen_RemoteDisabled(t *testing.T) {
	repo := NewSourceImageRepository(nil)

	_, err := repo.Open(context.Background(), models.AnalysisRequest{ImageURL: "https://example.com/a.jpg"})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if !errors.Is(err, ErrRemoteSourcesDisabled) {
		t.Errorf("Expected ErrRemoteSourcesDisabled in chain, got %v", err)
	}
}

func TestOpen_FetchErrorMapping(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected apperrors.ErrorType
	}{
		{"not found", fmt.Errorf("wrapped: %w", storage.ErrRemoteNotFound), apperrors.ErrorTypeNotFound},
		{"too large", fmt.Errorf("wrapped: %w", storage.ErrImageTooLarge), apperrors.ErrorTypeValidation},
		{"private address", fmt.Errorf("dial: %w", storage.ErrPrivateAddress), apperrors.ErrorTypeValidation},
		{"server error", errors.New("server error: status code 503"), apperrors.ErrorTypeNetwork},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewSourceImageRepository(&stubFetcher{err: tc.err})

			_, err := repo.Open(context.Background(), models.AnalysisRequest{ImageURL: "https://example.com/a.jpg"})
			if !apperrors.IsType(err, tc.expected) {
				t.Errorf("Expected %s error, got %v", tc.expected, err)
			}
		})
	}
}

func TestOpen_FetchDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	repo := NewSourceImageRepository(&stubFetcher{err: ctx.Err()})
	_, err := repo.Open(ctx, models.AnalysisRequest{ImageURL: "https://example.com/a.jpg"})
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestOpen_BlankURLStaysLocal(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("unexpected fetch")}
	repo := NewSourceImageRepository(fetcher)

	img, err := repo.Open(context.Background(), models.AnalysisRequest{ImagePath: "/photos/a.jpg", ImageURL: " \t"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.Remote || img.Path != "/photos/a.jpg" {
		t.Errorf("Expected the local path, got %+v", img)
	}
	if fetcher.calls != 0 {
		t.Errorf("Expected a blank URL not to reach the fetcher, got %d calls", fetcher.calls)
	}
}
