package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

var (
	// ErrImageTooLarge is returned when a remote image exceeds the byte cap
	ErrImageTooLarge = errors.New("image exceeds maximum size")
	// ErrRemoteNotFound is returned when the remote store has no such image
	ErrRemoteNotFound = errors.New("remote image not found")
)

// ImageFetcher stages a remote image as a local file for analysis
type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (*StagedImage, error)
}

// StagedImage is a temporary local copy of a remote image. Callers own the
// file and must Release it once analysis is done.
type StagedImage struct {
	Path string
	Size int64
}

// Release removes the staged file. Releasing twice is not an error.
func (s *StagedImage) Release() error {
	if s == nil || s.Path == "" {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// stage copies at most maxBytes from r into a new temp file under dir
func stage(r io.Reader, dir string, maxBytes int64) (*StagedImage, error) {
	f, err := os.CreateTemp(dir, "screen-inspect-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	staged := &StagedImage{Path: f.Name()}

	n, copyErr := io.Copy(f, io.LimitReader(r, maxBytes+1))
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		staged.Release()
		return nil, fmt.Errorf("failed to stage image: %w", copyErr)
	case closeErr != nil:
		staged.Release()
		return nil, fmt.Errorf("failed to stage image: %w", closeErr)
	case n > maxBytes:
		staged.Release()
		return nil, fmt.Errorf("%w (limit: %d bytes)", ErrImageTooLarge, maxBytes)
	}

	staged.Size = n
	return staged, nil
}
