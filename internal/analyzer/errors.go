package analyzer

import "errors"

var (
	// ErrFileNotFound indicates the path does not reference a readable file
	ErrFileNotFound = errors.New("image file not found")

	// ErrDecode indicates the file is not a supported raster image
	ErrDecode = errors.New("image decode failed")

	// ErrTooManyPixels indicates the image header claims more pixels than
	// the loader accepts
	ErrTooManyPixels = errors.New("image has too many pixels")
)
