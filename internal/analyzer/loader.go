package analyzer

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	apperrors "go-screen-inspector/internal/errors"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load decodes the image at path at 1/SubsampleFactor linear resolution and
// turns it upright according to its EXIF orientation. The file is only read.
func Load(path string) (*PixelBuffer, error) {
	return LoadWithLimit(path, DefaultMaxPixels)
}

// LoadWithLimit is Load with a bound on the pixel count declared by the
// image header. Oversized images fail before their pixels are decoded.
func LoadWithLimit(path string, maxPixels int64) (*PixelBuffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	if info.IsDir() {
		return nil, notFound(path, fmt.Errorf("%s is a directory", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, notFound(path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, decodeError(path, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); maxPixels > 0 && pixels > maxPixels {
		return nil, apperrors.NewDecodeError(
			fmt.Sprintf("image at path %s is %dx%d, above the limit of %d pixels", path, cfg.Width, cfg.Height, maxPixels),
			fmt.Errorf("%w: %w", ErrDecode, ErrTooManyPixels),
		)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, decodeError(path, err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, decodeError(path, err)
	}

	orientation := Rotate0
	if _, err := f.Seek(0, io.SeekStart); err == nil {
		orientation = ReadOrientation(f)
	}

	return NewPixelBuffer(Subsample(img, SubsampleFactor)).Rotate(orientation), nil
}

// Subsample shrinks img so each side is ceil(side/factor), never below one
// pixel. A factor of 1 or less returns img unchanged.
func Subsample(img image.Image, factor int) image.Image {
	bounds := img.Bounds()
	if factor <= 1 || bounds.Empty() {
		return img
	}

	width := max((bounds.Dx()+factor-1)/factor, 1)
	height := max((bounds.Dy()+factor-1)/factor, 1)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

func decodeError(path string, cause error) error {
	return apperrors.NewDecodeError(
		fmt.Sprintf("failed to decode image from path: %s", path),
		fmt.Errorf("%w: %w", ErrDecode, cause),
	)
}

func notFound(path string, cause error) error {
	return apperrors.NewNotFoundError(
		fmt.Sprintf("image file does not exist at path: %s", path),
		fmt.Errorf("%w: %w", ErrFileNotFound, cause),
	)
}
