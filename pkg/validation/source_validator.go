package validation

import (
	"path/filepath"
	"strings"

	apperrors "go-screen-inspector/internal/errors"
	"go-screen-inspector/pkg/models"
)

// SourceValidator checks that an analysis request names exactly one usable
// image source
type SourceValidator struct {
	urls     *URLValidator
	pathRoot string
}

// NewSourceValidator creates a validator that delegates URL checks to urls.
// A nil urls uses the default public http/https validator.
func NewSourceValidator(urls *URLValidator) *SourceValidator {
	if urls == nil {
		urls = NewURLValidator()
	}
	return &SourceValidator{urls: urls}
}

// WithPathRoot confines image_path to files under root. An empty root
// lifts the restriction.
func (v *SourceValidator) WithPathRoot(root string) *SourceValidator {
	v.pathRoot = ""
	if root != "" {
		v.pathRoot = resolvePath(root)
	}
	return v
}

// ValidateRequest rejects requests with no source, or with both a path and a URL
func (v *SourceValidator) ValidateRequest(req models.AnalysisRequest) error {
	switch {
	case req.HasPath() && req.HasURL():
		return apperrors.NewValidationError("Specify either image_path or image_url, not both", nil)
	case req.HasPath():
		if err := ValidatePath(req.ImagePath); err != nil {
			return err
		}
		return v.checkRoot(req.ImagePath)
	case req.HasURL():
		return v.urls.ValidateImageURL(req.ImageURL)
	default:
		return apperrors.NewValidationError("Image path is required", nil)
	}
}

// checkRoot rejects paths outside the configured root. The same message is
// returned whether or not the file exists.
func (v *SourceValidator) checkRoot(path string) error {
	if v.pathRoot == "" {
		return nil
	}
	rel, err := filepath.Rel(v.pathRoot, resolvePath(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return apperrors.NewValidationError("Image path is outside the allowed directory", nil)
	}
	return nil
}

// resolvePath makes path absolute and follows symlinks as far as they exist
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	// A missing file still resolves its existing parent directory
	if parent, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(parent, filepath.Base(abs))
	}
	return abs
}

// ValidatePath rejects empty paths and paths the OS could never open
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewValidationError("Image path is required", nil)
	}
	if strings.ContainsRune(path, 0) {
		return apperrors.NewValidationError("Image path contains a NUL byte", nil)
	}
	return nil
}
