package validation

import (
	"net/url"
	"strings"

	apperrors "go-screen-inspector/internal/errors"
	"go-screen-inspector/internal/storage"
)

// URLPolicy describes which image URLs the server is willing to stage
type URLPolicy struct {
	// AllowedHosts restricts fetches to these hosts; empty allows any public
	// host. An entry with a leading dot matches every subdomain.
	AllowedHosts []string

	// AllowPrivateHosts admits localhost and literal loopback, private and
	// link-local addresses.
	AllowPrivateHosts bool

	// BlobAccount is the Azure storage account the server holds a key for.
	// Its blob URLs are always allowed but must name a container and a blob.
	BlobAccount string
}

// URLValidator decides whether an image_url may be handed to a fetcher
type URLValidator struct {
	policy URLPolicy
}

var allowedSchemes = []string{"http", "https"}

// NewURLValidator creates a validator that accepts any public http(s) host
func NewURLValidator() *URLValidator {
	return NewURLValidatorWithPolicy(URLPolicy{})
}

// NewURLValidatorWithPolicy creates a validator enforcing policy
func NewURLValidatorWithPolicy(policy URLPolicy) *URLValidator {
	return &URLValidator{policy: policy}
}

// ValidateImageURL checks that imageURL can be handed to a remote fetcher
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}
	if parsedURL.User != nil {
		return apperrors.NewValidationError("URL must not carry credentials", nil)
	}

	host := parsedURL.Hostname()
	if host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if storage.IsAzureBlobURL(imageURL, v.policy.BlobAccount) {
		return validateBlobPath(parsedURL)
	}

	if len(v.policy.AllowedHosts) > 0 && !v.isHostAllowed(host) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}
	if !v.policy.AllowPrivateHosts && storage.IsPrivateHost(host) {
		return apperrors.NewValidationError("URL host is not publicly routable", nil)
	}

	return nil
}

// validateBlobPath requires /<container>/<blob>, the shape the blob
// fetcher downloads
func validateBlobPath(parsedURL *url.URL) error {
	container, blob, _ := strings.Cut(strings.TrimPrefix(parsedURL.Path, "/"), "/")
	if container == "" || blob == "" {
		return apperrors.NewValidationError("Blob URL must name a container and a blob", nil)
	}
	return nil
}

func isSchemeAllowed(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

func (v *URLValidator) isHostAllowed(host string) bool {
	for _, allowed := range v.policy.AllowedHosts {
		if strings.HasPrefix(allowed, ".") {
			if len(host) > len(allowed) && strings.EqualFold(host[len(host)-len(allowed):], allowed) {
				return true
			}
			continue
		}
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}
