package models

import "strings"

// AnalysisRequest names exactly one image source to analyze
type AnalysisRequest struct {
	ImagePath string `json:"image_path,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// HasPath reports whether the request names a local path. Blank values do
// not count.
func (r AnalysisRequest) HasPath() bool {
	return strings.TrimSpace(r.ImagePath) != ""
}

// HasURL reports whether the request names a remote URL
func (r AnalysisRequest) HasURL() bool {
	return strings.TrimSpace(r.ImageURL) != ""
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
