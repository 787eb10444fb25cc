package repository

import "errors"

var (
	// ErrRemoteSourcesDisabled indicates a URL request reached a repository
	// built without a fetcher
	ErrRemoteSourcesDisabled = errors.New("remote image sources are not enabled")
)
