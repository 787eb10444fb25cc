package storage

import "context"

// SourceResolver picks the fetcher for a URL: blobs in the configured Azure
// account go through the blob client, everything else through HTTP.
type SourceResolver struct {
	http    ImageFetcher
	blob    ImageFetcher
	account string
}

// NewSourceResolver creates a resolver. blob may be nil when Azure is not
// configured.
func NewSourceResolver(httpFetcher, blobFetcher ImageFetcher, account string) *SourceResolver {
	return &SourceResolver{
		http:    httpFetcher,
		blob:    blobFetcher,
		account: account,
	}
}

// FetchImage stages imageURL with the matching fetcher
func (r *SourceResolver) FetchImage(ctx context.Context, imageURL string) (*StagedImage, error) {
	if r.blob != nil && IsAzureBlobURL(imageURL, r.account) {
		return r.blob.FetchImage(ctx, imageURL)
	}
	return r.http.FetchImage(ctx, imageURL)
}
