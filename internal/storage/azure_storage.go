package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

const azureBlobHostSuffix = ".blob.core.windows.net"

type azureStorage struct {
	client  *azblob.Client
	account string
	options FetcherOptions
}

// NewAzureStorage creates a fetcher for blobs in the given storage account
func NewAzureStorage(accountName, accountKey string, options FetcherOptions) (ImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, azureBlobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &azureStorage{
		client:  client,
		account: accountName,
		options: options.withDefaults(),
	}, nil
}

// FetchImage downloads https://<account>.blob.core.windows.net/<container>/<blob>
func (s *azureStorage) FetchImage(ctx context.Context, blobURL string) (*StagedImage, error) {
	containerName, blobName, err := parseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.options.Timeout)
	defer cancel()

	downloadResponse, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrRemoteNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}

	body := downloadResponse.Body
	defer body.Close()

	if downloadResponse.ContentLength != nil && *downloadResponse.ContentLength > s.options.MaxBytes {
		return nil, fmt.Errorf("%w (limit: %d bytes)", ErrImageTooLarge, s.options.MaxBytes)
	}

	return stage(body, s.options.StagingDir, s.options.MaxBytes)
}

// IsAzureBlobURL reports whether rawURL points into account's blob endpoint
func IsAzureBlobURL(rawURL, account string) bool {
	if account == "" {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Hostname(), account+azureBlobHostSuffix)
}

// parseBlobURL splits the path into container (first segment) and blob name
func parseBlobURL(blobURL string) (string, string, error) {
	parsedURL, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}

	containerName, blobName, _ := strings.Cut(strings.TrimPrefix(parsedURL.Path, "/"), "/")
	if containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob URL: expected /<container>/<blob>, got %q", parsedURL.Path)
	}
	return containerName, blobName, nil
}
