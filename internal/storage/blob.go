// Package storage uploads saved results files to Azure Blob Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

// ErrInvalidContainerURL is returned when an upload target cannot be parsed.
var ErrInvalidContainerURL = errors.New("invalid container URL")

// ContainerURL is a parsed upload target such as
// https://acct.blob.core.windows.net/results/nightly.
type ContainerURL struct {
	// Container is the URL of the blob container itself.
	Container string
	// Prefix is the virtual directory inside the container, without slashes
	// at either end. May be empty.
	Prefix string
}

// ParseContainerURL splits raw into the container URL and a blob prefix.
// Only https URLs are accepted; query strings (SAS tokens) are kept on the
// container URL.
func ParseContainerURL(raw string) (ContainerURL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ContainerURL{}, fmt.Errorf("%w: %w", ErrInvalidContainerURL, err)
	}
	if u.Scheme != "https" {
		return ContainerURL{}, fmt.Errorf("%w: %q must use https", ErrInvalidContainerURL, raw)
	}
	if u.Host == "" {
		return ContainerURL{}, fmt.Errorf("%w: %q has no host", ErrInvalidContainerURL, raw)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if segments[0] == "" {
		return ContainerURL{}, fmt.Errorf("%w: %q has no container name", ErrInvalidContainerURL, raw)
	}

	root := *u
	root.Path = "/" + segments[0]
	root.RawPath = ""
	root.Fragment = ""
	return ContainerURL{
		Container: root.String(),
		Prefix:    strings.Join(segments[1:], "/"),
	}, nil
}

// BlobName returns the blob name for a results file: <prefix>/<runID>/<base>.
func BlobName(prefix, runID, localPath string) string {
	parts := []string{}
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if runID != "" {
		parts = append(parts, runID)
	}
	parts = append(parts, filepath.Base(localPath))
	return path.Join(parts...)
}

// BlobUploader writes files into one blob container.
type BlobUploader struct {
	client *container.Client
	prefix string
}

// NewBlobUploader authenticates with azidentity's default credential chain
// (environment, workload identity, managed identity, Azure CLI).
func NewBlobUploader(containerURL string) (*BlobUploader, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure credential: %w", err)
	}
	return newBlobUploader(containerURL, cred, nil)
}

// newBlobUploader builds an uploader with an explicit credential. A nil
// credential is used for SAS URLs (and tests).
func newBlobUploader(containerURL string, cred azcore.TokenCredential, opts *container.ClientOptions) (*BlobUploader, error) {
	target, err := ParseContainerURL(containerURL)
	if err != nil {
		return nil, err
	}

	var client *container.Client
	if cred == nil {
		client, err = container.NewClientWithNoCredential(target.Container, opts)
	} else {
		client, err = container.NewClient(target.Container, cred, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("creating blob container client: %w", err)
	}
	return &BlobUploader{client: client, prefix: target.Prefix}, nil
}

// UploadFile uploads localPath under <prefix>/<runID>/ and returns the blob URL.
func (u *BlobUploader) UploadFile(ctx context.Context, localPath, runID string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", localPath, err)
	}

	name := BlobName(u.prefix, runID, localPath)
	blockClient := u.client.NewBlockBlobClient(name)

	_, err = blockClient.UploadBuffer(ctx, data, &blockblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType(localPath))},
		Metadata:    map[string]*string{"run_id": to.Ptr(runID)},
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}

	slog.Debug("uploaded results", "blob", name, "bytes", len(data))
	return blockClient.URL(), nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".gz":
		return "application/gzip"
	case ".json":
		return "application/json"
	case ".html":
		return "text/html; charset=utf-8"
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".xml":
		return "application/xml"
	default:
		return "application/octet-stream"
	}
}
