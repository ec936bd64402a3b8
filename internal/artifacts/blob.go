package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/BuseDenizH/EssayEval-NLP/internal/reporting"
)

// blobUploader is the part of *azblob.Client the sink uses.
type blobUploader interface {
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// BlobSink uploads artifacts into an Azure storage container.
type BlobSink struct {
	accountURL string
	container  string
	prefix     string
	client     blobUploader
}

// NewBlobSink creates a sink for container in the storage account at
// accountURL, authenticated with cred. A nil cred uses the default Azure
// credential chain (environment, workload identity, managed identity, az CLI).
func NewBlobSink(accountURL, container, prefix string, cred azcore.TokenCredential) (*BlobSink, error) {
	if _, err := url.ParseRequestURI(accountURL); err != nil {
		return nil, fmt.Errorf("invalid storage account URL %q: %w", accountURL, err)
	}
	if container == "" {
		return nil, fmt.Errorf("storage container name is required")
	}
	if cred == nil {
		c, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating Azure credential: %w", err)
		}
		cred = c
	}
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return newBlobSink(accountURL, container, prefix, client), nil
}

func newBlobSink(accountURL, container, prefix string, client blobUploader) *BlobSink {
	return &BlobSink{
		accountURL: strings.TrimRight(accountURL, "/"),
		container:  container,
		prefix:     strings.Trim(prefix, "/"),
		client:     client,
	}
}

func (b *BlobSink) Put(ctx context.Context, a *reporting.Artifact) (string, error) {
	name := a.Filename
	if b.prefix != "" {
		name = b.prefix + "/" + name
	}
	contentType := a.ContentType
	_, err := b.client.UploadBuffer(ctx, b.container, name, a.Data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		Metadata:    map[string]*string{"generator": stringPtr("essayeval")},
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	loc := fmt.Sprintf("%s/%s/%s", b.accountURL, b.container, name)
	slog.Debug("uploaded artifact", "location", loc, "bytes", len(a.Data))
	return loc, nil
}

func stringPtr(s string) *string { return &s }
