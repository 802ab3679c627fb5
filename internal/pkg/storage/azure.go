package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// AzureStore implements ObjectStore on Azure Blob Storage; buckets map to containers.
type AzureStore struct {
	client *azblob.Client
}

// NewAzureStore creates a shared-key authenticated blob store
func NewAzureStore(accountName, accountKey string) (*AzureStore, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}
	return &AzureStore{client: client}, nil
}

// Upload stores a blob
func (s *AzureStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	_, err := s.client.UploadBuffer(ctx, bucket, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
	})
	if err != nil {
		return fmt.Errorf("failed to upload to Azure: %w", err)
	}
	return nil
}

// CreateSignedURL issues a read-only SAS URL for an existing blob
func (s *AzureStore) CreateSignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if err := checkKey(bucket, key); err != nil {
		return "", err
	}
	blobClient := s.client.ServiceClient().NewContainerClient(bucket).NewBlobClient(key)

	if _, err := blobClient.GetProperties(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return "", ErrObjectNotFound
		}
		return "", fmt.Errorf("failed to stat Azure blob: %w", err)
	}

	url, err := blobClient.GetSASURL(sas.BlobPermissions{Read: true}, time.Now().UTC().Add(ttl), nil)
	if err != nil {
		return "", fmt.Errorf("failed to sign Azure blob: %w", err)
	}
	return url, nil
}

// Delete removes a blob
func (s *AzureStore) Delete(ctx context.Context, bucket, key string) error {
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	_, err := s.client.DeleteBlob(ctx, bucket, key, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("failed to delete from Azure: %w", err)
	}
	return nil
}
