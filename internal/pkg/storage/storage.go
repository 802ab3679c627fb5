package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrObjectNotFound is returned when signing or reading a key that was never uploaded.
	ErrObjectNotFound = errors.New("object not found")
	ErrEmptyKey       = errors.New("object key is empty")
)

// ObjectStore is a private bucket store that hands out time-limited read URLs.
type ObjectStore interface {
	// Upload stores data under bucket/key.
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error

	// CreateSignedURL mints a read URL for bucket/key valid for ttl.
	CreateSignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)

	// Delete removes bucket/key. Deleting a missing object is not an error.
	Delete(ctx context.Context, bucket, key string) error
}

// ExtensionForMime returns the file extension (without dot) for an image MIME type.
func ExtensionForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/heic":
		return "heic"
	default:
		return "bin"
	}
}

func checkKey(bucket, key string) error {
	if bucket == "" || key == "" {
		return ErrEmptyKey
	}
	return nil
}
