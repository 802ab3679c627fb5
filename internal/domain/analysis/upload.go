package analysis

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hairtrack/hairtrack-api/internal/pkg/classifier"
	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
	"github.com/hairtrack/hairtrack-api/internal/pkg/storage"
)

// DefaultSignedURLTTL is how long the classifier may fetch an uploaded photo.
const DefaultSignedURLTTL = 600 * time.Second

// DefaultBucket holds every analysis photo.
const DefaultBucket = "analysis-photos"

// PendingPhoto is a captured photo waiting to be uploaded.
type PendingPhoto struct {
	Angle       Angle
	Filename    string
	ContentType string
	Data        []byte
}

// UploadedPhoto is a stored photo with a signed URL for one analysis call.
type UploadedPhoto struct {
	Angle Angle
	Key   string
	URL   string
}

// UploadStage stores photos and mints short-lived read URLs.
type UploadStage struct {
	store  storage.ObjectStore
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

// NewUploadStage creates the upload stage. Zero values pick the defaults.
func NewUploadStage(store storage.ObjectStore, bucket string, ttl time.Duration) *UploadStage {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	return &UploadStage{store: store, bucket: bucket, ttl: ttl, now: time.Now}
}

// Bucket returns the bucket photos are stored in.
func (s *UploadStage) Bucket() string { return s.bucket }

// TTL returns the lifetime of minted URLs.
func (s *UploadStage) TTL() time.Duration { return s.ttl }

// ObjectKey builds {user_id}/{timestamp_ms}_{angle}.{ext}.
func ObjectKey(userID uuid.UUID, at time.Time, angle Angle, ext string) string {
	return fmt.Sprintf("%s/%d_%s.%s", userID, at.UnixMilli(), angle, ext)
}

func extension(p PendingPhoto) string {
	if ext := strings.TrimPrefix(path.Ext(p.Filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return storage.ExtensionForMime(p.ContentType)
}

// Run uploads photos one at a time in angle order. The first upload failure
// aborts the stage with an upload-kind error and no result list. Photos that
// upload but cannot be signed are left out of the result.
func (s *UploadStage) Run(ctx context.Context, userID uuid.UUID, photos []PendingPhoto) ([]UploadedPhoto, error) {
	ordered := make([]PendingPhoto, len(photos))
	copy(ordered, photos)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Angle.Index() < ordered[j].Angle.Index()
	})

	uploaded := make([]UploadedPhoto, 0, len(ordered))
	for _, p := range ordered {
		key := ObjectKey(userID, s.now(), p.Angle, extension(p))
		if err := s.store.Upload(ctx, s.bucket, key, p.Data, p.ContentType); err != nil {
			logger.LogError(ctx, err, "photo upload failed", "angle", string(p.Angle), "key", key)
			return nil, classifier.NewError(classifier.KindUpload, fmt.Sprintf("Failed to upload %s photo", p.Angle.Label()), err)
		}

		url, err := s.store.CreateSignedURL(ctx, s.bucket, key, s.ttl)
		if err != nil || url == "" {
			logger.LogWarn(ctx, "signed url unavailable, photo skipped", "angle", string(p.Angle), "key", key, "error", fmt.Sprint(err))
			continue
		}
		uploaded = append(uploaded, UploadedPhoto{Angle: p.Angle, Key: key, URL: url})
	}
	return uploaded, nil
}

// Sign mints a fresh read URL for a stored key.
func (s *UploadStage) Sign(ctx context.Context, key string) (string, error) {
	return s.store.CreateSignedURL(ctx, s.bucket, key, s.ttl)
}
