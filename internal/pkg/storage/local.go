package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LocalStorage implements ObjectStore on the local file system.
// Signed URLs carry an HMAC over bucket, key and expiry and are served by Handler.
type LocalStorage struct {
	basePath string
	baseURL  string
	secret   []byte
	now      func() time.Time
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath, baseURL, secret string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		secret:   []byte(secret),
		now:      time.Now,
	}, nil
}

func (s *LocalStorage) path(bucket, key string) (string, error) {
	if err := checkKey(bucket, key); err != nil {
		return "", err
	}
	full := filepath.Join(s.basePath, bucket, filepath.FromSlash(key))
	root := filepath.Clean(s.basePath) + string(os.PathSeparator)
	if !strings.HasPrefix(full, root) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return full, nil
}

// Upload writes the object to disk
func (s *LocalStorage) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	full, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		os.Remove(full)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// CreateSignedURL returns a URL to Handler valid for ttl
func (s *LocalStorage) CreateSignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	full, err := s.path(bucket, key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", ErrObjectNotFound
		}
		return "", err
	}

	expires := s.now().Add(ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", s.sign(bucket, key, expires))
	return fmt.Sprintf("%s/%s/%s?%s", s.baseURL, bucket, key, q.Encode()), nil
}

// Delete removes the object from disk
func (s *LocalStorage) Delete(ctx context.Context, bucket, key string) error {
	full, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) sign(bucket, key string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%s\n%d", bucket, key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}

var errBadSignature = errors.New("signature invalid or expired")

// Verify checks a signed request for bucket/key.
func (s *LocalStorage) Verify(bucket, key string, query url.Values) error {
	expires, err := strconv.ParseInt(query.Get("expires"), 10, 64)
	if err != nil || s.now().Unix() > expires {
		return errBadSignature
	}
	want := s.sign(bucket, key, expires)
	if !hmac.Equal([]byte(want), []byte(query.Get("sig"))) {
		return errBadSignature
	}
	return nil
}

// Handler serves signed object URLs. Mount it at the path of baseURL.
// Request paths are "/{bucket}/{key...}".
func (s *LocalStorage) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket, key, ok := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := s.Verify(bucket, key, r.URL.Query()); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		full, err := s.path(bucket, key)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, full)
	})
}
