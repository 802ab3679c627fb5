package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	st, err := NewLocalStorage(t.TempDir(), "http://files.test/files", "secret")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	return st
}

func TestLocalUploadAndSignedURL(t *testing.T) {
	st := newTestLocal(t)
	ctx := context.Background()

	if err := st.Upload(ctx, "analysis-photos", "u1/1700000000000_top.jpg", []byte("jpeg-bytes"), "image/jpeg"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	signed, err := st.CreateSignedURL(ctx, "analysis-photos", "u1/1700000000000_top.jpg", 600*time.Second)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !strings.HasPrefix(signed, "http://files.test/files/analysis-photos/u1/1700000000000_top.jpg?") {
		t.Fatalf("unexpected signed url %s", signed)
	}

	u, _ := url.Parse(signed)
	req := httptest.NewRequest(http.MethodGet, "/analysis-photos/u1/1700000000000_top.jpg?"+u.RawQuery, nil)
	rr := httptest.NewRecorder()
	st.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if string(body) != "jpeg-bytes" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestLocalSignedURLExpires(t *testing.T) {
	st := newTestLocal(t)
	ctx := context.Background()
	_ = st.Upload(ctx, "b", "k.jpg", []byte("x"), "image/jpeg")

	signed, err := st.CreateSignedURL(ctx, "b", "k.jpg", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	u, _ := url.Parse(signed)

	st.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if err := st.Verify("b", "k.jpg", u.Query()); err == nil {
		t.Fatal("expected expired signature to fail")
	}
}

func TestLocalSignedURLTamperedKey(t *testing.T) {
	st := newTestLocal(t)
	ctx := context.Background()
	_ = st.Upload(ctx, "b", "a.jpg", []byte("x"), "image/jpeg")
	signed, _ := st.CreateSignedURL(ctx, "b", "a.jpg", time.Minute)
	u, _ := url.Parse(signed)

	if err := st.Verify("b", "other.jpg", u.Query()); err == nil {
		t.Fatal("signature must not verify for another key")
	}
}

func TestLocalSignMissingObject(t *testing.T) {
	st := newTestLocal(t)
	_, err := st.CreateSignedURL(context.Background(), "b", "missing.jpg", time.Minute)
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	st := newTestLocal(t)
	if err := st.Upload(context.Background(), "b", "../../etc/passwd", []byte("x"), "text/plain"); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
	if err := st.Delete(context.Background(), "", "k"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestExtensionForMime(t *testing.T) {
	cases := map[string]string{"image/jpeg": "jpg", "image/png": "png", "image/webp": "webp", "application/octet-stream": "bin"}
	for mime, want := range cases {
		if got := ExtensionForMime(mime); got != want {
			t.Fatalf("%s: expected %s, got %s", mime, want, got)
		}
	}
}
