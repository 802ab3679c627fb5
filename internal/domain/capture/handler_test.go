package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hairtrack/hairtrack-api/internal/middleware"
	"github.com/hairtrack/hairtrack-api/internal/pkg/response"
)

func newRouter(f *fixture) http.Handler {
	h := NewHandler(f.svc)
	signedIn := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithPrincipal(r.Context(), middleware.Principal{State: middleware.StateAuthenticated, UserID: f.userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	return h.Routes(func(next http.Handler) http.Handler { return signedIn(middleware.RequireUser(next)) })
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (response.Response, WizardResponse) {
	t.Helper()
	var env struct {
		response.Response
		Data WizardResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env.Response, env.Data
}

func multipartBody(t *testing.T, method, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("method", method)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(data)
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestCaptureRequiresSignIn(t *testing.T) {
	f := newFixture(t)
	router := NewHandler(f.svc).Routes(middleware.RequireUser)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	env, _ := decode(t, rec)
	if env.Error == nil || env.Error.Redirect != middleware.SignInPath {
		t.Fatalf("expected redirect hint, got %+v", env.Error)
	}
}

func TestCaptureFlowOverHTTP(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)

	post := func(event string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(`{"event":"`+event+`"}`))
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := post("start")
	if rec.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rec.Code, rec.Body)
	}
	_, wz := decode(t, rec)
	if wz.StepName != "capture" || wz.Angle != "top" || len(wz.Slots) != 5 {
		t.Fatalf("unexpected wizard %+v", wz)
	}

	body, ct := multipartBody(t, "gallery", "IMG_1.png", "image/png", pngBytes(t, 30, 30))
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/photos/top", body)
	req.Header.Set("Content-Type", ct)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("set photo: %d %s", rec.Code, rec.Body)
	}
	_, wz = decode(t, rec)
	if wz.FilledCount != 1 || !wz.Slots[0].Filled || wz.Slots[0].Filename != "top.jpg" {
		t.Fatalf("unexpected slots %+v", wz.Slots[0])
	}

	body, ct = multipartBody(t, "file", "notes.txt", "text/plain", []byte("nope"))
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/photos/hairline", body)
	req.Header.Set("Content-Type", ct)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for text file, got %d", rec.Code)
	}
	env, _ := decode(t, rec)
	if env.Error.Code != "INVALID_FILE" || env.Error.Details["description"] != "Please upload an image file." {
		t.Fatalf("unexpected rejection %+v", env.Error)
	}

	for i := 0; i < 5; i++ {
		post("next")
	}
	rec = post("submit")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 with one photo, got %d", rec.Code)
	}
	if f.analyzer.callCount() != 0 {
		t.Fatal("gate must hold over HTTP")
	}

	if rec := post("teleport"); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected validation error for unknown event, got %d", rec.Code)
	}
}

func TestSetPhotoRejectsUnknownAngle(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f)
	rec := httptest.NewRecorder()
	body, ct := multipartBody(t, "file", "a.png", "image/png", pngBytes(t, 10, 10))
	req := httptest.NewRequest(http.MethodPut, "/photos/nape", body)
	req.Header.Set("Content-Type", ct)
	router.ServeHTTP(rec, req.WithContext(context.Background()))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSetPhotoReportsBodyErrors(t *testing.T) {
	cases := []struct {
		name string
		body func() (*bytes.Buffer, string)
		code string
	}{
		{"not multipart", func() (*bytes.Buffer, string) {
			return bytes.NewBufferString(`{"file":"a.png"}`), "application/json"
		}, "BAD_REQUEST"},
		{"over limit", func() (*bytes.Buffer, string) {
			return multipartBody(t, "file", "huge.png", "image/png", make([]byte, maxUploadBody+1))
		}, "FILE_TOO_LARGE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.fire(t, EventStart)
			router := newRouter(f)

			body, ct := tc.body()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/photos/top", body)
			req.Header.Set("Content-Type", ct)
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			env, _ := decode(t, rec)
			if env.Error == nil || env.Error.Code != tc.code {
				t.Fatalf("expected %s, got %+v", tc.code, env.Error)
			}
		})
	}
}
