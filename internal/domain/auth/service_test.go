package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/hairtrack/hairtrack-api/internal/domain/user"
	"github.com/hairtrack/hairtrack-api/internal/middleware"
	"github.com/hairtrack/hairtrack-api/internal/pkg/jwt"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*user.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return user.ErrEmailAlreadyExists
		}
	}
	copyU := *u
	f.users[u.ID] = &copyU
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeProfiles struct {
	names map[uuid.UUID]string
	err   error
}

func (f *fakeProfiles) CreateDefault(ctx context.Context, userID uuid.UUID, fullName string) error {
	if f.err != nil {
		return f.err
	}
	if f.names == nil {
		f.names = map[uuid.UUID]string{}
	}
	f.names[userID] = fullName
	return nil
}

func newTestService(t *testing.T, withRedis bool) (*Service, *fakeUserRepo, *fakeProfiles) {
	t.Helper()
	var rdb *redis.Client
	if withRedis {
		mr := miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
	}
	users := newFakeUserRepo()
	profiles := &fakeProfiles{}
	svc := NewService(users, profiles, jwt.NewService("secret", time.Minute, time.Hour), rdb)
	svc.hashCost = bcrypt.MinCost
	return svc, users, profiles
}

func TestSignUpCreatesProfileAndTokens(t *testing.T) {
	svc, users, profiles := newTestService(t, true)

	res, err := svc.SignUp(context.Background(), &SignUpRequest{Email: "  Alex@Example.com ", Password: "secret1", Name: " Alex "})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if res.User.Email != "alex@example.com" {
		t.Fatalf("expected normalized email, got %q", res.User.Email)
	}
	if profiles.names[res.User.ID] != "Alex" {
		t.Fatalf("expected profile with trimmed name, got %q", profiles.names[res.User.ID])
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" || res.Tokens.TokenType != "Bearer" {
		t.Fatalf("expected tokens, got %+v", res.Tokens)
	}
	if len(users.users) != 1 {
		t.Fatalf("expected one user, got %d", len(users.users))
	}

	_, err = svc.SignUp(context.Background(), &SignUpRequest{Email: "alex@example.com", Password: "secret1", Name: "A"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestSignUpRollsBackUserWhenProfileFails(t *testing.T) {
	svc, users, profiles := newTestService(t, false)
	profiles.err = errors.New("profiles table unavailable")

	if _, err := svc.SignUp(context.Background(), &SignUpRequest{Email: "r@example.com", Password: "secret1", Name: "R"}); err == nil {
		t.Fatal("expected error")
	}
	if len(users.users) != 0 {
		t.Fatalf("expected user rollback, got %d users", len(users.users))
	}
}

func TestSignInAndRefreshRotation(t *testing.T) {
	svc, _, _ := newTestService(t, true)
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, &SignUpRequest{Email: "s@example.com", Password: "secret1", Name: "S"}); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := svc.SignIn(ctx, &SignInRequest{Email: "s@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	signedIn, err := svc.SignIn(ctx, &SignInRequest{Email: "S@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	rotated, err := svc.Refresh(ctx, signedIn.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := svc.Refresh(ctx, signedIn.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected reused refresh token to fail, got %v", err)
	}

	if err := svc.SignOut(ctx, rotated.Tokens.RefreshToken); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := svc.Refresh(ctx, rotated.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected signed-out token to fail, got %v", err)
	}
	if _, err := svc.Refresh(ctx, signedIn.Tokens.AccessToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected access token to be rejected as refresh, got %v", err)
	}
}

func TestSessionReportsPrincipalState(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	res, err := svc.SignUp(context.Background(), &SignUpRequest{Email: "w@example.com", Password: "secret1", Name: "W"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	h := NewHandler(svc)

	cases := []struct {
		principal middleware.Principal
		want      string
	}{
		{middleware.Principal{State: middleware.StateLoading}, `"state":"loading"`},
		{middleware.Principal{State: middleware.StateUnauthenticated}, `"state":"unauthenticated"`},
		{middleware.Principal{State: middleware.StateAuthenticated, UserID: res.User.ID}, `"email":"w@example.com"`},
		{middleware.Principal{State: middleware.StateAuthenticated, UserID: uuid.New()}, `"state":"unauthenticated"`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), tc.principal))
		w := httptest.NewRecorder()
		h.Session(w, req)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), tc.want) {
			t.Fatalf("principal %+v: expected %s in %d %s", tc.principal, tc.want, w.Code, w.Body.String())
		}
	}
}

func TestSignUpHandlerValidation(t *testing.T) {
	svc, _, _ := newTestService(t, false)
	h := NewHandler(svc)

	w := httptest.NewRecorder()
	h.SignUp(w, httptest.NewRequest(http.MethodPost, "/auth/sign-up", strings.NewReader(`{"email":"bad","password":"123","name":""}`)))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.SignUp(w, httptest.NewRequest(http.MethodPost, "/auth/sign-up", strings.NewReader(`{"email":"ok@example.com","password":"secret1","name":"Ok"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
}
