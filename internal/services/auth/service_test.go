package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/zenlit/backend/internal/domain/model"
	pgrepo "github.com/zenlit/backend/internal/repo/postgres"
	redrepo "github.com/zenlit/backend/internal/repo/redis"
	authsvc "github.com/zenlit/backend/internal/services/auth"
)

type memoryUserStore struct {
	mu      sync.Mutex
	byEmail map[string]model.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{byEmail: make(map[string]model.User)}
}

func (s *memoryUserStore) Create(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return pgrepo.ErrEmailTaken
	}
	s.byEmail[user.Email] = user
	return nil
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byEmail[email]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

type recordingBootstrapper struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (b *recordingBootstrapper) EnsureProfile(_ context.Context, userID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, userID)
	return nil
}

type recordingCleaner struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (c *recordingCleaner) Reset(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, userID)
	return nil
}

func TestSignupAndLogin(t *testing.T) {
	svc, bootstrapper, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	signupRes, err := svc.Signup(ctx, "Ada@Example.com", "correct-horse")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if signupRes.User.Email != "ada@example.com" {
		t.Fatalf("email was not normalized, got %q", signupRes.User.Email)
	}
	if len(bootstrapper.calls) != 1 || bootstrapper.calls[0] != signupRes.User.ID {
		t.Fatalf("profile bootstrap expected once for %s, got %v", signupRes.User.ID, bootstrapper.calls)
	}

	if _, err := svc.Signup(ctx, "ada@example.com", "another-pass"); !errors.Is(err, authsvc.ErrEmailTaken) {
		t.Fatalf("duplicate signup should report taken email, got err=%v", err)
	}

	loginRes, err := svc.Login(ctx, "ada@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginRes.User.ID != signupRes.User.ID {
		t.Fatalf("login resolved wrong user: %s vs %s", loginRes.User.ID, signupRes.User.ID)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "wrong-pass"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("wrong password should be unauthorized, got err=%v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("unknown email should be unauthorized, got err=%v", err)
	}
}

func TestSignupRejectsWeakCredentials(t *testing.T) {
	svc, _, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "long-enough"},
		{name: "no at sign", email: "ada.example.com", password: "long-enough"},
		{name: "short password", email: "ada@example.com", password: "short"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Signup(ctx, tc.email, tc.password); !errors.Is(err, authsvc.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got err=%v", err)
			}
		})
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _, _, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	signupRes, err := svc.Signup(ctx, "rot@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, signupRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshRes.RefreshToken == signupRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, signupRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSessionAndResetsState(t *testing.T) {
	svc, _, cleaner, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	signupRes, err := svc.Signup(ctx, "out@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, signupRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.UserID, claims.SID, signupRes.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, signupRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
	if len(cleaner.calls) != 1 || cleaner.calls[0] != claims.UserID {
		t.Fatalf("session cleaner expected once for %s, got %v", claims.UserID, cleaner.calls)
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, *recordingBootstrapper, *recordingCleaner, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	sessions := redrepo.NewSessionRepo(client)
	bootstrapper := &recordingBootstrapper{}
	cleaner := &recordingCleaner{}

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, sessions, newMemoryUserStore(), bootstrapper, 45*24*time.Hour)
	svc.RegisterCleaner(cleaner)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, bootstrapper, cleaner, cleanup
}
