package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/banquet/banquet-api/internal/domain/user"
	"github.com/banquet/banquet-api/internal/pkg/jwt"
	"github.com/banquet/banquet-api/internal/pkg/password"
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
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *user.User) error { return nil }

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.PasswordHash = passwordHash
		return nil
	}
	return user.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeUserRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.IsActive = active
		return nil
	}
	return user.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, role string, limit, offset int) ([]user.User, int, error) {
	return nil, 0, nil
}

type fakeTokenStore struct {
	mu    sync.Mutex
	items map[string]uuid.UUID
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{items: map[string]uuid.UUID{}}
}

func (s *fakeTokenStore) Set(ctx context.Context, hash string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[hash] = userID
	return nil
}

func (s *fakeTokenStore) Get(ctx context.Context, hash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.items[hash]; ok {
		return id, nil
	}
	return uuid.Nil, ErrInvalidRefreshToken
}

func (s *fakeTokenStore) Clear(ctx context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, hash)
	return nil
}

func (s *fakeTokenStore) ClearAll(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, id := range s.items {
		if id == userID {
			delete(s.items, h)
		}
	}
	return nil
}

func newTestService() (*Service, *fakeUserRepo, *fakeTokenStore) {
	repo := newFakeUserRepo()
	tokens := newFakeTokenStore()
	jwtSvc := jwt.NewService("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewService(repo, jwtSvc, tokens), repo, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "secret-password",
		FullName: "Alice",
		Role:     "customer",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "alice@example.com" {
		t.Errorf("email not normalized: %s", resp.User.Email)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Error("tokens missing")
	}
	if len(resp.User.Capabilities) == 0 {
		t.Error("capabilities missing in response")
	}

	login, err := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret-password"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Error("login returned different user")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := &RegisterRequest{Email: "bob@example.com", Password: "secret-password", FullName: "Bob", Role: "owner"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, req); err != ErrEmailAlreadyExists {
		t.Errorf("got %v, want ErrEmailAlreadyExists", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "eve@example.com", Password: "secret-password", FullName: "Eve", Role: "admin",
	})
	if err != ErrInvalidRole {
		t.Errorf("got %v, want ErrInvalidRole", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _ = svc.Register(ctx, &RegisterRequest{Email: "c@example.com", Password: "secret-password", FullName: "C", Role: "customer"})

	_, err := svc.Login(ctx, &LoginRequest{Email: "c@example.com", Password: "wrong"})
	if err != ErrInvalidCredentials {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{Email: "d@example.com", Password: "secret-password", FullName: "D", Role: "customer"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := repo.SetActive(ctx, resp.User.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = svc.Login(ctx, &LoginRequest{Email: "d@example.com", Password: "secret-password"})
	if err != ErrUserInactive {
		t.Errorf("got %v, want ErrUserInactive", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{Email: "r@example.com", Password: "secret-password", FullName: "R", Role: "customer"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	first := resp.Tokens.RefreshToken
	refreshed, err := svc.Refresh(ctx, first)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.Tokens.RefreshToken == first {
		t.Error("refresh token not rotated")
	}

	// Old token is single use.
	if _, err := svc.Refresh(ctx, first); err != ErrInvalidRefreshToken {
		t.Errorf("reused token: got %v, want ErrInvalidRefreshToken", err)
	}
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{Email: "l@example.com", Password: "secret-password", FullName: "L", Role: "customer"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Logout(ctx, resp.Tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, resp.Tokens.RefreshToken); err != ErrInvalidRefreshToken {
		t.Errorf("got %v, want ErrInvalidRefreshToken", err)
	}
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc, repo, tokens := newTestService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{Email: "p@example.com", Password: "old-password1", FullName: "P", Role: "customer"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	err = svc.ChangePassword(ctx, resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "old-password1",
		NewPassword:     "new-password1",
	})
	if err != nil {
		t.Fatalf("change password: %v", err)
	}

	u, _ := repo.GetByID(ctx, resp.User.ID)
	if !password.Verify("new-password1", u.PasswordHash) {
		t.Error("password hash not updated")
	}
	if len(tokens.items) != 0 {
		t.Errorf("sessions not revoked, %d remaining", len(tokens.items))
	}

	if err := svc.ChangePassword(ctx, resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "old-password1",
		NewPassword:     "another-password",
	}); err != ErrInvalidCredentials {
		t.Errorf("got %v, want ErrInvalidCredentials", err)
	}
}
