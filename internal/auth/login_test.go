package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	users map[string]*User
}

func newFakeUserStore(t *testing.T, accounts ...SeedAccount) *fakeUserStore {
	t.Helper()
	store := &fakeUserStore{users: map[string]*User{}}
	for _, account := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		store.users[account.Username] = &User{
			Username:     account.Username,
			PasswordHash: string(hash),
			Role:         account.Role,
			CreatedAt:    time.Now().UTC(),
		}
	}
	return store
}

func (s *fakeUserStore) Get(_ context.Context, username string) (*User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) Create(_ context.Context, user *User) error {
	s.users[user.Username] = user
	return nil
}

func (s *fakeUserStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func postLogin(t *testing.T, handler *LoginHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
	req.RemoteAddr = "10.1.2.3:51000"
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestLogin_SuccessIssuesValidToken(t *testing.T) {
	secret := []byte("test-secret")
	store := newFakeUserStore(t, SeedAccount{Username: "alice", Password: "s3cret", Role: RoleOperator})
	handler, err := NewLoginHandler(store, NewLockoutTracker(nil), secret, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	resp := postLogin(t, handler, `{"username":"alice","password":"s3cret"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Token     string `json:"token"`
		Role      string `json:"role"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Role != "operator" {
		t.Fatalf("expected operator role, got %q", body.Role)
	}
	if body.ExpiresIn != int(TokenTTL.Seconds()) {
		t.Fatalf("expected ttl %d, got %d", int(TokenTTL.Seconds()), body.ExpiresIn)
	}

	claims, err := ParseJWT(body.Token, secret)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != "operator" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLogin_WrongPasswordRejected(t *testing.T) {
	store := newFakeUserStore(t, SeedAccount{Username: "alice", Password: "s3cret", Role: RoleViewer})
	handler, err := NewLoginHandler(store, NewLockoutTracker(nil), []byte("test-secret"), nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	resp := postLogin(t, handler, `{"username":"alice","password":"wrong"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestLogin_UnknownUserRejected(t *testing.T) {
	store := newFakeUserStore(t)
	handler, err := NewLoginHandler(store, NewLockoutTracker(nil), []byte("test-secret"), nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	resp := postLogin(t, handler, `{"username":"ghost","password":"whatever"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestLogin_LockoutReturns429(t *testing.T) {
	store := newFakeUserStore(t, SeedAccount{Username: "alice", Password: "s3cret", Role: RoleViewer})
	handler, err := NewLoginHandler(store, NewLockoutTracker(nil), []byte("test-secret"), nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	for i := 0; i < 5; i++ {
		resp := postLogin(t, handler, `{"username":"alice","password":"wrong"}`)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.Code)
		}
	}

	resp := postLogin(t, handler, `{"username":"alice","password":"s3cret"}`)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}
