package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dhatukala/dhatukala/internal/services"
)

func doLogin(t *testing.T, m *Module, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	m.handleLogin(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestBootstrapAdmin(t *testing.T) {
	m := newTestModule(t)

	admin, err := m.users.GetByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("GetByUsername admin: %v", err)
	}
	if admin.Role != "admin" {
		t.Errorf("Role = %q, want %q", admin.Role, "admin")
	}

	// Bootstrapping against a populated table must not add a second account.
	if err := m.bootstrapAdmin(context.Background()); err != nil {
		t.Fatalf("bootstrapAdmin again: %v", err)
	}
	count, err := m.users.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}
}

func TestHandleLogin_Success(t *testing.T) {
	m := newTestModule(t)

	w := doLogin(t, m, "admin", "bootstrap-pass")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	cookie := sessionCookie(t, w)
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
	if cookie.Value == "" {
		t.Fatal("session cookie is empty")
	}

	claims, err := m.parseToken(cookie.Value)
	if err != nil {
		t.Fatalf("parseToken from cookie: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("Username = %q, want %q", claims.Username, "admin")
	}

	// The login is stamped on the account.
	admin, err := m.users.GetByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if admin.LastLogin.IsZero() {
		t.Error("LastLogin not stamped after login")
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	m := newTestModule(t)

	w := doLogin(t, m, "admin", "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHandleLogin_UnknownUser(t *testing.T) {
	m := newTestModule(t)

	w := doLogin(t, m, "ghost", "whatever")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHandleLogin_DisabledAccount(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	admin, err := m.users.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	admin.Disabled = true
	if err := m.users.Update(ctx, admin); err != nil {
		t.Fatalf("Update: %v", err)
	}

	w := doLogin(t, m, "admin", "bootstrap-pass")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	m := newTestModule(t, "login_burst", "2", "login_rate", "1")

	doLogin(t, m, "admin", "wrong")
	doLogin(t, m, "admin", "wrong")
	w := doLogin(t, m, "admin", "wrong")

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d after burst exhausted", w.Code, http.StatusTooManyRequests)
	}
}

func TestRequireAuth(t *testing.T) {
	m := newTestModule(t)

	called := false
	handler := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = ClaimsFrom(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})

	// No token: rejected.
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/me", http.NoBody))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if called {
		t.Fatal("handler ran without authentication")
	}

	// Bearer token: accepted.
	login := doLogin(t, m, "admin", "bootstrap-pass")
	token := sessionCookie(t, login).Value

	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status with bearer token = %d, want %d", w.Code, http.StatusOK)
	}
	if !called {
		t.Error("handler did not see claims in context")
	}
}

func TestRequireAdmin_StaffRejected(t *testing.T) {
	m := newTestModule(t)

	staff := &services.User{ID: "u2", Username: "arun", Role: "staff"}
	token, err := m.issueToken(staff)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	handler := m.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/users", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestHandleMe(t *testing.T) {
	m := newTestModule(t)

	login := doLogin(t, m, "admin", "bootstrap-pass")
	token := sessionCookie(t, login).Value

	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w := httptest.NewRecorder()
	m.RequireAuth(m.handleMe)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var user services.User
	if err := json.NewDecoder(w.Body).Decode(&user); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if user.Username != "admin" {
		t.Errorf("Username = %q, want %q", user.Username, "admin")
	}
	if user.PasswordHash != "" {
		t.Error("response leaked the password hash")
	}
}

func TestHandleCreateUser(t *testing.T) {
	m := newTestModule(t)

	body := `{"username":"meera","password":"secret-pw-1","role":"staff"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	m.handleCreateUser(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	// The new credentials work for login.
	login := doLogin(t, m, "meera", "secret-pw-1")
	if login.Code != http.StatusOK {
		t.Errorf("login with new user = %d, want %d", login.Code, http.StatusOK)
	}
}

func TestHandleCreateUser_DuplicateUsername(t *testing.T) {
	m := newTestModule(t)

	body := `{"username":"admin","password":"secret-pw-1"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	m.handleCreateUser(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestHandleCreateUser_BadRole(t *testing.T) {
	m := newTestModule(t)

	body := `{"username":"x","password":"secret-pw-1","role":"superuser"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	w := httptest.NewRecorder()
	m.handleCreateUser(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleSetPassword_TooShort(t *testing.T) {
	m := newTestModule(t)

	admin, err := m.users.GetByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/users/"+admin.ID+"/password",
		strings.NewReader(`{"password":"short"}`))
	req.SetPathValue("id", admin.ID)
	w := httptest.NewRecorder()
	m.handleSetPassword(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleDeleteUser_Self(t *testing.T) {
	m := newTestModule(t)

	admin, err := m.users.GetByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	token, err := m.issueToken(admin)
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/users/"+admin.ID, http.NoBody)
	req.SetPathValue("id", admin.ID)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	m.RequireAdmin(m.handleDeleteUser)(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}
