package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dhatukala/dhatukala/internal/server"
	"github.com/dhatukala/dhatukala/internal/services"
)

// loginRequest is the JSON body for POST /login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userRequest is the JSON body for POST /users and PUT /users/{id}.
type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	Disabled bool   `json:"disabled"`
}

// passwordRequest is the JSON body for PUT /users/{id}/password.
type passwordRequest struct {
	Password string `json:"password"`
}

func validRole(role string) bool {
	return role == "admin" || role == "staff"
}

// handleLogin verifies credentials and sets the session cookie. Failed and
// succeeded attempts cost the same rate-limit token, so the limiter cannot
// be used to probe which usernames exist.
func (m *Module) handleLogin(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !m.limiter.Allow(ip) {
		m.logger.Warn("login rate limited", zap.String("ip", ip))
		server.RateLimited(w, "too many login attempts, slow down", r.URL.Path)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if req.Username == "" || req.Password == "" {
		server.BadRequest(w, "username and password are required", r.URL.Path)
		return
	}

	user, err := m.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.Unauthorized(w, "invalid credentials", r.URL.Path)
			return
		}
		m.logger.Error("load user for login", zap.Error(err))
		server.InternalError(w, "login failed", r.URL.Path)
		return
	}
	if user.Disabled {
		server.Unauthorized(w, "account is disabled", r.URL.Path)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		m.logger.Info("failed login", zap.String("username", req.Username), zap.String("ip", ip))
		server.Unauthorized(w, "invalid credentials", r.URL.Path)
		return
	}

	token, err := m.issueToken(user)
	if err != nil {
		m.logger.Error("issue token", zap.Error(err))
		server.InternalError(w, "login failed", r.URL.Path)
		return
	}

	if err := m.users.UpdateLastLogin(r.Context(), user.ID, m.now()); err != nil {
		m.logger.Warn("update last login", zap.String("id", user.ID), zap.Error(err))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	m.logger.Info("login", zap.String("username", user.Username), zap.String("ip", ip))
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// handleLogout clears the session cookie. The token itself stays valid
// until expiry; there is no server-side session state to revoke.
func (m *Module) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the account behind the current session.
func (m *Module) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	user, err := m.users.Get(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.Unauthorized(w, "account no longer exists", r.URL.Path)
			return
		}
		m.logger.Error("load current user", zap.Error(err))
		server.InternalError(w, "failed to load account", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (m *Module) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := m.users.List(r.Context())
	if err != nil {
		m.logger.Error("list users", zap.Error(err))
		server.InternalError(w, "failed to list users", r.URL.Path)
		return
	}
	if users == nil {
		users = []services.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (m *Module) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if req.Username == "" || req.Password == "" {
		server.BadRequest(w, "username and password are required", r.URL.Path)
		return
	}
	if req.Role != "" && !validRole(req.Role) {
		server.BadRequest(w, fmt.Sprintf("unknown role %q", req.Role), r.URL.Path)
		return
	}

	if _, err := m.users.GetByUsername(r.Context(), req.Username); err == nil {
		server.Conflict(w, fmt.Sprintf("username %q is taken", req.Username), r.URL.Path)
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		m.logger.Error("check username", zap.Error(err))
		server.InternalError(w, "failed to create user", r.URL.Path)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		m.logger.Error("hash password", zap.Error(err))
		server.InternalError(w, "failed to create user", r.URL.Path)
		return
	}

	user := services.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Disabled:     req.Disabled,
	}
	if err := m.users.Create(r.Context(), &user); err != nil {
		m.logger.Error("create user", zap.Error(err))
		server.InternalError(w, "failed to create user", r.URL.Path)
		return
	}

	m.logger.Info("user created", zap.String("username", user.Username), zap.String("role", user.Role))
	writeJSON(w, http.StatusCreated, user)
}

func (m *Module) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if req.Role != "" && !validRole(req.Role) {
		server.BadRequest(w, fmt.Sprintf("unknown role %q", req.Role), r.URL.Path)
		return
	}

	user, err := m.users.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("user %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("get user for update", zap.Error(err))
		server.InternalError(w, "failed to update user", r.URL.Path)
		return
	}

	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	user.Disabled = req.Disabled

	if err := m.users.Update(r.Context(), user); err != nil {
		m.logger.Error("update user", zap.Error(err))
		server.InternalError(w, "failed to update user", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (m *Module) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// A session cannot delete its own account.
	if claims := ClaimsFrom(r.Context()); claims != nil && claims.Subject == id {
		server.Conflict(w, "cannot delete the account you are logged in as", r.URL.Path)
		return
	}

	if err := m.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("user %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("delete user", zap.Error(err))
		server.InternalError(w, "failed to delete user", r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *Module) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid JSON body", r.URL.Path)
		return
	}
	if len(req.Password) < 8 {
		server.BadRequest(w, "password must be at least 8 characters", r.URL.Path)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		m.logger.Error("hash password", zap.Error(err))
		server.InternalError(w, "failed to set password", r.URL.Path)
		return
	}

	if err := m.users.UpdatePassword(r.Context(), id, string(hash)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			server.NotFound(w, fmt.Sprintf("user %q does not exist", id), r.URL.Path)
			return
		}
		m.logger.Error("update password", zap.Error(err))
		server.InternalError(w, "failed to set password", r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clientIP extracts the remote host, ignoring the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
