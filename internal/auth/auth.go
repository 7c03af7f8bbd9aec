// Package auth implements staff authentication: bcrypt-verified logins,
// JWT session cookies, login rate limiting, and user management.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dhatukala/dhatukala/internal/module"
	"github.com/dhatukala/dhatukala/internal/services"
	"github.com/dhatukala/dhatukala/internal/store"
)

// SessionCookie is the name of the HTTP-only session cookie.
const SessionCookie = "dhatukala_session"

// DefaultTokenTTL is how long issued sessions stay valid.
const DefaultTokenTTL = 12 * time.Hour

// Migrations defines the auth module's schema.
var Migrations = []store.Migration{
	{
		Version:     1,
		Description: "create auth_users table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS auth_users (
				id            TEXT PRIMARY KEY,
				username      TEXT NOT NULL UNIQUE,
				email         TEXT NOT NULL DEFAULT '',
				password_hash TEXT,
				role          TEXT NOT NULL DEFAULT 'staff',
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				last_login    DATETIME,
				disabled      INTEGER NOT NULL DEFAULT 0
			)`)
			return err
		},
	},
}

// Module implements the auth feature module.
type Module struct {
	logger   *zap.Logger
	config   *viper.Viper
	store    *store.SQLiteStore
	users    services.UserRepository
	secret   []byte
	tokenTTL time.Duration
	limiter  *loginLimiter
	now      func() time.Time
}

// New creates an auth module backed by the given store.
func New(st *store.SQLiteStore) *Module {
	return &Module{store: st, now: time.Now}
}

func (m *Module) Name() string    { return "auth" }
func (m *Module) Version() string { return "0.1.0" }

func (m *Module) Init(config *viper.Viper, logger *zap.Logger) error {
	m.config = config
	m.logger = logger

	if err := m.store.Migrate(context.Background(), m.Name(), Migrations); err != nil {
		return err
	}
	m.users = services.NewSQLiteUserRepository(m.store.DB())

	m.secret = []byte(m.config.GetString("jwt_secret"))
	if len(m.secret) == 0 {
		// Without a configured secret, sessions do not survive restarts.
		m.secret = randomSecret()
		m.logger.Warn("no jwt_secret configured, generated an ephemeral one")
	}

	m.tokenTTL = m.config.GetDuration("token_ttl")
	if m.tokenTTL <= 0 {
		m.tokenTTL = DefaultTokenTTL
	}

	rate := m.config.GetFloat64("login_rate")
	if rate <= 0 {
		rate = 5
	}
	burst := m.config.GetInt("login_burst")
	if burst <= 0 {
		burst = 10
	}
	m.limiter = newLoginLimiter(rate, burst)

	if err := m.bootstrapAdmin(context.Background()); err != nil {
		return err
	}

	m.logger.Info("auth module initialized", zap.Duration("token_ttl", m.tokenTTL))
	return nil
}

func (m *Module) Start(ctx context.Context) error {
	m.logger.Info("auth module started")
	return nil
}

func (m *Module) Stop() error {
	m.logger.Info("auth module stopped")
	return nil
}

func (m *Module) Routes() []module.Route {
	return []module.Route{
		{Method: "POST", Path: "/login", Handler: m.handleLogin},
		{Method: "POST", Path: "/logout", Handler: m.handleLogout},
		{Method: "GET", Path: "/me", Handler: m.RequireAuth(m.handleMe)},
		{Method: "GET", Path: "/users", Handler: m.RequireAdmin(m.handleListUsers)},
		{Method: "POST", Path: "/users", Handler: m.RequireAdmin(m.handleCreateUser)},
		{Method: "PUT", Path: "/users/{id}", Handler: m.RequireAdmin(m.handleUpdateUser)},
		{Method: "DELETE", Path: "/users/{id}", Handler: m.RequireAdmin(m.handleDeleteUser)},
		{Method: "PUT", Path: "/users/{id}/password", Handler: m.RequireAdmin(m.handleSetPassword)},
	}
}

// bootstrapAdmin creates the initial admin account when the user table is
// empty, so a fresh install is reachable. The password comes from
// modules.auth.admin_password and must be changed after first login.
func (m *Module) bootstrapAdmin(ctx context.Context) error {
	count, err := m.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := m.config.GetString("admin_password")
	if password == "" {
		password = hex.EncodeToString(randomSecret()[:8])
		m.logger.Warn("generated initial admin password", zap.String("password", password))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := services.User{
		Username:     "admin",
		Role:         "admin",
		PasswordHash: string(hash),
	}
	if err := m.users.Create(ctx, &admin); err != nil {
		return err
	}
	m.logger.Info("bootstrapped admin account", zap.String("id", admin.ID))
	return nil
}

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return b
}
