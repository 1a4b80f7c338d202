// Package sessions holds the server-side session records behind the opaque
// cookie token. The rest of the system only ever sees the resolved Info.
package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"littlenails/internal/models"
)

// CookieName is the cookie that carries the opaque session token. Nothing
// else about the session ever leaves the server.
const CookieName = "session_id"

// TTL is the absolute session lifetime. There is no rolling renewal: a
// session expires exactly TTL after login regardless of activity.
const TTL = 2 * time.Hour

// Info is the resolved identity attached to a request.
type Info struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Record is what a Store persists for one session token.
type Record struct {
	Token     string    `json:"token"`
	Info      Info      `json:"info"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store is a keyed session store. Get returns (nil, nil) for a missing
// token; Delete is idempotent.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Get(ctx context.Context, token string) (*Record, error)
	Delete(ctx context.Context, token string) error
}

// Manager issues, resolves and destroys sessions on top of a Store.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a session manager with the fixed 2h lifetime.
func NewManager(store Store) *Manager {
	return &Manager{store: store, ttl: TTL}
}

// TTL returns the session lifetime, for cookie expiry.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create issues a new opaque token for the user and persists the record.
func (m *Manager) Create(ctx context.Context, user *models.User) (string, error) {
	record := &Record{
		Token: uuid.New().String(),
		Info: Info{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		},
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.store.Save(ctx, record); err != nil {
		return "", err
	}
	return record.Token, nil
}

// Resolve returns the session identity for a token, or nil when the token is
// unknown or expired. The caller cannot tell the two apart. Expired rows are
// removed on the way out.
func (m *Manager) Resolve(ctx context.Context, token string) (*Info, error) {
	if token == "" {
		return nil, nil
	}
	record, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if time.Now().After(record.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return nil, nil
	}
	return &record.Info, nil
}

// Destroy removes a session. It succeeds even when the token is already
// invalid.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}
