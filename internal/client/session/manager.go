// Package session keeps the signed-in session of the client: the token pair
// cached in the local database, the principal derived from it, and the
// stream of auth status changes.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"github.com/dmitrijs2005/gophnotes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophnotes/internal/dbx"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// ErrNoSession is returned by Principal when nobody is signed in.
var ErrNoSession = errors.New("no active session")

// Manager owns the token pair. It implements client.TokenSource so the
// transport can refresh or expire the session on its own.
type Manager struct {
	db  *sql.DB
	hub *Hub
	log logging.Logger
	now func() time.Time

	mu     sync.RWMutex
	tokens client.Tokens
}

var _ client.TokenSource = (*Manager)(nil)

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(db *sql.DB, opts ...Option) *Manager {
	m := &Manager{
		db:  db,
		hub: NewHub(),
		log: logging.Discard(),
		now: time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.With("module", "session")
	return m
}

// Restore loads the cached tokens and reports the status they imply.
// An expired access token is still a live session while a refresh token
// exists, since the transport will refresh it on first use.
func (m *Manager) Restore(ctx context.Context) (models.AuthStatus, error) {
	cached, err := metadata.NewSQLiteRepository(m.db).GetMany(ctx, keyAccessToken, keyRefreshToken)
	if err != nil {
		return models.AuthSignedOut, fmt.Errorf("read cached session: %w", err)
	}
	access, refresh := cached[keyAccessToken], cached[keyRefreshToken]

	if len(access) == 0 {
		return models.AuthSignedOut, nil
	}

	claims, err := ParseClaims(string(access))
	if err != nil {
		return models.AuthSignedOut, fmt.Errorf("cached access token: %w", err)
	}

	if claims.ExpiredAt(m.now()) && len(refresh) == 0 {
		if err := m.clear(ctx); err != nil {
			return models.AuthSignedOut, err
		}
		return models.AuthSessionExpired, nil
	}

	m.mu.Lock()
	m.tokens = client.Tokens{Access: string(access), Refresh: string(refresh)}
	m.mu.Unlock()

	m.log.Debug(ctx, "session restored", "principal", claims.Principal())
	return models.AuthSignedIn, nil
}

func (m *Manager) Tokens() client.Tokens {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens
}

// Principal returns the principal of the current access token.
func (m *Manager) Principal() (string, error) {
	t := m.Tokens()
	if t.Access == "" {
		return "", ErrNoSession
	}
	claims, err := ParseClaims(t.Access)
	if err != nil {
		return "", err
	}
	if p := claims.Principal(); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("%w: token carries no principal", ErrNoSession)
}

// Establish stores a freshly issued pair and announces signedIn.
func (m *Manager) Establish(ctx context.Context, t client.Tokens) error {
	if err := m.store(ctx, t); err != nil {
		return err
	}
	m.log.Info(ctx, "signed in")
	m.hub.Publish(models.AuthSignedIn)
	return nil
}

// Refreshed stores a rotated pair. The status does not change.
func (m *Manager) Refreshed(ctx context.Context, t client.Tokens) error {
	if err := m.store(ctx, t); err != nil {
		return err
	}
	m.log.Debug(ctx, "tokens refreshed")
	return nil
}

// Expire drops the session after the backend refused to renew it.
// Only the first call for a session announces sessionExpired.
func (m *Manager) Expire(ctx context.Context) error {
	if m.reset() == (client.Tokens{}) {
		return nil
	}
	if err := m.clear(ctx); err != nil {
		return err
	}
	m.log.Warn(ctx, "session expired")
	m.hub.Publish(models.AuthSessionExpired)
	return nil
}

// End drops the session on an explicit sign-out and announces signedOut.
// The in-memory tokens are gone and signedOut is published even when the
// cached copy cannot be deleted; that error is returned.
func (m *Manager) End(ctx context.Context) error {
	err := m.clear(ctx)
	if err != nil {
		m.log.Warn(ctx, "signed out, cached session not cleared", "error", err)
	} else {
		m.log.Info(ctx, "signed out")
	}
	m.hub.Publish(models.AuthSignedOut)
	return err
}

// Subscribe streams status changes until ctx is done.
func (m *Manager) Subscribe(ctx context.Context) <-chan models.AuthStatus {
	return m.hub.Subscribe(ctx)
}

// Close ends every subscription.
func (m *Manager) Close() {
	m.hub.Close()
}

func (m *Manager) store(ctx context.Context, t client.Tokens) error {
	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Put(ctx, map[string][]byte{
			keyAccessToken:  []byte(t.Access),
			keyRefreshToken: []byte(t.Refresh),
		})
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	m.mu.Lock()
	m.tokens = t
	m.mu.Unlock()
	return nil
}

// reset forgets the in-memory pair and returns what it held.
func (m *Manager) reset() client.Tokens {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.tokens
	m.tokens = client.Tokens{}
	return prev
}

func (m *Manager) clear(ctx context.Context) error {
	m.reset()

	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, keyAccessToken, keyRefreshToken)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
