package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CookieName is the cookie that carries the session id.
const CookieName = "forum_session"

// Manager issues, resolves and revokes server-side login sessions.
type Manager struct {
	repo   repositories.SessionRepository
	ttl    time.Duration
	secure bool
	log    *slog.Logger
}

func NewManager(repo repositories.SessionRepository, ttl time.Duration, secure bool, log *slog.Logger) *Manager {
	return &Manager{repo: repo, ttl: ttl, secure: secure, log: log}
}

// Create opens a session for userID and sets its cookie on the response.
func (m *Manager) Create(c echo.Context, userID uint) error {
	now := time.Now()
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.repo.CreateSession(c.Request().Context(), s); err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.ExpiresAt,
	})
	return nil
}

// Destroy revokes the request's session, if any, and clears the cookie.
func (m *Manager) Destroy(c echo.Context) error {
	var err error
	if cookie, cerr := c.Cookie(CookieName); cerr == nil && cookie.Value != "" {
		err = m.repo.DeleteSession(c.Request().Context(), cookie.Value)
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	return err
}

// UserID resolves the request's session. A missing, unknown or expired
// session yields ok == false with a nil error.
func (m *Manager) UserID(c echo.Context) (uint, bool, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return 0, false, nil
	}
	s, err := m.repo.GetSession(c.Request().Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return s.UserID, true, nil
}

// Prune deletes sessions that have expired by now.
func (m *Manager) Prune(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, time.Now())
}

// RunPruner calls Prune every interval until ctx is cancelled.
func (m *Manager) RunPruner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Prune(ctx)
			if err != nil {
				m.log.Error("failed to prune sessions", "error", err)
				continue
			}
			if n > 0 {
				m.log.Info("pruned expired sessions", "count", n)
			}
		}
	}
}
