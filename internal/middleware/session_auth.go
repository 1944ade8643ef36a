package middleware

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/security"
	"github.com/anonto42/nano-forum/backend/internal/session"
	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

// SessionMiddleware resolves the session cookie to a user and stores it in
// the context. Requests without a valid session continue anonymously.
func SessionMiddleware(sessions *session.Manager, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok, err := sessions.UserID(c)
			if err != nil {
				return err
			}
			if !ok {
				return next(c)
			}

			user, err := users.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return next(c)
				}
				return err
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the request's authenticated user, or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() echo.MiddlewareFunc {
	return RequireRoles()
}

// RequireRoles admits only users holding one of roles. With no roles any
// authenticated user is admitted.
func RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch security.Authorize(CurrentUser(c), roles...) {
			case security.DenyUnauthenticated:
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			case security.DenyForbidden:
				return echo.NewHTTPError(http.StatusForbidden, "Access denied")
			}
			return next(c)
		}
	}
}
