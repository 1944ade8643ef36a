package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/nano-forum/backend/internal/accounts"
	"github.com/anonto42/nano-forum/backend/internal/middleware"
	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/session"
	"github.com/labstack/echo/v4"
)

const invalidCredentialsMessage = "Invalid email or password"

// TokenVerifier checks a third-party ID token and returns the email it was
// issued for.
type TokenVerifier interface {
	VerifiedEmail(ctx context.Context, idToken string) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts       *accounts.Service
	userRepository repositories.UserRepository
	sessions       *session.Manager
	firebase       TokenVerifier
}

// NewAuthHandler creates a new AuthHandler. firebase may be nil, in which
// case the Firebase login route is not registered.
func NewAuthHandler(accountService *accounts.Service, userRepo repositories.UserRepository, sessions *session.Manager, firebase TokenVerifier) *AuthHandler {
	return &AuthHandler{
		accounts:       accountService,
		userRepository: userRepo,
		sessions:       sessions,
		firebase:       firebase,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/user", h.CurrentUser, middleware.RequireAuth())
	if h.firebase != nil {
		g.POST("/login/firebase", h.FirebaseLogin)
	}
}

// Register creates an account and logs it in
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accounts.Register(c.Request().Context(), req, models.RoleUser)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusBadRequest, "A user with this email already exists")
		case errors.Is(err, accounts.ErrUsernameTaken):
			return echo.NewHTTPError(http.StatusBadRequest, "A user with this username already exists")
		}
		return err
	}

	if err := h.sessions.Create(c, user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Login checks email and password and opens a session
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.accounts.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, invalidCredentialsMessage)
		}
		return err
	}

	if err := h.sessions.Create(c, user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Logout ends the current session, if any
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// CurrentUser returns the authenticated user
func (h *AuthHandler) CurrentUser(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// FirebaseLogin verifies a Firebase ID token and opens a session for the
// local account registered under the token's email. Accounts are never
// created here.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	email, err := h.firebase.VerifiedEmail(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, invalidCredentialsMessage)
	}

	user, err := h.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, invalidCredentialsMessage)
		}
		return err
	}

	if err := h.sessions.Create(c, user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
