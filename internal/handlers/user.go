package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/nano-forum/backend/internal/middleware"
	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/uploads"
	"github.com/labstack/echo/v4"
)

const usernameTakenMessage = "A user with this username already exists"

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	uploads        uploads.Store
	log            *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, store uploads.Store, log *slog.Logger) *UserHandler {
	return &UserHandler{userRepository: userRepo, uploads: store, log: log}
}

// RegisterUserRoutes registers profile and user administration routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.PATCH("/users/profile", h.UpdateProfile, middleware.RequireAuth())
	g.GET("/users", h.GetUsers, middleware.RequireRoles(models.RoleAdmin, models.RoleModerator))
	g.PATCH("/users/:id/role", h.UpdateRole, middleware.RequireRoles(models.RoleAdmin))
}

// UpdateProfile updates the authenticated user's username, bio and avatar.
// Empty fields are left unchanged.
func (h *UserHandler) UpdateProfile(c echo.Context) (err error) {
	current := middleware.CurrentUser(c)

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user := *current

	if req.Username != "" && req.Username != user.Username {
		existing, err := h.userRepository.GetUserByUsername(ctx, req.Username)
		if err == nil && existing.ID != user.ID {
			return echo.NewHTTPError(http.StatusBadRequest, usernameTakenMessage)
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		user.Username = req.Username
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}

	avatar, err := saveUpload(c, h.uploads, uploads.KindAvatar)
	if err != nil {
		return err
	}
	if avatar != nil {
		defer func() {
			if err != nil {
				removeUploads(ctx, h.uploads, h.log, []string{avatar.Path})
			}
		}()
		user.Avatar = avatar.Path
	}

	if err = h.userRepository.UpdateUser(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return echo.NewHTTPError(http.StatusBadRequest, usernameTakenMessage)
		}
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// GetUsers lists all users
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userRepository.GetUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateRole changes a user's role
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := paramID(c, "id", "user")
	if err != nil {
		return err
	}

	var req models.UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.UpdateRole(c.Request().Context(), id, req.Role)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}
