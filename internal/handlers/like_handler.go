package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-forum/backend/internal/middleware"
	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// LikeResponse is a created like together with the target's new count.
type LikeResponse struct {
	models.Like
	LikesCount int `json:"likesCount"`
}

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository    repositories.LikeRepository
	topicRepository   repositories.TopicRepository
	commentRepository repositories.CommentRepository
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, topicRepo repositories.TopicRepository, commentRepo repositories.CommentRepository) *LikeHandler {
	return &LikeHandler{
		likeRepository:    likeRepo,
		topicRepository:   topicRepo,
		commentRepository: commentRepo,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/topics/:id/like", h.LikeTopic, middleware.RequireAuth())
	g.DELETE("/topics/:id/like", h.UnlikeTopic, middleware.RequireAuth())
	g.GET("/topics/:id/likes", h.GetTopicLikes)
	g.POST("/comments/:id/like", h.LikeComment, middleware.RequireAuth())
	g.DELETE("/comments/:id/like", h.UnlikeComment, middleware.RequireAuth())
	g.GET("/comments/:id/likes", h.GetCommentLikes)
}

func (h *LikeHandler) LikeTopic(c echo.Context) error {
	return h.like(c, models.TargetTopic)
}

func (h *LikeHandler) UnlikeTopic(c echo.Context) error {
	return h.unlike(c, models.TargetTopic)
}

func (h *LikeHandler) LikeComment(c echo.Context) error {
	return h.like(c, models.TargetComment)
}

func (h *LikeHandler) UnlikeComment(c echo.Context) error {
	return h.unlike(c, models.TargetComment)
}

var targetNames = map[models.TargetKind]string{
	models.TargetTopic:   "topic",
	models.TargetComment: "comment",
}

func targetNotFound(kind models.TargetKind) error {
	if kind == models.TargetTopic {
		return echo.NewHTTPError(http.StatusNotFound, "Topic not found")
	}
	return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
}

func (h *LikeHandler) target(c echo.Context, kind models.TargetKind) (models.LikeTarget, error) {
	id, err := paramID(c, "id", targetNames[kind])
	if err != nil {
		return models.LikeTarget{}, err
	}
	return models.LikeTarget{Kind: kind, ID: id}, nil
}

// like records the current user's like. A second like of the same target is
// rejected by the store and reported as 400.
func (h *LikeHandler) like(c echo.Context, kind models.TargetKind) error {
	user := middleware.CurrentUser(c)
	target, err := h.target(c, kind)
	if err != nil {
		return err
	}

	like, count, err := h.likeRepository.Like(c.Request().Context(), user.ID, target)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return targetNotFound(kind)
		case errors.Is(err, repositories.ErrAlreadyLiked):
			return echo.NewHTTPError(http.StatusBadRequest, "You have already liked this "+targetNames[kind])
		}
		return err
	}

	return c.JSON(http.StatusCreated, LikeResponse{Like: *like, LikesCount: count})
}

func (h *LikeHandler) unlike(c echo.Context, kind models.TargetKind) error {
	user := middleware.CurrentUser(c)
	target, err := h.target(c, kind)
	if err != nil {
		return err
	}

	count, err := h.likeRepository.Unlike(c.Request().Context(), user.ID, target)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return targetNotFound(kind)
		case errors.Is(err, repositories.ErrLikeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Like not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Like removed", "likesCount": count})
}

// GetTopicLikes lists the likes of a topic
func (h *LikeHandler) GetTopicLikes(c echo.Context) error {
	target, err := h.target(c, models.TargetTopic)
	if err != nil {
		return err
	}
	if _, err := h.topicRepository.GetTopicByID(c.Request().Context(), target.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return targetNotFound(target.Kind)
		}
		return err
	}
	return h.listLikes(c, target)
}

// GetCommentLikes lists the likes of a comment
func (h *LikeHandler) GetCommentLikes(c echo.Context) error {
	target, err := h.target(c, models.TargetComment)
	if err != nil {
		return err
	}
	if _, err := h.commentRepository.GetCommentByID(c.Request().Context(), target.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return targetNotFound(target.Kind)
		}
		return err
	}
	return h.listLikes(c, target)
}

func (h *LikeHandler) listLikes(c echo.Context, target models.LikeTarget) error {
	likes, err := h.likeRepository.GetLikes(c.Request().Context(), target)
	if err != nil {
		return err
	}
	if likes == nil {
		likes = []models.Like{}
	}
	return c.JSON(http.StatusOK, likes)
}
