package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/nano-forum/backend/internal/middleware"
	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// EnrichedComment is a comment with its author summary and whether the
// current user liked it.
type EnrichedComment struct {
	models.Comment
	Author  models.UserCompact `json:"author"`
	IsLiked bool               `json:"isLiked"`
}

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	topicRepository   repositories.TopicRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, topicRepo repositories.TopicRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		topicRepository:   topicRepo,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/topics/:id/comments", h.CreateComment, middleware.RequireAuth())
}

// CreateComment creates a new comment on a topic
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user := middleware.CurrentUser(c)
	topicID, err := paramID(c, "id", "topic")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.topicRepository.GetTopicByID(ctx, topicID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Topic not found")
		}
		return err
	}

	comment := &models.Comment{
		Content:  req.Content,
		AuthorID: user.ID,
		TopicID:  topicID,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, EnrichedComment{Comment: *comment, Author: user.ToCompact()})
}
