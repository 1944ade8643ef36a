package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-forum/backend/internal/middleware"
	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/uploads"
	"github.com/labstack/echo/v4"
)

// EnrichedTopic is a topic with its author summary.
type EnrichedTopic struct {
	models.Topic
	Author models.UserCompact `json:"author"`
}

// TopicDetail is a single topic with its comments and the current user's
// like state.
type TopicDetail struct {
	EnrichedTopic
	IsLiked  bool              `json:"isLiked"`
	Comments []EnrichedComment `json:"comments"`
}

// TopicHandler handles HTTP requests related to topics
type TopicHandler struct {
	topicRepository   repositories.TopicRepository
	commentRepository repositories.CommentRepository
	likeRepository    repositories.LikeRepository
	uploads           uploads.Store
	log               *slog.Logger
}

// NewTopicHandler creates a new TopicHandler
func NewTopicHandler(topicRepo repositories.TopicRepository, commentRepo repositories.CommentRepository, likeRepo repositories.LikeRepository, store uploads.Store, log *slog.Logger) *TopicHandler {
	return &TopicHandler{
		topicRepository:   topicRepo,
		commentRepository: commentRepo,
		likeRepository:    likeRepo,
		uploads:           store,
		log:               log,
	}
}

// RegisterTopicRoutes registers topic-related routes
func (h *TopicHandler) RegisterTopicRoutes(g *echo.Group) {
	g.GET("/categories", h.GetCategories)
	g.GET("/topics", h.GetTopics)
	g.GET("/topics/:id", h.GetTopic)
	g.POST("/topics", h.CreateTopic, middleware.RequireAuth())
}

// GetCategories returns the fixed list of topic categories
func (h *TopicHandler) GetCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Categories)
}

// GetTopics lists topics newest-first, optionally filtered by author or category
func (h *TopicHandler) GetTopics(c echo.Context) error {
	var filter models.TopicFilter
	if raw := c.QueryParam("authorId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid author ID")
		}
		filter.AuthorID = uint(id)
	}
	filter.Category = c.QueryParam("category")

	topics, err := h.topicRepository.ListTopics(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	enriched := make([]EnrichedTopic, 0, len(topics))
	for _, topic := range topics {
		enriched = append(enriched, EnrichedTopic{Topic: topic, Author: topic.Author.ToCompact()})
	}
	return c.JSON(http.StatusOK, enriched)
}

// GetTopic retrieves a topic with its author and comments
func (h *TopicHandler) GetTopic(c echo.Context) error {
	id, err := paramID(c, "id", "topic")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	topic, err := h.topicRepository.GetTopicByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Topic not found")
		}
		return err
	}

	comments, err := h.commentRepository.GetCommentsByTopicID(ctx, id)
	if err != nil {
		return err
	}

	detail := TopicDetail{
		EnrichedTopic: EnrichedTopic{Topic: *topic, Author: topic.Author.ToCompact()},
		Comments:      make([]EnrichedComment, 0, len(comments)),
	}

	liked := map[uint]bool{}
	if user := middleware.CurrentUser(c); user != nil {
		detail.IsLiked, err = h.likeRepository.HasUserLiked(ctx, user.ID, models.TopicTarget(id))
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(comments))
		for _, comment := range comments {
			ids = append(ids, comment.ID)
		}
		if liked, err = h.likeRepository.LikedComments(ctx, user.ID, ids); err != nil {
			return err
		}
	}

	for _, comment := range comments {
		detail.Comments = append(detail.Comments, EnrichedComment{
			Comment: comment,
			Author:  comment.Author.ToCompact(),
			IsLiked: liked[comment.ID],
		})
	}
	return c.JSON(http.StatusOK, detail)
}

// CreateTopic creates a topic from a multipart form with an optional image
// and attachment. Files already stored are removed if the request fails.
func (h *TopicHandler) CreateTopic(c echo.Context) (err error) {
	user := middleware.CurrentUser(c)

	var req models.CreateTopicRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var saved []string
	defer func() {
		if err != nil {
			removeUploads(ctx, h.uploads, h.log, saved)
		}
	}()

	topic := &models.Topic{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		AuthorID: user.ID,
	}

	image, err := saveUpload(c, h.uploads, uploads.KindImage)
	if err != nil {
		return err
	}
	if image != nil {
		saved = append(saved, image.Path)
		topic.Image = &image.Path
	}

	attachment, err := saveUpload(c, h.uploads, uploads.KindAttachment)
	if err != nil {
		return err
	}
	if attachment != nil {
		saved = append(saved, attachment.Path)
		topic.Attachment = &attachment.Path
		topic.AttachmentName = &attachment.Name
	}

	if err = h.topicRepository.CreateTopic(ctx, topic); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, EnrichedTopic{Topic: *topic, Author: user.ToCompact()})
}

// removeUploads deletes stored files of a failed request. It runs even when
// the request context is already cancelled.
func removeUploads(ctx context.Context, store uploads.Store, log *slog.Logger, paths []string) {
	ctx = context.WithoutCancel(ctx)
	for _, p := range paths {
		if err := store.Remove(ctx, p); err != nil {
			log.Error("failed to remove upload", "path", p, "error", err)
		}
	}
}

// formFile returns the uploaded file in field, or nil when the request
// carries none.
func formFile(c echo.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}
	return fh, nil
}

var uploadRules = map[uploads.Kind]string{
	uploads.KindImage:      "Only images are allowed (jpg, jpeg, png, gif)",
	uploads.KindAvatar:     "Only images are allowed (jpg, jpeg, png, gif)",
	uploads.KindAttachment: "File type not allowed. Allowed: pdf, doc, docx, txt, zip, rar",
}

// saveUpload stores the file sent in the form field named after kind.
// Rejected files are reported as field-level validation errors.
func saveUpload(c echo.Context, store uploads.Store, kind uploads.Kind) (*uploads.File, error) {
	fh, err := formFile(c, string(kind))
	if err != nil || fh == nil {
		return nil, err
	}

	file, err := store.Save(c.Request().Context(), kind, fh)
	switch {
	case errors.Is(err, uploads.ErrFileType):
		return nil, validationError(string(kind), uploadRules[kind])
	case errors.Is(err, uploads.ErrFileTooLarge):
		return nil, validationError(string(kind), "File is too large")
	case err != nil:
		return nil, err
	}
	return file, nil
}
