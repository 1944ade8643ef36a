package repositories

import (
	"context"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByTopicID(ctx context.Context, topicID uint) ([]models.Comment, error)
}

// GormCommentRepository implements CommentRepository on the relational store
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.LikesCount = 0
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error)
}

func (r *GormCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// GetCommentsByTopicID retrieves the comments of a topic, newest-first
func (r *GormCommentRepository) GetCommentsByTopicID(ctx context.Context, topicID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("topic_id = ?", topicID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
