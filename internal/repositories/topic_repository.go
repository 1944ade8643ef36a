package repositories

import (
	"context"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopicRepository defines the interface for topic data operations
type TopicRepository interface {
	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetTopicByID(ctx context.Context, id uint) (*models.Topic, error)
	ListTopics(ctx context.Context, filter models.TopicFilter) ([]models.Topic, error)
}

// GormTopicRepository implements TopicRepository on the relational store
type GormTopicRepository struct {
	db *gorm.DB
}

// NewGormTopicRepository creates a new GormTopicRepository
func NewGormTopicRepository(db *gorm.DB) *GormTopicRepository {
	return &GormTopicRepository{db: db}
}

// CreateTopic inserts topic and fills in its id and creation time. The
// author row is referenced, never written.
func (r *GormTopicRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	topic.LikesCount = 0
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(topic).Error)
}

// GetTopicByID retrieves a topic with its author
func (r *GormTopicRepository) GetTopicByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).Preload("Author").First(&topic, id).Error; err != nil {
		return nil, translate(err)
	}
	return &topic, nil
}

// ListTopics returns topics newest-first with their authors
func (r *GormTopicRepository) ListTopics(ctx context.Context, filter models.TopicFilter) ([]models.Topic, error) {
	q := r.db.WithContext(ctx).Preload("Author")
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var topics []models.Topic
	if err := q.Order("created_at DESC").Order("id DESC").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}
