package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"gorm.io/gorm"
)

// SessionRepository stores login sessions. GetSession treats an expired
// session exactly like a missing one and returns ErrNotFound.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// GormSessionRepository keeps sessions in the relational store
type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) CreateSession(ctx context.Context, session *models.Session) error {
	return translate(r.db.WithContext(ctx).Create(session).Error)
}

func (r *GormSessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, translate(err)
	}
	if session.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (r *GormSessionRepository) DeleteSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

// DeleteExpired removes every session that expired at or before now.
func (r *GormSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
