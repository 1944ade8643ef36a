package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations. Like and
// Unlike return the target's likes_count after the change.
type LikeRepository interface {
	Like(ctx context.Context, userID uint, target models.LikeTarget) (*models.Like, int, error)
	Unlike(ctx context.Context, userID uint, target models.LikeTarget) (int, error)
	GetLikes(ctx context.Context, target models.LikeTarget) ([]models.Like, error)
	HasUserLiked(ctx context.Context, userID uint, target models.LikeTarget) (bool, error)
	LikedComments(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
}

// GormLikeRepository implements LikeRepository on the relational store
type GormLikeRepository struct {
	db *gorm.DB
}

// NewGormLikeRepository creates a new GormLikeRepository
func NewGormLikeRepository(db *gorm.DB) *GormLikeRepository {
	return &GormLikeRepository{db: db}
}

// targetOf returns the model holding the counter and the likes column that
// references it.
func targetOf(target models.LikeTarget) (any, string, error) {
	switch target.Kind {
	case models.TargetTopic:
		return &models.Topic{}, "topic_id", nil
	case models.TargetComment:
		return &models.Comment{}, "comment_id", nil
	}
	return nil, "", fmt.Errorf("unknown like target %q", target.Kind)
}

// Like records userID's like on target and bumps the target's counter in the
// same transaction. The unique index on likes is the only duplicate check:
// a second like fails with ErrAlreadyLiked and the increment rolls back.
func (r *GormLikeRepository) Like(ctx context.Context, userID uint, target models.LikeTarget) (*models.Like, int, error) {
	model, column, err := targetOf(target)
	if err != nil {
		return nil, 0, err
	}

	id := target.ID
	like := &models.Like{UserID: userID}
	if column == "topic_id" {
		like.TopicID = &id
	} else {
		like.CommentID = &id
	}

	var count int
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(model).Where("id = ?", id).UpdateColumn("likes_count", gorm.Expr("likes_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Omit(clause.Associations).Create(like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyLiked
			}
			return err
		}

		count, err = likesCount(tx, model, id)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return like, count, nil
}

// Unlike removes userID's like on target and decrements the counter in the
// same transaction. The counter is never taken below zero. A missing target
// yields ErrNotFound, an existing target without the like ErrLikeNotFound.
func (r *GormLikeRepository) Unlike(ctx context.Context, userID uint, target models.LikeTarget) (int, error) {
	model, column, err := targetOf(target)
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND "+column+" = ?", userID, target.ID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if _, err := likesCount(tx, model, target.ID); err != nil {
				return err
			}
			return ErrLikeNotFound
		}

		err := tx.Model(model).
			Where("id = ? AND likes_count > 0", target.ID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
		if err != nil {
			return err
		}

		count, err = likesCount(tx, model, target.ID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func likesCount(tx *gorm.DB, model any, id uint) (int, error) {
	var counts []int
	if err := tx.Model(model).Where("id = ?", id).Pluck("likes_count", &counts).Error; err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, ErrNotFound
	}
	return counts[0], nil
}

// GetLikes lists the likes of target, newest-first
func (r *GormLikeRepository) GetLikes(ctx context.Context, target models.LikeTarget) ([]models.Like, error) {
	_, column, err := targetOf(target)
	if err != nil {
		return nil, err
	}
	var likes []models.Like
	err = r.db.WithContext(ctx).
		Where(column+" = ?", target.ID).
		Order("created_at DESC").Order("id DESC").
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// HasUserLiked checks if a user has liked target
func (r *GormLikeRepository) HasUserLiked(ctx context.Context, userID uint, target models.LikeTarget) (bool, error) {
	_, column, err := targetOf(target)
	if err != nil {
		return false, err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND "+column+" = ?", userID, target.ID).
		Count(&count).Error
	return count > 0, err
}

// LikedComments reports which of commentIDs userID has liked.
func (r *GormLikeRepository) LikedComments(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if len(commentIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
