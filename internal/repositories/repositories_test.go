package repositories

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := config.OpenGorm("sqlite", "file::memory:?_foreign_keys=on", 1, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "digest.salt",
	}
	require.NoError(t, NewGormUserRepository(db).CreateUser(context.Background(), user))
	return user
}

func createTopic(t *testing.T, db *gorm.DB, author *models.User, title string) *models.Topic {
	t.Helper()
	topic := &models.Topic{
		Title:    title,
		Content:  "Body",
		Category: models.Categories[1],
		AuthorID: author.ID,
	}
	require.NoError(t, NewGormTopicRepository(db).CreateTopic(context.Background(), topic))
	return topic
}

func createComment(t *testing.T, db *gorm.DB, author *models.User, topic *models.Topic) *models.Comment {
	t.Helper()
	comment := &models.Comment{Content: "nice", AuthorID: author.ID, TopicID: topic.ID}
	require.NoError(t, NewGormCommentRepository(db).CreateComment(context.Background(), comment))
	return comment
}
