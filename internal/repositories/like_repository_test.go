package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeTopicIncrementsCounter(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormLikeRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	topic := createTopic(t, db, alice, "Hi")

	like, count, err := repo.Like(ctx, alice.ID, models.TopicTarget(topic.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotZero(t, like.ID)
	require.NotNil(t, like.TopicID)
	assert.Equal(t, topic.ID, *like.TopicID)
	assert.Nil(t, like.CommentID)

	liked, err := repo.HasUserLiked(ctx, alice.ID, models.TopicTarget(topic.ID))
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestLikeTwiceIsConflictAndCounterUnchanged(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormLikeRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	topic := createTopic(t, db, alice, "Hi")

	_, _, err := repo.Like(ctx, alice.ID, models.TopicTarget(topic.ID))
	require.NoError(t, err)
	_, _, err = repo.Like(ctx, alice.ID, models.TopicTarget(topic.ID))
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	got, err := NewGormTopicRepository(db).GetTopicByID(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)

	likes, err := repo.GetLikes(ctx, models.TopicTarget(topic.ID))
	require.NoError(t, err)
	assert.Len(t, likes, 1)
}

func TestLikeMissingTargetWritesNothing(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormLikeRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")

	_, _, err := repo.Like(ctx, alice.ID, models.TopicTarget(404))
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = repo.Like(ctx, alice.ID, models.CommentTarget(404))
	assert.ErrorIs(t, err, ErrNotFound)

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestUnlikeDecrementsAndNeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormLikeRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	topic := createTopic(t, db, alice, "Hi")

	_, _, err := repo.Like(ctx, alice.ID, models.TopicTarget(topic.ID))
	require.NoError(t, err)

	count, err := repo.Unlike(ctx, alice.ID, models.TopicTarget(topic.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = repo.Unlike(ctx, alice.ID, models.TopicTarget(topic.ID))
	assert.ErrorIs(t, err, ErrLikeNotFound)

	got, err := NewGormTopicRepository(db).GetTopicByID(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)
}

func TestUnlikeClampsDriftedCounter(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormLikeRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	topic := createTopic(t, db, alice, "Hi")

	_, _, err := repo.Like(ctx, alice.ID, models.TopicTarget(topic.ID))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Topic{}).Where("id = ?", topic.ID).UpdateColumn("likes_count", 0).Error)

	count, err := repo.Unlike(ctx, alice.ID, models.TopicTarget(topic.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLikeCommentAndLikedComments(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormLikeRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	topic := createTopic(t, db, alice, "Hi")
	first := createComment(t, db, bob, topic)
	second := createComment(t, db, bob, topic)

	_, count, err := repo.Like(ctx, alice.ID, models.CommentTarget(first.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A comment like does not collide with a topic like by the same user.
	_, _, err = repo.Like(ctx, alice.ID, models.TopicTarget(topic.ID))
	require.NoError(t, err)

	liked, err := repo.LikedComments(ctx, alice.ID, []uint{first.ID, second.ID})
	require.NoError(t, err)
	assert.True(t, liked[first.ID])
	assert.False(t, liked[second.ID])

	empty, err := repo.LikedComments(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	got, err := NewGormCommentRepository(db).GetCommentByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)

	_, err = repo.Unlike(ctx, alice.ID, models.CommentTarget(second.ID))
	assert.ErrorIs(t, err, ErrLikeNotFound)
}

func TestLikeRowNeedsExactlyOneTarget(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	topic := createTopic(t, db, alice, "Hi")
	comment := createComment(t, db, alice, topic)

	assert.Error(t, db.Create(&models.Like{UserID: alice.ID}).Error)
	assert.Error(t, db.Create(&models.Like{UserID: alice.ID, TopicID: &topic.ID, CommentID: &comment.ID}).Error)
}

func TestConcurrentLikesKeepCounterInSync(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormLikeRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "author")
	topic := createTopic(t, db, author, "Hi")

	users := make([]*models.User, 8)
	for i := range users {
		users[i] = createUser(t, db, fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	for _, u := range users {
		for range 2 {
			wg.Add(1)
			go func(id uint) {
				defer wg.Done()
				_, _, _ = repo.Like(ctx, id, models.TopicTarget(topic.ID))
			}(u.ID)
		}
	}
	wg.Wait()

	var rows int64
	require.NoError(t, db.Model(&models.Like{}).Where("topic_id = ?", topic.ID).Count(&rows).Error)
	got, err := NewGormTopicRepository(db).GetTopicByID(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(users)), rows)
	assert.Equal(t, len(users), got.LikesCount)
}

func TestUnlikeMissingTarget(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormLikeRepository(db)
	alice := createUser(t, db, "alice")

	_, err := repo.Unlike(context.Background(), alice.ID, models.TopicTarget(404))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Unlike(context.Background(), alice.ID, models.CommentTarget(404))
	assert.ErrorIs(t, err, ErrNotFound)
}
