package models

import "time"

// Like points at exactly one topic or one comment. A user likes a given
// target at most once; both rules are enforced by the schema.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_likes_user_topic;uniqueIndex:idx_likes_user_comment"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	TopicID   *uint     `json:"topicId" gorm:"uniqueIndex:idx_likes_user_topic;check:chk_likes_single_target,(topic_id IS NULL) <> (comment_id IS NULL)"`
	CommentID *uint     `json:"commentId" gorm:"uniqueIndex:idx_likes_user_comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// TargetKind names what a like points at.
type TargetKind string

const (
	TargetTopic   TargetKind = "topic"
	TargetComment TargetKind = "comment"
)

// LikeTarget identifies the topic or comment a like refers to.
type LikeTarget struct {
	Kind TargetKind
	ID   uint
}

func TopicTarget(id uint) LikeTarget   { return LikeTarget{Kind: TargetTopic, ID: id} }
func CommentTarget(id uint) LikeTarget { return LikeTarget{Kind: TargetComment, ID: id} }
