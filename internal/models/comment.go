package models

import "time"

// Comment represents a comment on a topic
type Comment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	AuthorID   uint      `json:"authorId" gorm:"not null;index"`
	Author     User      `json:"-" gorm:"foreignKey:AuthorID"`
	TopicID    uint      `json:"topicId" gorm:"not null;index"`
	LikesCount int       `json:"likesCount" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"createdAt"`

	Likes []Like `json:"-" gorm:"foreignKey:CommentID"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}
