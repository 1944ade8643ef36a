package models

import "time"

// Categories is the fixed set of topic categories.
var Categories = []string{
	"Общие обсуждения",
	"Новости",
	"Вопросы",
	"Идеи и предложения",
}

// Topic is owned by its author and never reassigned. LikesCount mirrors the
// number of likes rows pointing at the topic.
type Topic struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Title          string    `json:"title" gorm:"size:255;not null"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	Category       string    `json:"category" gorm:"size:100;not null;index"`
	Image          *string   `json:"image" gorm:"size:255"`
	Attachment     *string   `json:"attachment" gorm:"size:255"`
	AttachmentName *string   `json:"attachmentName" gorm:"size:255"`
	AuthorID       uint      `json:"authorId" gorm:"not null;index"`
	Author         User      `json:"-" gorm:"foreignKey:AuthorID"`
	LikesCount     int       `json:"likesCount" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"createdAt" gorm:"index"`

	Comments []Comment `json:"-" gorm:"foreignKey:TopicID"`
	Likes    []Like    `json:"-" gorm:"foreignKey:TopicID"`
}

// CreateTopicRequest is bound from the multipart form of POST /api/topics.
type CreateTopicRequest struct {
	Title    string `form:"title" validate:"required,max=255"`
	Content  string `form:"content" validate:"required"`
	Category string `form:"category" validate:"required,category"`
}

// TopicFilter narrows ListTopics; zero values mean "any".
type TopicFilter struct {
	AuthorID uint
	Category string
}
