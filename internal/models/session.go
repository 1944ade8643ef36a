package models

import "time"

// Session maps an opaque cookie value to the logged-in user.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64" bson:"_id"`
	UserID    uint      `json:"userId" gorm:"not null;index" bson:"userId"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index" bson:"expiresAt"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
