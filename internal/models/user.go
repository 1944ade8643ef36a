package models

import "time"

// Role is a user's permission level.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleModerator, RoleUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:255;not null;uniqueIndex"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"size:255;not null"` // "<hex-digest>.<hex-salt>", never serialized
	Avatar    string    `json:"avatar" gorm:"size:255"`
	Bio       string    `json:"bio" gorm:"type:text"`
	Role      Role      `json:"role" gorm:"size:20;not null;default:user"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserCompact is the author summary embedded in topics and comments.
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Avatar   string `json:"avatar"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Avatar:   u.Avatar,
	}
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest is bound from a multipart form; empty fields are left unchanged.
type UpdateProfileRequest struct {
	Username string `form:"username" validate:"omitempty,min=3,max=255"`
	Bio      string `form:"bio" validate:"omitempty,max=2000"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role" validate:"required,role"`
}
