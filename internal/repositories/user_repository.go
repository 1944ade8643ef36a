package repositories

import (
	"context"

	"github.com/anonto42/nano-forum/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error)
}

// GormUserRepository implements UserRepository on the relational store
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// CreateUser inserts user; a taken username or email yields ErrDuplicate.
func (r *GormUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUsers retrieves all users ordered by id
func (r *GormUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser saves the profile columns of user. Role is not written here.
func (r *GormUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"username": user.Username,
		"bio":      user.Bio,
		"avatar":   user.Avatar,
	})
	return translate(res.Error)
}

// UpdateRole sets the role of user id and returns the updated row.
func (r *GormUserRepository) UpdateRole(ctx context.Context, id uint, role models.Role) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("role", role).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	user.Role = role
	return &user, nil
}
